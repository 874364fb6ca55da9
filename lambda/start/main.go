package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/siesta-sh/siesta/internal/schedule"
	"github.com/siesta-sh/siesta/lambda/handler"
)

func main() {
	lambda.Start(handler.New(schedule.StartRule).Handle)
}
