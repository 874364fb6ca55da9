// Package handler implements the Lambda entry points for siesta.
//
// Two functions are deployed from this package, one per rule variant,
// each bound to its own EventBridge schedule. The event payload carries
// no parameters; it is logged for traceability only.
package handler

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/rs/zerolog"

	cloudaws "github.com/siesta-sh/siesta/internal/cloud/aws"
	"github.com/siesta-sh/siesta/internal/config"
	"github.com/siesta-sh/siesta/internal/schedule"
	"github.com/siesta-sh/siesta/internal/telemetry"
)

// Env vars read on cold start.
const (
	stopTagEnvVar  = "SIESTA_STOP_TAG"
	startTagEnvVar = "SIESTA_START_TAG"
	logLevelEnvVar = "LOG_LEVEL"
)

// Handler runs one rule per invocation.
type Handler struct {
	rule    schedule.Rule
	fleet   schedule.Fleet
	regions []string
	logger  zerolog.Logger
}

// New builds a handler for one rule variant, configured from the
// environment on cold start. The fleet's region clients are reused
// across warm invocations.
func New(rule schedule.Rule) *Handler {
	if key := os.Getenv(tagEnvVar(rule)); key != "" {
		rule.TagKey = key
	}

	return &Handler{
		rule:    rule,
		fleet:   cloudaws.NewFleet(),
		regions: config.RegionsFromEnv(),
		logger:  telemetry.NewLogger("siesta", os.Getenv(logLevelEnvVar), false),
	}
}

func tagEnvVar(rule schedule.Rule) string {
	if rule.Action == schedule.ActionStart {
		return startTagEnvVar
	}
	return stopTagEnvVar
}

// Handle processes one scheduled invocation. The runner's error
// propagates so the invocation is marked failed and the trigger
// layer's retry policy, if any, applies.
func (h *Handler) Handle(ctx context.Context, event events.CloudWatchEvent) error {
	logger := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With().Str("aws_request_id", lc.AwsRequestID).Logger()
	}

	logger.Info().
		Str("rule", h.rule.Name).
		Str("event_id", event.ID).
		Msg("scheduled invocation")

	runner := schedule.NewRunner(h.fleet, h.regions, logger, nil)
	report, err := runner.Run(ctx, h.rule)
	if report != nil {
		logger.Info().
			Str("rule", h.rule.Name).
			Int("transitioned", report.Transitioned()).
			Int("regions_failed", report.Failed()).
			Msg("invocation complete")
	}
	return err
}
