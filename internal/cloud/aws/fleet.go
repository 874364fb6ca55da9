// Package aws implements the EC2 fleet client for siesta.
package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/siesta-sh/siesta/pkg/instance"
)

// Fleet talks to EC2 across regions. Clients are created lazily per
// region and reused for the lifetime of the process, so Lambda warm
// invocations and daemon ticks skip credential resolution.
type Fleet struct {
	mu        sync.Mutex
	clients   map[string]EC2API
	newClient func(ctx context.Context, region string) (EC2API, error)
}

// NewFleet creates a fleet using the default AWS credential chain.
func NewFleet() *Fleet {
	return &Fleet{
		clients:   make(map[string]EC2API),
		newClient: newSDKClient,
	}
}

func newSDKClient(ctx context.Context, region string) (EC2API, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ec2.NewFromConfig(cfg), nil
}

func (f *Fleet) client(ctx context.Context, region string) (EC2API, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[region]; ok {
		return client, nil
	}
	client, err := f.newClient(ctx, region)
	if err != nil {
		return nil, err
	}
	f.clients[region] = client
	return client, nil
}

// Select returns the IDs of instances in the region whose tag is set
// to "true" and whose state matches. Both clauses are pushed down as
// ANDed API filters; the reservation grouping is flattened into one
// flat ID list in the order the provider returned it.
func (f *Fleet) Select(ctx context.Context, region, tagKey string, state instance.State) ([]string, error) {
	client, err := f.client(ctx, region)
	if err != nil {
		return nil, err
	}

	input := &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("tag:" + tagKey), Values: []string{instance.Enabled}},
			{Name: aws.String("instance-state-name"), Values: []string{string(state)}},
		},
	}

	var ids []string
	for {
		output, err := client.DescribeInstances(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("describe instances: %w", err)
		}

		for _, reservation := range output.Reservations {
			for _, inst := range reservation.Instances {
				ids = append(ids, aws.ToString(inst.InstanceId))
			}
		}

		if output.NextToken == nil {
			break
		}
		input.NextToken = output.NextToken
	}

	return ids, nil
}

// Start requests a bulk start for the given instances. One call per
// region; the provider transitions the instances asynchronously.
func (f *Fleet) Start(ctx context.Context, region string, ids []string) error {
	client, err := f.client(ctx, region)
	if err != nil {
		return err
	}
	if _, err := client.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: ids}); err != nil {
		return fmt.Errorf("start instances: %w", err)
	}
	return nil
}

// Stop requests a bulk stop for the given instances.
func (f *Fleet) Stop(ctx context.Context, region string, ids []string) error {
	client, err := f.client(ctx, region)
	if err != nil {
		return err
	}
	if _, err := client.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: ids}); err != nil {
		return fmt.Errorf("stop instances: %w", err)
	}
	return nil
}
