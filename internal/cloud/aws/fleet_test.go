package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siesta-sh/siesta/pkg/instance"
)

// mockEC2Client implements EC2API for testing.
type mockEC2Client struct {
	describeInstancesFunc func(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	startInstancesFunc    func(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	stopInstancesFunc     func(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
}

func (m *mockEC2Client) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if m.describeInstancesFunc != nil {
		return m.describeInstancesFunc(ctx, params, optFns...)
	}
	return &ec2.DescribeInstancesOutput{}, nil
}

func (m *mockEC2Client) StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	if m.startInstancesFunc != nil {
		return m.startInstancesFunc(ctx, params, optFns...)
	}
	return &ec2.StartInstancesOutput{}, nil
}

func (m *mockEC2Client) StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	if m.stopInstancesFunc != nil {
		return m.stopInstancesFunc(ctx, params, optFns...)
	}
	return &ec2.StopInstancesOutput{}, nil
}

func newTestFleet(client EC2API) *Fleet {
	return &Fleet{
		clients: make(map[string]EC2API),
		newClient: func(_ context.Context, _ string) (EC2API, error) {
			return client, nil
		},
	}
}

func TestSelect_BuildsANDedFilters(t *testing.T) {
	var captured *ec2.DescribeInstancesInput
	mock := &mockEC2Client{
		describeInstancesFunc: func(_ context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			captured = params
			return &ec2.DescribeInstancesOutput{}, nil
		},
	}

	fleet := newTestFleet(mock)
	_, err := fleet.Select(context.Background(), "us-east-1", "Autostop", instance.StateRunning)

	require.NoError(t, err)
	require.NotNil(t, captured)
	require.Len(t, captured.Filters, 2)
	assert.Equal(t, "tag:Autostop", aws.ToString(captured.Filters[0].Name))
	assert.Equal(t, []string{"true"}, captured.Filters[0].Values)
	assert.Equal(t, "instance-state-name", aws.ToString(captured.Filters[1].Name))
	assert.Equal(t, []string{"running"}, captured.Filters[1].Values)
}

func TestSelect_FlattensReservations(t *testing.T) {
	mock := &mockEC2Client{
		describeInstancesFunc: func(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			return &ec2.DescribeInstancesOutput{
				Reservations: []ec2types.Reservation{
					{Instances: []ec2types.Instance{
						{InstanceId: aws.String("i-1")},
						{InstanceId: aws.String("i-2")},
					}},
					{Instances: []ec2types.Instance{
						{InstanceId: aws.String("i-3")},
					}},
				},
			}, nil
		},
	}

	fleet := newTestFleet(mock)
	ids, err := fleet.Select(context.Background(), "us-east-1", "Autostop", instance.StateRunning)

	require.NoError(t, err)
	assert.Equal(t, []string{"i-1", "i-2", "i-3"}, ids)
}

func TestSelect_Empty(t *testing.T) {
	fleet := newTestFleet(&mockEC2Client{})
	ids, err := fleet.Select(context.Background(), "us-east-1", "Autostart", instance.StateStopped)

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSelect_Pagination(t *testing.T) {
	callCount := 0
	mock := &mockEC2Client{
		describeInstancesFunc: func(_ context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			callCount++
			if callCount == 1 {
				assert.Nil(t, params.NextToken)
				return &ec2.DescribeInstancesOutput{
					Reservations: []ec2types.Reservation{{Instances: []ec2types.Instance{{InstanceId: aws.String("i-1")}}}},
					NextToken:    aws.String("token"),
				}, nil
			}
			assert.Equal(t, "token", aws.ToString(params.NextToken))
			return &ec2.DescribeInstancesOutput{
				Reservations: []ec2types.Reservation{{Instances: []ec2types.Instance{{InstanceId: aws.String("i-2")}}}},
			}, nil
		},
	}

	fleet := newTestFleet(mock)
	ids, err := fleet.Select(context.Background(), "us-east-1", "Autostop", instance.StateRunning)

	require.NoError(t, err)
	assert.Equal(t, []string{"i-1", "i-2"}, ids)
	assert.Equal(t, 2, callCount)
}

func TestSelect_Error(t *testing.T) {
	throttled := errors.New("RequestLimitExceeded")
	mock := &mockEC2Client{
		describeInstancesFunc: func(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			return nil, throttled
		},
	}

	fleet := newTestFleet(mock)
	_, err := fleet.Select(context.Background(), "us-west-2", "Autostop", instance.StateRunning)

	require.Error(t, err)
	assert.ErrorIs(t, err, throttled)
}

func TestStartStop_OneBulkCall(t *testing.T) {
	var startIDs, stopIDs []string
	startCalls, stopCalls := 0, 0
	mock := &mockEC2Client{
		startInstancesFunc: func(_ context.Context, params *ec2.StartInstancesInput, _ ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
			startCalls++
			startIDs = params.InstanceIds
			return &ec2.StartInstancesOutput{}, nil
		},
		stopInstancesFunc: func(_ context.Context, params *ec2.StopInstancesInput, _ ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
			stopCalls++
			stopIDs = params.InstanceIds
			return &ec2.StopInstancesOutput{}, nil
		},
	}

	fleet := newTestFleet(mock)
	require.NoError(t, fleet.Start(context.Background(), "us-east-1", []string{"i-1", "i-2"}))
	require.NoError(t, fleet.Stop(context.Background(), "us-east-1", []string{"i-3"}))

	assert.Equal(t, 1, startCalls)
	assert.Equal(t, []string{"i-1", "i-2"}, startIDs)
	assert.Equal(t, 1, stopCalls)
	assert.Equal(t, []string{"i-3"}, stopIDs)
}

func TestStop_ErrorWrapped(t *testing.T) {
	denied := errors.New("UnauthorizedOperation")
	mock := &mockEC2Client{
		stopInstancesFunc: func(_ context.Context, _ *ec2.StopInstancesInput, _ ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
			return nil, denied
		},
	}

	fleet := newTestFleet(mock)
	err := fleet.Stop(context.Background(), "us-east-1", []string{"i-1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "stop instances")
}

func TestClientCachedPerRegion(t *testing.T) {
	created := make(map[string]int)
	fleet := &Fleet{
		clients: make(map[string]EC2API),
		newClient: func(_ context.Context, region string) (EC2API, error) {
			created[region]++
			return &mockEC2Client{}, nil
		},
	}

	ctx := context.Background()
	_, err := fleet.Select(ctx, "us-east-1", "Autostop", instance.StateRunning)
	require.NoError(t, err)
	_, err = fleet.Select(ctx, "us-east-1", "Autostop", instance.StateRunning)
	require.NoError(t, err)
	_, err = fleet.Select(ctx, "eu-west-1", "Autostop", instance.StateRunning)
	require.NoError(t, err)

	assert.Equal(t, 1, created["us-east-1"])
	assert.Equal(t, 1, created["eu-west-1"])
}
