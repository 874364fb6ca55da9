package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/siesta-sh/siesta/internal/telemetry"
	"github.com/siesta-sh/siesta/pkg/instance"
)

// Fleet is the provider capability the runner needs: one filtered
// listing and two bulk transitions, all region-scoped.
type Fleet interface {
	Select(ctx context.Context, region, tagKey string, state instance.State) ([]string, error)
	Start(ctx context.Context, region string, ids []string) error
	Stop(ctx context.Context, region string, ids []string) error
}

// RegionResult records what one region's pass did.
type RegionResult struct {
	Region       string
	Matched      int
	Transitioned int
	Err          error
}

// Report aggregates one rule run across all regions.
type Report struct {
	Rule    string
	Results []RegionResult
}

// Transitioned returns the total instances transitioned across regions.
func (r *Report) Transitioned() int {
	total := 0
	for _, res := range r.Results {
		total += res.Transitioned
	}
	return total
}

// Failed returns the number of regions whose pass failed.
func (r *Report) Failed() int {
	failed := 0
	for _, res := range r.Results {
		if res.Err != nil {
			failed++
		}
	}
	return failed
}

// Runner applies rules to a fixed, ordered region list, sequentially.
// Metrics are optional; the Lambda entry points run without them.
type Runner struct {
	fleet   Fleet
	regions []string
	logger  zerolog.Logger
	metrics *telemetry.Metrics
}

// NewRunner creates a runner over the given fleet and regions.
func NewRunner(fleet Fleet, regions []string, logger zerolog.Logger, metrics *telemetry.Metrics) *Runner {
	return &Runner{
		fleet:   fleet,
		regions: regions,
		logger:  logger,
		metrics: metrics,
	}
}

// Run applies one rule to every configured region in order. A failing
// region does not stop the loop; all region errors are joined and
// returned so the trigger layer records the run as failed.
func (r *Runner) Run(ctx context.Context, rule Rule) (*Report, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	report := &Report{Rule: rule.Name}
	var errs []error

	for _, region := range r.regions {
		result := r.runRegion(ctx, rule, region)
		report.Results = append(report.Results, result)
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("region %s: %w", region, result.Err))
		}
	}

	err := errors.Join(errs...)
	if r.metrics != nil {
		status := "success"
		if err != nil {
			status = "failed"
		}
		r.metrics.RecordRun(ctx, rule.Name, status, time.Since(start).Seconds())
	}
	return report, err
}

func (r *Runner) runRegion(ctx context.Context, rule Rule, region string) RegionResult {
	logger := r.logger.With().
		Str("rule", rule.Name).
		Str("region", region).
		Logger()

	ids, err := r.fleet.Select(ctx, region, rule.TagKey, rule.SourceState)
	if err != nil {
		logger.Error().Err(err).Msg("instance selection failed")
		r.recordRegionFailure(ctx, rule, region)
		return RegionResult{Region: region, Err: fmt.Errorf("select instances: %w", err)}
	}

	if len(ids) == 0 {
		logger.Info().Str("tag", rule.TagKey).Msg("no instances matched")
		return RegionResult{Region: region}
	}

	if err := r.transition(ctx, rule.Action, region, ids); err != nil {
		logger.Error().Err(err).Strs("instance_ids", ids).Msg("bulk transition rejected")
		r.recordRegionFailure(ctx, rule, region)
		return RegionResult{Region: region, Matched: len(ids), Err: fmt.Errorf("%s instances: %w", rule.Action, err)}
	}

	logger.Info().
		Int("matched", len(ids)).
		Strs("instance_ids", ids).
		Str("action", string(rule.Action)).
		Msg("transition requested")

	if r.metrics != nil {
		r.metrics.RecordTransitions(ctx, rule.Name, region, len(ids))
	}
	return RegionResult{Region: region, Matched: len(ids), Transitioned: len(ids)}
}

// transition issues exactly one bulk call for the region. The provider
// accepts the request and transitions instances asynchronously; the
// runner does not wait for the target state.
func (r *Runner) transition(ctx context.Context, action Action, region string, ids []string) error {
	switch action {
	case ActionStart:
		return r.fleet.Start(ctx, region, ids)
	case ActionStop:
		return r.fleet.Stop(ctx, region, ids)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func (r *Runner) recordRegionFailure(ctx context.Context, rule Rule, region string) {
	if r.metrics != nil {
		r.metrics.RecordRegionFailure(ctx, rule.Name, region)
	}
}
