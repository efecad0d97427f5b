package wink

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of running an operation on one device.
type BatchResult struct {
	Kind DeviceKind
	ID   string
	Err  error
}

// BatchConfig configures batch execution behavior.
type BatchConfig struct {
	// MaxConcurrent is the maximum number of concurrent API calls.
	// Defaults to 10 if not specified.
	MaxConcurrent int

	// StopOnError cancels the remaining devices after the first failure.
	// They report context.Canceled.
	StopOnError bool
}

// DefaultBatchConfig returns the defaults for batch operations.
func DefaultBatchConfig() *BatchConfig {
	return &BatchConfig{MaxConcurrent: 10}
}

// ForEachDevice runs fn on every device with bounded concurrency and
// returns one result per device, in input order. All callers share the
// session's credentials, so at most one token refresh happens for the
// whole batch.
//
// Example:
//
//	results := wink.ForEachDevice(ctx, devices, nil, func(ctx context.Context, d *wink.Device) error {
//	    _, err := d.Update(ctx, wink.Document{"name": strings.ToUpper(name)})
//	    return err
//	})
func ForEachDevice(ctx context.Context, devices []*Device, cfg *BatchConfig, fn func(context.Context, *Device) error) []BatchResult {
	return forEachIndexed(ctx, devices, cfg, func(ctx context.Context, _ int, d *Device) error {
		return fn(ctx, d)
	})
}

// forEachIndexed is ForEachDevice with the input position passed to fn.
// The same *Device may appear more than once.
func forEachIndexed(ctx context.Context, devices []*Device, cfg *BatchConfig, fn func(context.Context, int, *Device) error) []BatchResult {
	if len(devices) == 0 {
		return nil
	}
	if cfg == nil {
		cfg = DefaultBatchConfig()
	}
	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = 10
	}

	results := make([]BatchResult, len(devices))
	for i, d := range devices {
		results[i] = BatchResult{Kind: d.Kind(), ID: d.ID()}
	}

	g := new(errgroup.Group)
	runCtx := ctx
	if cfg.StopOnError {
		g, runCtx = errgroup.WithContext(ctx)
	}
	g.SetLimit(limit)

	for i, d := range devices {
		i, d := i, d
		if err := runCtx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := runCtx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			err := fn(runCtx, i, d)
			results[i].Err = err
			return err
		})
	}

	_ = g.Wait()
	return results
}

// RevertAll reverts each device tree concurrently. Trees are independent;
// within one tree the parent-first order of Revert is kept.
func RevertAll(ctx context.Context, devices []*Device, cfg *BatchConfig) []*RevertResult {
	out := make([]*RevertResult, len(devices))
	batch := forEachIndexed(ctx, devices, cfg, func(ctx context.Context, i int, d *Device) error {
		out[i] = d.Revert(ctx)
		return nil
	})

	for i, r := range batch {
		if out[i] == nil {
			out[i] = &RevertResult{Kind: r.Kind, ID: r.ID, Err: r.Err}
		}
	}
	return out
}
