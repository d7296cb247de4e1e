package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultProbeTimeout bounds Probe when no timeout is given.
const DefaultProbeTimeout = 10 * time.Second

// Report is the combined outcome of several checks.
type Report struct {
	// Status is the worst status among Results.
	Status  Status
	Results map[string]Result

	// Err is the first Unhealthy result as an error, prefixed with the
	// checker name, or nil when no checker is Unhealthy. Degraded results
	// do not set it.
	Err error
}

// Probe runs every checker in parallel and folds the results.
// A checker that outlives timeout reports Unhealthy with ErrCheckTimeout.
// Checkers sharing a name overwrite each other in Results; the worst status
// still counts toward the overall Status.
func Probe(ctx context.Context, timeout time.Duration, checkers ...Checker) Report {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report := Report{
		Status:  StatusHealthy,
		Results: make(map[string]Result, len(checkers)),
	}

	var mu sync.Mutex
	var g errgroup.Group
	for _, c := range checkers {
		if c == nil {
			continue
		}
		g.Go(func() error {
			result := runCheck(ctx, c)
			mu.Lock()
			report.Results[c.Name()] = result
			report.Status = Worst(report.Status, result.Status)
			mu.Unlock()
			return unhealthyErr(c.Name(), result)
		})
	}
	// Group without a context: one failing checker does not cut the others
	// short.
	report.Err = g.Wait()

	return report
}

func unhealthyErr(name string, result Result) error {
	if result.Status != StatusUnhealthy {
		return nil
	}
	if result.Error != nil {
		return fmt.Errorf("%s: %w", name, result.Error)
	}
	return fmt.Errorf("%s: %w: %s", name, ErrUnhealthy, result.Message)
}

// Worst returns the more severe of two statuses.
func Worst(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}

func runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()
	resultCh := make(chan Result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- Unhealthy("check panicked", fmt.Errorf("%w: %v", ErrCheckPanicked, r))
			}
		}()
		result := checker.Check(ctx)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		resultCh <- result
	}()

	select {
	case result := <-resultCh:
		result.Duration = time.Since(start)
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}
