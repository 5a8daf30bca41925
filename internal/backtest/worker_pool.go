package backtest

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantbench/dca-backtest/internal/monitoring"
	"github.com/quantbench/dca-backtest/pkg/types"
)

// Task is one independent (series, plan) simulation submitted to the
// runner. The series is shared read-only between tasks; nothing in the
// pipeline mutates it.
type Task struct {
	ID     string
	Series *types.PriceSeries
	Plan   InvestmentPlan
}

// NewTask wraps a series and plan with a fresh task ID.
func NewTask(series *types.PriceSeries, plan InvestmentPlan) Task {
	return Task{ID: uuid.NewString(), Series: series, Plan: plan}
}

// TaskResult is the per-task outcome. Exactly one of Result or Err is set.
type TaskResult struct {
	TaskID   string
	Ticker   string
	Window   Window
	Result   *Result
	Duration time.Duration
	Err      error
}

// Runner fans independent backtest tasks out over a fixed worker pool and
// collects one result per task. Workers communicate only through the job
// and result channels; no shared mutable state crosses a worker boundary.
type Runner struct {
	workers int
	engine  *Engine
	calc    *Calculator
	logger  zerolog.Logger
}

// NewRunner creates a runner with the default resolution policy.
// workers <= 0 selects the available parallelism.
func NewRunner(workers int) *Runner {
	return NewRunnerWithPolicy(workers, types.ResolveForward)
}

// NewRunnerWithPolicy creates a runner whose engine and calculator share
// an explicit price-resolution policy.
func NewRunnerWithPolicy(workers int, policy types.ResolutionPolicy) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		workers: workers,
		engine:  NewEngineWithPolicy(policy),
		calc:    NewCalculatorWithPolicy(policy),
		logger:  log.With().Str("component", "runner").Logger(),
	}
}

// Workers returns the pool size.
func (r *Runner) Workers() int { return r.workers }

// RunAll executes every task and returns a mapping with exactly one entry
// per submitted task ID, whatever the pool size or completion order.
// A failing task is captured in its own entry and never aborts the batch.
// Cancelling the context stops unstarted tasks, which are reported with
// the context's error.
func (r *Runner) RunAll(ctx context.Context, tasks []Task) map[string]TaskResult {
	monitoring.RecordBatch(len(tasks))

	results := make(map[string]TaskResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	jobs := make(chan Task, len(tasks))
	out := make(chan TaskResult, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go r.worker(ctx, jobs, out, &wg)
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(out)
	}()

	for res := range out {
		results[res.TaskID] = res
	}
	return results
}

func (r *Runner) worker(ctx context.Context, jobs <-chan Task, out chan<- TaskResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for task := range jobs {
		if err := ctx.Err(); err != nil {
			out <- TaskResult{
				TaskID: task.ID,
				Ticker: task.Series.Ticker(),
				Window: Window{Start: task.Plan.Start, End: task.Plan.End},
				Err:    err,
			}
			continue
		}
		out <- r.process(task)
	}
}

// process runs the engine and calculator for one task.
func (r *Runner) process(task Task) TaskResult {
	started := time.Now()
	res := TaskResult{
		TaskID: task.ID,
		Ticker: task.Series.Ticker(),
		Window: Window{Start: task.Plan.Start, End: task.Plan.End},
	}

	traj, err := r.engine.Run(task.Series, task.Plan)
	if err == nil {
		res.Result, err = r.calc.Summarize(task.Series, task.Plan, traj)
	}
	res.Err = err
	res.Duration = time.Since(started)

	monitoring.RecordBacktest(res.Ticker, res.Duration, err)
	if err != nil {
		r.logger.Debug().Str("task", task.ID).Str("ticker", res.Ticker).Err(err).Msg("task failed")
	}
	return res
}
