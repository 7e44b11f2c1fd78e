package fit

import (
	"context"
	"runtime"
	"sync"
)

// Job is one named fit in a batch.
type Job struct {
	Name string
	Spec Spec
	Opts []Option
}

// Outcome pairs a job with its result or error.
type Outcome struct {
	Name   string
	Result *Result
	Err    error
}

// Batch runs independent fits across a worker pool and returns one outcome
// per job, in job order. workers <= 0 selects one worker per CPU. Jobs
// sharing a parameter set must pass clones; Batch does not copy specs.
func Batch(ctx context.Context, jobs []Job, workers int) []Outcome {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	outcomes := make([]Outcome, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				job := jobs[i]
				res, err := Fit(ctx, job.Spec, job.Opts...)
				outcomes[i] = Outcome{Name: job.Name, Result: res, Err: err}
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return outcomes
}
