package playback

import (
	"context"
	"sync"

	"github.com/san-kum/kinchain/internal/kinematics"
)

// Job is one playback in a batch. Build must return a chain no other job
// touches, since trees are not safe for concurrent use.
type Job struct {
	Name    string
	Build   func() (*kinematics.Chain, error)
	Traj    func(*kinematics.Chain) (Trajectory, error)
	Metrics func() []Metric
}

// Batch runs independent playbacks concurrently.
type Batch struct {
	jobs []Job
}

func NewBatch(jobs ...Job) *Batch {
	return &Batch{jobs: jobs}
}

func (b *Batch) Add(j Job) { b.jobs = append(b.jobs, j) }

func (b *Batch) Len() int { return len(b.jobs) }

func (b *Batch) Jobs() []Job { return b.jobs }

// Run plays every job and returns results in job order. The first error in
// job order is returned after all jobs finish.
func (b *Batch) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(b.jobs))
	errs := make([]error, len(b.jobs))

	var wg sync.WaitGroup
	for i := range b.jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = b.jobs[idx].run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (j Job) run(ctx context.Context, cfg Config) (*Result, error) {
	chain, err := j.Build()
	if err != nil {
		return nil, err
	}
	traj, err := j.Traj(chain)
	if err != nil {
		return nil, err
	}
	p := New(chain, traj)
	if j.Metrics != nil {
		for _, m := range j.Metrics() {
			p.AddMetric(m)
		}
	}
	return p.Run(ctx, cfg)
}
