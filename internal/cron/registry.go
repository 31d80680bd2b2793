// Package cron runs the scheduled back-office jobs: report exports and rate table reloads.
package cron

import (
	"context"
	"fmt"
)

// Job represents a scheduled task run by a cron Service.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry tracks registered jobs by unique name.
type Registry struct {
	jobs  []Job
	names map[string]struct{}
}

// NewRegistry builds a registry preloaded with the provided jobs. Nil and duplicate jobs are skipped.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{names: map[string]struct{}{}}
	for _, job := range jobs {
		_ = registry.Register(job)
	}
	return registry
}

// Register adds a job. A second job with the same name is rejected.
func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	if r.names == nil {
		r.names = map[string]struct{}{}
	}
	if _, dup := r.names[job.Name()]; dup {
		return fmt.Errorf("job %q already registered", job.Name())
	}
	r.names[job.Name()] = struct{}{}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns the registered jobs in the order they were added.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
