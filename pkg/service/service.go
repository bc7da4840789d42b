// Package service runs assessments as background jobs: submit a request,
// poll for status, fetch the result once complete.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/graph"

	"github.com/graphstat/netassess/pkg/assess"
	"github.com/graphstat/netassess/pkg/dataset"
	"github.com/graphstat/netassess/pkg/generators"
	"github.com/graphstat/netassess/pkg/graphstats"
)

// JobStatus tracks a job through its lifecycle.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Request describes one assessment: a named observed dataset, a candidate
// model family with its parameters, and the harness configuration. Zero
// harness values fall back to the assess defaults.
type Request struct {
	Dataset      string `json:"dataset"`
	EdgeListPath string `json:"edge_list_path,omitempty"`

	// Model is one of gnp, gnm, smallworld, pa.
	Model string  `json:"model"`
	N     int     `json:"n,omitempty"`
	M     int     `json:"m,omitempty"`
	P     float64 `json:"p,omitempty"`
	D     int     `json:"d,omitempty"`

	NumIter int     `json:"num_iter,omitempty"`
	Alpha   float64 `json:"alpha,omitempty"`
	Seed    uint64  `json:"seed,omitempty"`
}

// Job is one submitted assessment.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	Request   Request   `json:"request"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service processes assessment jobs on a bounded number of workers.
type Service struct {
	mu      sync.RWMutex
	jobs    map[string]*Job
	results map[string]*assess.Result
	workers chan struct{}

	jobTTL          time.Duration
	cleanupInterval time.Duration
	jobTimeout      time.Duration
	stop            chan struct{}

	log zerolog.Logger
}

// New creates a service with at most maxWorkers concurrent assessments and
// starts its cleanup loop.
func New(maxWorkers int, log zerolog.Logger) *Service {
	if maxWorkers <= 0 {
		maxWorkers = 2
	}
	s := &Service{
		jobs:            make(map[string]*Job),
		results:         make(map[string]*assess.Result),
		workers:         make(chan struct{}, maxWorkers),
		jobTTL:          time.Hour,
		cleanupInterval: 5 * time.Minute,
		jobTimeout:      10 * time.Minute,
		stop:            make(chan struct{}),
		log:             log,
	}
	go s.cleanupLoop()
	return s
}

// Close stops the cleanup loop.
func (s *Service) Close() {
	close(s.stop)
}

// Submit validates the request, queues a job, and starts processing it in
// the background.
func (s *Service) Submit(req Request) (*Job, error) {
	observed, err := LoadObserved(req)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if _, err := BuildGenerator(req, observed); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	now := time.Now()
	job := &Job{
		ID:        uuid.New().String(),
		Status:    JobStatusQueued,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	s.log.Info().
		Str("job_id", job.ID).
		Str("dataset", req.Dataset).
		Str("model", req.Model).
		Msg("assessment job submitted")

	go s.process(job.ID)
	return job, nil
}

// Get retrieves a job by ID.
func (s *Service) Get(jobID string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	snapshot := *job
	return &snapshot, nil
}

// Result retrieves the assessment result for a completed job.
func (s *Service) Result(jobID string) (*assess.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, exists := s.results[jobID]
	if !exists {
		return nil, fmt.Errorf("result not found for job: %s", jobID)
	}
	return result, nil
}

func (s *Service) process(jobID string) {
	s.workers <- struct{}{}
	defer func() { <-s.workers }()

	s.mu.RLock()
	job, exists := s.jobs[jobID]
	s.mu.RUnlock()
	if !exists {
		s.log.Error().Str("job_id", jobID).Msg("job disappeared before processing")
		return
	}
	req := job.Request

	s.setStatus(jobID, JobStatusRunning, "")
	s.log.Info().Str("job_id", jobID).Msg("assessment started")

	observed, err := LoadObserved(req)
	if err != nil {
		s.fail(jobID, err)
		return
	}
	gen, err := BuildGenerator(req, observed)
	if err != nil {
		s.fail(jobID, err)
		return
	}

	cfg := assess.DefaultConfig()
	cfg.Logger = s.log.With().Str("job_id", jobID).Logger()
	if req.NumIter > 0 {
		cfg.NumIter = req.NumIter
	}
	if req.Alpha > 0 {
		cfg.Alpha = req.Alpha
	}
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	result, err := assess.Assess(ctx, observed, gen, graphstats.DefaultRegistry(), cfg)
	if err != nil {
		s.fail(jobID, err)
		return
	}

	s.mu.Lock()
	s.results[jobID] = result
	s.mu.Unlock()
	s.setStatus(jobID, JobStatusCompleted, "")

	s.log.Info().Str("job_id", jobID).Msg("assessment completed")
}

func (s *Service) fail(jobID string, err error) {
	s.setStatus(jobID, JobStatusFailed, err.Error())
	s.log.Error().Str("job_id", jobID).Err(err).Msg("assessment failed")
}

func (s *Service) setStatus(jobID string, status JobStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, exists := s.jobs[jobID]; exists {
		job.Status = status
		job.Error = errMsg
		job.UpdatedAt = time.Now()
	}
}

func (s *Service) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *Service) cleanup() {
	cutoff := time.Now().Add(-s.jobTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		done := job.Status == JobStatusCompleted || job.Status == JobStatusFailed
		if done && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			delete(s.results, id)
		}
	}
}

// LoadObserved resolves the request's observed graph: an edge-list file if
// a path is given, otherwise a built-in dataset by name.
func LoadObserved(req Request) (graph.Undirected, error) {
	if req.EdgeListPath != "" {
		return dataset.ReadEdgeListFile(req.EdgeListPath)
	}
	if req.Dataset == "" {
		return nil, fmt.Errorf("dataset or edge_list_path required")
	}
	return dataset.Load(req.Dataset)
}

// BuildGenerator maps a model request onto a sampler, defaulting scale
// parameters from the observed graph where they are omitted.
func BuildGenerator(req Request, observed graph.Undirected) (assess.Generator, error) {
	n := req.N
	if n == 0 {
		n = observed.Nodes().Len()
	}
	m := req.M
	if m == 0 {
		m = edgeCount(observed)
	}

	switch strings.ToLower(req.Model) {
	case "gnp":
		p := req.P
		if p == 0 && n > 1 {
			// Edge density of the observed graph.
			p = float64(m) / (float64(n) * float64(n-1) / 2)
		}
		return generators.GNP(n, p), nil
	case "gnm":
		return generators.GNM(n, m), nil
	case "smallworld":
		d := req.D
		if d == 0 {
			d = 1
		}
		r := req.P
		if r == 0 {
			r = 2
		}
		return generators.SmallWorld([]int{n}, 1, d, r), nil
	case "pa":
		d := req.D
		if d == 0 {
			d = 1
		}
		return generators.PreferentialAttachment(n, d), nil
	default:
		return nil, fmt.Errorf("unknown model %q (supported: gnp, gnm, smallworld, pa)", req.Model)
	}
}

func edgeCount(g graph.Undirected) int {
	var m int
	it := g.Nodes()
	for it.Next() {
		m += g.From(it.Node().ID()).Len()
	}
	return m / 2
}
