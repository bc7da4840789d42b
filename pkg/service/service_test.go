package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphstat/netassess/pkg/dataset"
)

func waitForJob(t *testing.T, s *Service, id string) *Job {
	t.Helper()
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		job, err := s.Get(id)
		require.NoError(t, err)
		if job.Status == JobStatusCompleted || job.Status == JobStatusFailed {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return nil
}

func TestSubmitAndComplete(t *testing.T) {
	s := New(1, zerolog.Nop())
	defer s.Close()

	job, err := s.Submit(Request{
		Dataset: "florentine",
		Model:   "gnm",
		NumIter: 30,
		Seed:    7,
	})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	assert.Equal(t, JobStatusQueued, job.Status)

	done := waitForJob(t, s, job.ID)
	require.Equal(t, JobStatusCompleted, done.Status, "job error: %s", done.Error)

	result, err := s.Result(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, result.NumIter)
	assert.NotEmpty(t, result.Stats)
}

func TestSubmitRejectsBadRequests(t *testing.T) {
	s := New(1, zerolog.Nop())
	defer s.Close()

	_, err := s.Submit(Request{Dataset: "florentine", Model: "configuration"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")

	_, err = s.Submit(Request{Model: "gnm"})
	require.Error(t, err)

	_, err = s.Submit(Request{Dataset: "nope", Model: "gnm"})
	require.Error(t, err)
}

func TestGetAndResultOnUnknownJob(t *testing.T) {
	s := New(1, zerolog.Nop())
	defer s.Close()

	_, err := s.Get("missing")
	assert.Error(t, err)
	_, err = s.Result("missing")
	assert.Error(t, err)
}

func TestGetReturnsSnapshot(t *testing.T) {
	s := New(1, zerolog.Nop())
	defer s.Close()

	job, err := s.Submit(Request{Dataset: "florentine", Model: "gnm", NumIter: 10})
	require.NoError(t, err)

	snap, err := s.Get(job.ID)
	require.NoError(t, err)
	snap.Status = JobStatusFailed

	again, err := s.Get(job.ID)
	require.NoError(t, err)
	assert.NotEqual(t, JobStatusFailed, again.Status)
	waitForJob(t, s, job.ID)
}

func TestBuildGeneratorDefaults(t *testing.T) {
	observed := dataset.Florentine()

	for _, model := range []string{"gnp", "gnm", "smallworld", "pa"} {
		gen, err := BuildGenerator(Request{Model: model}, observed)
		require.NoError(t, err, model)
		assert.NotNil(t, gen, model)
	}

	_, err := BuildGenerator(Request{Model: "latent-space"}, observed)
	assert.Error(t, err)
}

func TestCleanupDropsExpiredJobs(t *testing.T) {
	s := New(1, zerolog.Nop())
	defer s.Close()
	s.jobTTL = time.Nanosecond

	job, err := s.Submit(Request{Dataset: "florentine", Model: "gnm", NumIter: 10})
	require.NoError(t, err)
	waitForJob(t, s, job.ID)

	time.Sleep(5 * time.Millisecond)
	s.cleanup()

	_, err = s.Get(job.ID)
	assert.Error(t, err)
	_, err = s.Result(job.ID)
	assert.Error(t, err)
}
