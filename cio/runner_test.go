package cio

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsbridge/opsbridge/airsync"
	"github.com/opsbridge/opsbridge/pkg/config"
	"github.com/opsbridge/opsbridge/pkg/metrics"
)

func okJob(name string) Job {
	return Job{Name: name, Run: func(ctx context.Context) (airsync.SyncStat, error) {
		return airsync.SyncStat{Created: 1}, nil
	}}
}

func TestRunnerRunAll(t *testing.T) {
	var calls atomic.Int32
	jobs := []Job{
		{Name: "a", Run: func(ctx context.Context) (airsync.SyncStat, error) {
			calls.Add(1)
			return airsync.SyncStat{Created: 2}, nil
		}},
		{Name: "b", Run: func(ctx context.Context) (airsync.SyncStat, error) {
			calls.Add(1)
			return airsync.SyncStat{Updated: 3}, nil
		}},
	}

	runner := NewRunner(jobs, 2, metrics.NewSyncRecorder(&metrics.NoopProvider{}), zerolog.Nop())
	results, err := runner.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int32(2), calls.Load())

	// Resultados saem na ordem de registro, não de término
	assert.Equal(t, "a", results[0].Job)
	assert.Equal(t, 2, results[0].Stat.Created)
	assert.Equal(t, 3, results[1].Stat.Updated)
}

func TestRunnerRequiredFailureFailsRun(t *testing.T) {
	jobs := []Job{
		{Name: "broken", Required: true, Run: func(ctx context.Context) (airsync.SyncStat, error) {
			return airsync.SyncStat{}, errors.New("provedor fora do ar")
		}},
		okJob("fine"),
	}

	runner := NewRunner(jobs, 1, nil, zerolog.Nop())
	results, err := runner.RunAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	// O job saudável ainda roda
	require.Len(t, results, 2)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 1, results[1].Stat.Created)
}

func TestRunnerOptionalFailureIsTolerated(t *testing.T) {
	jobs := []Job{
		{Name: "flaky", Run: func(ctx context.Context) (airsync.SyncStat, error) {
			return airsync.SyncStat{}, errors.New("instável")
		}},
		okJob("fine"),
	}

	runner := NewRunner(jobs, 1, nil, zerolog.Nop())
	_, err := runner.RunAll(context.Background())
	assert.NoError(t, err)
}

func TestRunnerRunJob(t *testing.T) {
	runner := NewRunner([]Job{okJob("only")}, 1, nil, zerolog.Nop())

	res, err := runner.RunJob(context.Background(), "only")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stat.Created)

	_, err = runner.RunJob(context.Background(), "missing")
	assert.Error(t, err)
}

func TestBuildJobsRejectsUnknownName(t *testing.T) {
	tables := &Tables{}
	_, err := BuildJobs(tables, Providers{}, config.SyncConf{
		Jobs: []config.JobConf{{Name: "mystery", AirtableTable: "X"}},
	}, zerolog.Nop())
	assert.Error(t, err)
}

func TestBuildJobsRequiresProvider(t *testing.T) {
	tables := &Tables{}
	_, err := BuildJobs(tables, Providers{}, config.SyncConf{
		Jobs: []config.JobConf{{Name: JobEmployees, AirtableTable: "Employees"}},
	}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gusto")
}

func TestBuildJobsOrderAndFlags(t *testing.T) {
	tables := &Tables{}
	jobs, err := BuildJobs(tables, Providers{Zoom: &fakeZoom{}, Checkr: &fakeCheckr{}}, config.SyncConf{
		Jobs: []config.JobConf{
			{Name: JobZoomUsers, AirtableTable: "Zoom Users"},
			{Name: JobApplicants, AirtableTable: "Applicants", Required: true},
		},
	}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, JobZoomUsers, jobs[0].Name)
	assert.False(t, jobs[0].Required)
	assert.True(t, jobs[1].Required)
}
