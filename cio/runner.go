package cio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsbridge/opsbridge/airsync"
	"github.com/opsbridge/opsbridge/pkg/metrics"
)

// Job é uma unidade de sincronização nomeada. Jobs marcados como Required
// derrubam a rodada inteira quando falham; os demais apenas logam.
type Job struct {
	Name     string
	Required bool
	Run      func(ctx context.Context) (airsync.SyncStat, error)
}

// Result é o desfecho de um job dentro de uma rodada.
type Result struct {
	Job     string
	Stat    airsync.SyncStat
	Err     error
	Elapsed time.Duration
}

// Runner executa os jobs com concorrência limitada.
type Runner struct {
	jobs        []Job
	concurrency int
	recorder    *metrics.SyncRecorder
	logger      zerolog.Logger
}

func NewRunner(jobs []Job, concurrency int, recorder *metrics.SyncRecorder, logger zerolog.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Runner{
		jobs:        jobs,
		concurrency: concurrency,
		recorder:    recorder,
		logger:      logger,
	}
}

// Jobs lista os nomes registrados.
func (r *Runner) Jobs() []string {
	names := make([]string, len(r.jobs))
	for i, job := range r.jobs {
		names[i] = job.Name
	}
	return names
}

// RunAll executa todos os jobs. O erro retornado agrega apenas as falhas de
// jobs Required; os resultados individuais saem completos de qualquer forma.
func (r *Runner) RunAll(ctx context.Context) ([]Result, error) {
	results := make([]Result, len(r.jobs))
	sem := make(chan struct{}, r.concurrency)

	var wg sync.WaitGroup
	for i, job := range r.jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = r.runOne(ctx, job)
		}(i, job)
	}
	wg.Wait()

	var failures []error
	for i, res := range results {
		if res.Err != nil && r.jobs[i].Required {
			failures = append(failures, fmt.Errorf("%s: %w", res.Job, res.Err))
		}
	}
	if len(failures) > 0 {
		return results, fmt.Errorf("jobs obrigatórios falharam: %v", failures)
	}
	return results, nil
}

// RunJob executa um único job pelo nome.
func (r *Runner) RunJob(ctx context.Context, name string) (Result, error) {
	for _, job := range r.jobs {
		if job.Name == name {
			res := r.runOne(ctx, job)
			return res, res.Err
		}
	}
	return Result{}, fmt.Errorf("job %q não registrado", name)
}

func (r *Runner) runOne(ctx context.Context, job Job) Result {
	logger := r.logger.With().Str("job", job.Name).Logger()
	logger.Info().Msg("job iniciado")

	start := time.Now()
	stat, err := job.Run(ctx)
	elapsed := time.Since(start)

	if r.recorder != nil {
		r.recorder.RecordRun(job.Name, stat.Created, stat.Updated, stat.Deleted,
			stat.Skipped, stat.Failed, elapsed)
	}

	if err != nil {
		logger.Error().Err(err).Dur("elapsed", elapsed).Msg("job falhou")
	} else {
		logger.Info().Dur("elapsed", elapsed).Str("stat", stat.String()).Msg("job concluído")
	}

	return Result{Job: job.Name, Stat: stat, Err: err, Elapsed: elapsed}
}
