// Package app monta as dependências compartilhadas pelos binários: config,
// logger, banco, cache, segredos, clientes dos provedores e o runner.
package app

import (
	"context"
	"database/sql"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"

	"github.com/opsbridge/opsbridge/airtable"
	"github.com/opsbridge/opsbridge/cio"
	"github.com/opsbridge/opsbridge/internal/database"
	"github.com/opsbridge/opsbridge/pkg/auth"
	"github.com/opsbridge/opsbridge/pkg/cache"
	"github.com/opsbridge/opsbridge/pkg/config"
	"github.com/opsbridge/opsbridge/pkg/logger"
	"github.com/opsbridge/opsbridge/pkg/metrics"
	"github.com/opsbridge/opsbridge/pkg/secrets"
)

// App reúne tudo que webhooky e cio compartilham.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	DB       *sql.DB
	Cache    cache.RecordIDCache
	Recorder *metrics.SyncRecorder
	Airtable *airtable.Client
	Tables   *cio.Tables
	Runner   *cio.Runner
	S3       *s3.Client
	SQS      *sqs.Client

	managers []*auth.Manager
}

// New carrega a configuração, aplica as migrações e conecta os provedores
// declarados nos jobs. Os token managers já saem renovando em background.
func New(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.Configure(cfg.Logging)

	provider, err := metrics.Setup(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	var recordCache cache.RecordIDCache = cache.Noop{}
	if cfg.Redis.Enabled {
		recordCache = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.GetTTL())
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("carregar config AWS: %w", err)
	}

	store, err := secrets.NewStore(ctx, cfg.AWS.Region, cfg.AWS.SecretsPrefix)
	if err != nil {
		db.Close()
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Cache:    recordCache,
		Recorder: metrics.NewSyncRecorder(provider),
		S3:       s3.NewFromConfig(awsCfg),
		SQS:      sqs.NewFromConfig(awsCfg),
	}

	airtableToken, err := store.Raw(ctx, "airtable")
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("segredo do airtable: %w", err)
	}
	app.Airtable = airtable.NewClient(airtableToken, cfg.Airtable.BaseID)

	app.Tables, err = cio.BuildTables(db, app.Airtable, recordCache, cfg.Sync,
		logger.Component(log, "airsync"))
	if err != nil {
		app.Close()
		return nil, err
	}

	providers, err := app.connectProviders(ctx, store)
	if err != nil {
		app.Close()
		return nil, err
	}

	jobs, err := cio.BuildJobs(app.Tables, providers, cfg.Sync, logger.Component(log, "cio"))
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Runner = cio.NewRunner(jobs, cfg.Sync.Concurrency, app.Recorder,
		logger.Component(log, "runner"))

	return app, nil
}

// Close encerra managers e a conexão com o banco.
func (a *App) Close() {
	for _, m := range a.managers {
		m.Stop()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
