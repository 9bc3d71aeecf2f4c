// O webhooky é o servidor HTTP que recebe webhooks do MailChimp e do Checkr,
// expõe sincronização sob demanda e consome pedidos da fila SQS.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/opsbridge/opsbridge/internal/app"
	"github.com/opsbridge/opsbridge/pkg/logger"
	"github.com/opsbridge/opsbridge/webhooky"
)

const shutdownGrace = 15 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "caminho do arquivo de configuração")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, configPath)
	if err != nil {
		return err
	}
	defer application.Close()

	log := logger.Component(application.Logger, "webhooky")

	var archiver webhooky.Archiver = webhooky.NoopArchiver{}
	if bucket := application.Config.AWS.ArchiveBucket; bucket != "" {
		archiver = webhooky.NewS3Archiver(application.S3, bucket,
			application.Config.AWS.ArchivePrefix, log)
	}

	server := webhooky.NewServer(application.Config.Server, webhooky.Deps{
		DB:          application.DB,
		Subscribers: application.Tables.Subscribers,
		Applicants:  application.Tables.Applicants,
		Runner:      application.Runner,
		Archiver:    archiver,
		Recorder:    application.Recorder,
		Logger:      log,
	})

	var wg sync.WaitGroup
	if queueURL := application.Config.AWS.SyncQueueURL; queueURL != "" {
		listener := webhooky.NewSQSListener(application.SQS, queueURL,
			application.Runner, logger.Component(application.Logger, "sqs"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			listener.Run(ctx)
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("encerrando")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	wg.Wait()
	return <-errCh
}
