// O cio roda uma rodada completa de sincronização: carrega os dados dos
// provedores para o Postgres e reconcilia as tabelas Airtable. Sai com
// código diferente de zero se algum job obrigatório falhar.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opsbridge/opsbridge/internal/app"
	"github.com/opsbridge/opsbridge/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "caminho do arquivo de configuração")
	jobName := flag.String("job", "", "roda apenas o job informado")
	flag.Parse()

	if err := run(*configPath, *jobName); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, jobName string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, configPath)
	if err != nil {
		return err
	}
	defer application.Close()

	log := logger.Component(application.Logger, "cio")

	if jobName != "" {
		result, err := application.Runner.RunJob(ctx, jobName)
		if err != nil {
			return err
		}
		log.Info().Str("job", result.Job).Str("stat", result.Stat.String()).Msg("rodada concluída")
		return nil
	}

	results, err := application.Runner.RunAll(ctx)
	for _, result := range results {
		event := log.Info()
		if result.Err != nil {
			event = log.Warn().Err(result.Err)
		}
		event.Str("job", result.Job).Str("stat", result.Stat.String()).Msg("resultado do job")
	}
	return err
}
