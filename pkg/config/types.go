package config

import "time"

// Config representa a estrutura raiz do arquivo YAML do serviço.
type Config struct {
	Version  string       `yaml:"version" validate:"required"`
	Server   ServerConf   `yaml:"server"`
	Database DatabaseConf `yaml:"database" validate:"required"`
	Redis    RedisConf    `yaml:"redis"`
	AWS      AWSConf      `yaml:"aws"`
	Airtable AirtableConf `yaml:"airtable" validate:"required"`
	Logging  LoggingConf  `yaml:"logging"`
	Metrics  MetricsConf  `yaml:"metrics"`
	Sync     SyncConf     `yaml:"sync"`
}

// ServerConf contém as configurações do listener HTTP do webhooky.
type ServerConf struct {
	Port    int    `yaml:"port" env:"SERVER_PORT" envDefault:"8080" validate:"gt=0,lt=65536"`
	Timeout string `yaml:"timeout" envDefault:"30s"` // Ex: "500ms", "2s"
}

// DatabaseConf aponta para o Postgres (sistema de registro).
type DatabaseConf struct {
	DSN          string `yaml:"dsn" env:"DATABASE_DSN" validate:"required"`
	MaxOpenConns int    `yaml:"max_open_conns" envDefault:"10"`
}

// RedisConf configura o cache de record-ids do Airtable.
type RedisConf struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr" env:"REDIS_ADDR" validate:"required_if=Enabled true"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	TTL      string `yaml:"ttl" envDefault:"24h"`
}

// AWSConf agrupa os recursos AWS usados pelo serviço.
type AWSConf struct {
	Region        string `yaml:"region" env:"AWS_REGION" envDefault:"us-east-1"`
	SecretsPrefix string `yaml:"secrets_prefix" envDefault:"opsbridge"`
	SyncQueueURL  string `yaml:"sync_queue_url" env:"SYNC_QUEUE_URL"`
	ArchiveBucket string `yaml:"archive_bucket" env:"ARCHIVE_BUCKET"`
	ArchivePrefix string `yaml:"archive_prefix" envDefault:"webhooks"`
}

// AirtableConf identifica a base espelho.
type AirtableConf struct {
	BaseID string `yaml:"base_id" env:"AIRTABLE_BASE_ID" validate:"required"`
}

// LoggingConf controla o zerolog global.
type LoggingConf struct {
	Enabled bool   `yaml:"enabled" envDefault:"true"`
	Level   string `yaml:"level" env:"LOG_LEVEL" envDefault:"info" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" envDefault:"json" validate:"omitempty,oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace" envDefault:"opsbridge"`
}

// SyncConf descreve os jobs de sincronização e seus filtros de espelhamento.
type SyncConf struct {
	Concurrency int       `yaml:"concurrency" envDefault:"4" validate:"omitempty,gt=0"`
	Jobs        []JobConf `yaml:"jobs" validate:"dive"`
}

// JobConf liga um job nomeado à sua tabela Airtable e ao filtro CEL opcional
// que decide quais linhas são espelhadas.
type JobConf struct {
	Name          string `yaml:"name" validate:"required"`
	AirtableTable string `yaml:"airtable_table" validate:"required"`
	Required      bool   `yaml:"required"`
	Filter        string `yaml:"filter"`
}

// GetTimeout converte o timeout do servidor, com fallback de 30s.
func (s ServerConf) GetTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetTTL converte o TTL do cache, com fallback de 24h.
func (r RedisConf) GetTTL() time.Duration {
	d, err := time.ParseDuration(r.TTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// Job procura a configuração de um job pelo nome.
func (s SyncConf) Job(name string) (JobConf, bool) {
	for _, j := range s.Jobs {
		if j.Name == name {
			return j, true
		}
	}
	return JobConf{}, false
}
