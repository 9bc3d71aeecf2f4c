package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/cel-go/cel"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *Config) error {
	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Field(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica (Regras de negócio da configuração)
	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}
	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *Config) error {
	// 1. Unicidade de nomes de job
	seen := make(map[string]bool)
	for _, job := range cfg.Sync.Jobs {
		if seen[job.Name] {
			return fmt.Errorf("job duplicado detectado: '%s'", job.Name)
		}
		seen[job.Name] = true
	}

	// 2. Filtros CEL precisam compilar em tempo de carga, não na primeira
	// execução do job
	for _, job := range cfg.Sync.Jobs {
		if job.Filter == "" {
			continue
		}
		if err := checkFilter(job.Filter); err != nil {
			return fmt.Errorf("filtro do job '%s': %w", job.Name, err)
		}
	}

	// 3. Arquivamento em S3 exige bucket quando prefixo foi customizado
	if cfg.AWS.ArchiveBucket == "" && cfg.AWS.ArchivePrefix != "webhooks" {
		return fmt.Errorf("archive_prefix definido sem archive_bucket")
	}
	return nil
}

// checkFilter compila a expressão contra o mesmo ambiente usado pelo airsync
// (variável 'row' como mapa) e exige resultado booleano.
func checkFilter(expr string) error {
	env, err := cel.NewEnv(cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)))
	if err != nil {
		return fmt.Errorf("criar ambiente CEL: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("expressão inválida: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return fmt.Errorf("expressão deve resultar em booleano, retorna %s", ast.OutputType())
	}
	return nil
}
