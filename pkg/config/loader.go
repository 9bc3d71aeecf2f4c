// Package config carrega a configuração do serviço a partir de um arquivo
// YAML, aplica overrides de variáveis de ambiente (tags "env"/"envDefault")
// e valida a estrutura resultante.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load lê o arquivo YAML, aplica defaults e overrides de ambiente e valida.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ler arquivo de configuração: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse do YAML: %w", err)
	}

	// Segundo parse genérico só para saber quais chaves o YAML definiu de
	// fato. Sem isso um "enabled: false" explícito é indistinguível do campo
	// ausente e o envDefault o sobrescreveria.
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse do YAML: %w", err)
	}

	if err := applyEnv(cfg, doc); err != nil {
		return nil, err
	}

	if err := NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv preenche campos da struct com valores de variáveis de ambiente
// baseado nas tags "env" e "envDefault". Valores vindos do YAML têm
// prioridade menor que a variável de ambiente, mas maior que o default.
// doc é o documento YAML cru, usado para saber quais chaves foram definidas.
func applyEnv(cfg any, doc map[string]any) error {
	val := reflect.ValueOf(cfg)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: applyEnv espera ponteiro para struct, recebeu %s", val.Kind())
	}
	return applyEnvStruct(val.Elem(), doc)
}

func applyEnvStruct(val reflect.Value, doc map[string]any) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		yamlKey := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		docValue, present := doc[yamlKey]

		// Structs aninhadas são processadas recursivamente
		if field.Kind() == reflect.Struct {
			sub, _ := docValue.(map[string]any)
			if err := applyEnvStruct(field, sub); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		defaultTag := fieldType.Tag.Get("envDefault")
		if envTag == "" && defaultTag == "" {
			continue
		}

		envValue := ""
		if envTag != "" {
			envValue = os.Getenv(envTag)
		}

		switch {
		case envValue != "":
			// Ambiente sobrescreve o YAML
		case present:
			// O YAML definiu a chave, mesmo que com o valor zero
			continue
		default:
			envValue = defaultTag
		}

		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("config: campo %s (env %s=%q): %w", fieldType.Name, envTag, envValue, err)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)

	case reflect.Bool:
		boolValue, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			return err
		}
		field.SetBool(boolValue)

	case reflect.Float32, reflect.Float64:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)

	default:
		return fmt.Errorf("tipo não suportado %s", field.Type())
	}
	return nil
}
