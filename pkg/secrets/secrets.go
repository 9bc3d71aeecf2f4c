// Package secrets carrega credenciais de provedores a partir do AWS Secrets
// Manager. Cada provedor tem um segredo JSON próprio sob um prefixo comum
// (ex: "opsbridge/gusto").
package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsClient abstrai o SDK da AWS (Permite Mocking)
type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Store resolve segredos de provedores sob um prefixo.
type Store struct {
	client SecretsClient
	prefix string
}

// NewStore inicializa o client real da AWS para a região informada.
func NewStore(ctx context.Context, region, prefix string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("carregar config AWS: %w", err)
	}
	return &Store{client: secretsmanager.NewFromConfig(cfg), prefix: prefix}, nil
}

// NewStoreWithClient injeta um client customizado (testes).
func NewStoreWithClient(client SecretsClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Provider busca o segredo JSON de um provedor e decodifica em out.
func (s *Store) Provider(ctx context.Context, name string, out any) error {
	secretID := s.prefix + "/" + name
	raw, err := s.getSecret(ctx, secretID)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode do segredo %s: %w", secretID, err)
	}
	return nil
}

// Raw busca um segredo como string pura (tokens simples, ex: Airtable).
func (s *Store) Raw(ctx context.Context, name string) (string, error) {
	return s.getSecret(ctx, s.prefix+"/"+name)
}

func (s *Store) getSecret(ctx context.Context, secretID string) (string, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretID,
	})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager (%s): %w", secretID, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("segredo %s sem valor string", secretID)
	}
	return *out.SecretString, nil
}
