package webhooky

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Archiver guarda o payload bruto de um webhook para auditoria. Falhas de
// arquivamento nunca afetam a resposta ao provedor.
type Archiver interface {
	Archive(ctx context.Context, source, eventID string, payload []byte)
}

// S3API é o recorte do cliente S3 usado pelo arquivamento.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver grava cada payload em
// <prefix>/<source>/<AAAA-MM-DD>/<event-id>.json.
type S3Archiver struct {
	client S3API
	bucket string
	prefix string
	logger zerolog.Logger
}

func NewS3Archiver(client S3API, bucket, prefix string, logger zerolog.Logger) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

func (a *S3Archiver) Archive(ctx context.Context, source, eventID string, payload []byte) {
	key := a.objectKey(source, eventID, time.Now().UTC())

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &a.bucket,
		Key:    &key,
		Body:   bytes.NewReader(payload),
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("key", key).Msg("arquivamento do webhook falhou")
	}
}

func (a *S3Archiver) objectKey(source, eventID string, now time.Time) string {
	parts := []string{}
	if a.prefix != "" {
		parts = append(parts, strings.Trim(a.prefix, "/"))
	}
	parts = append(parts, source, now.Format("2006-01-02"), eventID+".json")
	return strings.Join(parts, "/")
}

// NoopArchiver descarta os payloads. Usado quando não há bucket configurado.
type NoopArchiver struct{}

func (NoopArchiver) Archive(ctx context.Context, source, eventID string, payload []byte) {}
