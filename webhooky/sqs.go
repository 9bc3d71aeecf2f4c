package webhooky

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"

	"github.com/opsbridge/opsbridge/cio"
)

// SQSAPI é o recorte do cliente SQS usado pelo listener.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// syncMessage é o corpo aceito na fila: {"job": "employees"}.
type syncMessage struct {
	Job string `json:"job"`
}

// SQSListener consome pedidos de sincronização da fila. Mensagens de jobs
// que falharam voltam pelo visibility timeout e são retentadas. Exceção:
// corpos que nunca vão rodar (JSON inválido ou job inexistente) são removidos
// de imediato para não ciclarem na fila.
type SQSListener struct {
	client   SQSAPI
	queueURL string
	runner   *cio.Runner
	logger   zerolog.Logger
}

func NewSQSListener(client SQSAPI, queueURL string, runner *cio.Runner, logger zerolog.Logger) *SQSListener {
	return &SQSListener{client: client, queueURL: queueURL, runner: runner, logger: logger}
}

// Run faz long-polling até o contexto ser cancelado.
func (l *SQSListener) Run(ctx context.Context) {
	l.logger.Info().Str("queue", l.queueURL).Msg("listener da fila iniciado")

	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("listener da fila encerrado")
			return
		default:
		}

		out, err := l.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(l.queueURL),
			MaxNumberOfMessages: 5,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Error().Err(err).Msg("recebimento da fila falhou")
			continue
		}

		for _, msg := range out.Messages {
			l.handle(ctx, aws.ToString(msg.Body), msg.ReceiptHandle)
		}
	}
}

func (l *SQSListener) handle(ctx context.Context, body string, receipt *string) {
	// Mensagens irrecuperáveis são removidas na hora; retentar não muda nada
	var req syncMessage
	if err := json.Unmarshal([]byte(body), &req); err != nil || req.Job == "" {
		l.logger.Warn().Str("body", body).Msg("mensagem inválida descartada")
		l.delete(ctx, receipt)
		return
	}

	if !l.knownJob(req.Job) {
		l.logger.Warn().Str("job", req.Job).Msg("job desconhecido descartado")
		l.delete(ctx, receipt)
		return
	}

	if _, err := l.runner.RunJob(ctx, req.Job); err != nil {
		l.logger.Error().Err(err).Str("job", req.Job).Msg("sincronização pela fila falhou")
		return
	}
	l.delete(ctx, receipt)
}

func (l *SQSListener) knownJob(name string) bool {
	for _, job := range l.runner.Jobs() {
		if job == name {
			return true
		}
	}
	return false
}

func (l *SQSListener) delete(ctx context.Context, receipt *string) {
	_, err := l.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(l.queueURL),
		ReceiptHandle: receipt,
	})
	if err != nil {
		l.logger.Warn().Err(err).Msg("remoção da mensagem falhou")
	}
}
