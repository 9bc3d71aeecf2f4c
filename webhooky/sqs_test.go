package webhooky

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsbridge/opsbridge/airsync"
	"github.com/opsbridge/opsbridge/cio"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func newListener(sqsClient SQSAPI, jobs []cio.Job) *SQSListener {
	runner := cio.NewRunner(jobs, 1, nil, zerolog.Nop())
	return NewSQSListener(sqsClient, "https://sqs/queue", runner, zerolog.Nop())
}

func TestSQSHandleSuccessDeletesMessage(t *testing.T) {
	client := &fakeSQS{}
	var ran bool
	listener := newListener(client, []cio.Job{
		{Name: "employees", Run: func(ctx context.Context) (airsync.SyncStat, error) {
			ran = true
			return airsync.SyncStat{}, nil
		}},
	})

	listener.handle(context.Background(), `{"job": "employees"}`, aws.String("rh-1"))

	assert.True(t, ran)
	require.Len(t, client.deleted, 1)
	assert.Equal(t, "rh-1", client.deleted[0])
}

func TestSQSHandleFailureKeepsMessage(t *testing.T) {
	client := &fakeSQS{}
	listener := newListener(client, []cio.Job{
		{Name: "employees", Run: func(ctx context.Context) (airsync.SyncStat, error) {
			return airsync.SyncStat{}, errors.New("provedor fora do ar")
		}},
	})

	listener.handle(context.Background(), `{"job": "employees"}`, aws.String("rh-2"))
	assert.Empty(t, client.deleted)
}

func TestSQSHandleDiscardsGarbage(t *testing.T) {
	client := &fakeSQS{}
	listener := newListener(client, nil)

	listener.handle(context.Background(), `nao é json`, aws.String("rh-3"))
	listener.handle(context.Background(), `{"job": ""}`, aws.String("rh-4"))
	listener.handle(context.Background(), `{"job": "desconhecido"}`, aws.String("rh-5"))

	assert.Equal(t, []string{"rh-3", "rh-4", "rh-5"}, client.deleted)
}

func TestSQSRunStopsOnCancel(t *testing.T) {
	listener := newListener(&fakeSQS{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		listener.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("listener não encerrou após o cancelamento")
	}
}
