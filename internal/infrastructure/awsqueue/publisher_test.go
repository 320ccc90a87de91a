package awsqueue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotehub/quotehub/internal/domain/event"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{}, nil
}

func TestPublishSendsEventWithTypeAttribute(t *testing.T) {
	client := &fakeSQS{}
	p := NewPublisher(client, "https://sqs.example/queue")

	ev := event.New(event.TypeBroadcastCompleted, uuid.New())
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "https://sqs.example/queue", *in.QueueUrl)
	assert.Equal(t, "BroadcastCompleted", *in.MessageAttributes["eventType"].StringValue)

	var got event.Event
	require.NoError(t, json.Unmarshal([]byte(*in.MessageBody), &got))
	assert.Equal(t, ev.EventID, got.EventID)
	assert.Equal(t, ev.BroadcastID, got.BroadcastID)
}
