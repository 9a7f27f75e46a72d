package sqs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMessageBody = `{"event_id":"5d0f8a3e-8a8b-4b7e-9c55-0b4f2a1f0c11","action":"created","product_id":123,"name":"Fedora","price":"12.50","category":"CLOTHS","available":true}`

// mockSQSConsumerClient is a mock implementation of the SQS client for consumer testing.
type mockSQSConsumerClient struct {
	receiveMessageFunc func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	deleteMessageFunc  func(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func (m *mockSQSConsumerClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if m.receiveMessageFunc != nil {
		return m.receiveMessageFunc(ctx, params, optFns...)
	}
	return &sqs.ReceiveMessageOutput{Messages: []types.Message{}}, nil
}

func (m *mockSQSConsumerClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(ctx, params, optFns...)
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func singleMessage(body *string) func(context.Context, *sqs.ReceiveMessageInput, ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
		return &sqs.ReceiveMessageOutput{
			Messages: []types.Message{
				{
					Body:          body,
					ReceiptHandle: aws.String("test-receipt-handle"),
				},
			},
		}, nil
	}
}

func TestConsumer_processMessage(t *testing.T) {
	t.Run("message is decoded for the handler", func(t *testing.T) {
		// given
		var handled ProductMessage
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, func(_ context.Context, msg ProductMessage) error {
			handled = msg
			return nil
		})
		message := types.Message{
			Body:          aws.String(testMessageBody),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.NoError(t, err)
		assert.Equal(t, ActionCreated, handled.Action)
		assert.Equal(t, int64(123), handled.ProductID)
		assert.Equal(t, "12.50", handled.Price)
		assert.Equal(t, "CLOTHS", handled.Category)
	})

	t.Run("default handler logs", func(t *testing.T) {
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, nil)

		err := consumer.processMessage(context.Background(), types.Message{Body: aws.String(testMessageBody)})

		require.NoError(t, err)
	})

	t.Run("nil message body", func(t *testing.T) {
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, nil)

		err := consumer.processMessage(context.Background(), types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "message body is nil")
	})

	t.Run("invalid JSON message body", func(t *testing.T) {
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, nil)

		err := consumer.processMessage(context.Background(), types.Message{Body: aws.String(`{"invalid json`)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal message")
	})

	t.Run("handler error", func(t *testing.T) {
		handlerErr := errors.New("downstream unavailable")
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL, func(context.Context, ProductMessage) error {
			return handlerErr
		})

		err := consumer.processMessage(context.Background(), types.Message{Body: aws.String(testMessageBody)})

		require.Error(t, err)
		assert.True(t, errors.Is(err, handlerErr))
	})
}

func TestConsumer_deleteMessage(t *testing.T) {
	t.Run("successful message deletion", func(t *testing.T) {
		// given
		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				assert.Equal(t, testQueueURL, *params.QueueUrl)
				assert.Equal(t, "test-receipt-handle", *params.ReceiptHandle)
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		// when
		err := consumer.deleteMessage(context.Background(), types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		// then
		require.NoError(t, err)
	})

	t.Run("error deleting message", func(t *testing.T) {
		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				return nil, errors.New("failed to delete")
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		err := consumer.deleteMessage(context.Background(), types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete message")
	})
}

func TestConsumer_receiveMessages(t *testing.T) {
	t.Run("processed messages are deleted", func(t *testing.T) {
		// given
		deleted := 0
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				assert.Equal(t, testQueueURL, *params.QueueUrl)
				assert.Equal(t, int32(10), params.MaxNumberOfMessages)
				assert.Equal(t, int32(20), params.WaitTimeSeconds)
				return singleMessage(aws.String(testMessageBody))(ctx, params, optFns...)
			},
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted++
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		// when
		err := consumer.receiveMessages(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
	})

	t.Run("handles receive message error", func(t *testing.T) {
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return nil, errors.New("failed to receive")
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		err := consumer.receiveMessages(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to receive messages")
	})

	t.Run("unprocessable message stays on the queue", func(t *testing.T) {
		deleted := 0
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: singleMessage(aws.String(`{"invalid json`)),
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted++
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		err := consumer.receiveMessages(context.Background())

		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestConsumer_Start(t *testing.T) {
	t.Run("stops when the context is cancelled", func(t *testing.T) {
		// given
		ctx, cancel := context.WithCancel(context.Background())
		handled := 0
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: singleMessage(aws.String(testMessageBody)),
		}
		consumer := NewConsumer(mockClient, testQueueURL, func(context.Context, ProductMessage) error {
			handled++
			cancel()
			return nil
		})

		// when
		err := consumer.Start(ctx)

		// then
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 1, handled)
	})
}

func TestNewConsumer(t *testing.T) {
	t.Run("creates consumer successfully", func(t *testing.T) {
		// given
		mockClient := &mockSQSConsumerClient{}

		// when
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		// then
		require.NotNil(t, consumer)
		assert.Equal(t, testQueueURL, consumer.queueURL)
		assert.NotNil(t, consumer.handle)
	})
}
