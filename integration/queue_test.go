package integration

import (
	"context"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// memoryQueue is an in-process stand-in for one SQS queue. It serves both the publisher and the consumer.
type memoryQueue struct {
	mu       sync.Mutex
	next     int
	messages map[string]types.Message
	order    []string
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{messages: map[string]types.Message{}}
}

func (q *memoryQueue) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.next++
	handle := strconv.Itoa(q.next)
	q.messages[handle] = types.Message{
		MessageId:     aws.String("msg-" + handle),
		ReceiptHandle: aws.String(handle),
		Body:          params.MessageBody,
	}
	q.order = append(q.order, handle)
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-" + handle)}, nil
}

func (q *memoryQueue) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	output := &sqs.ReceiveMessageOutput{}
	for _, handle := range q.order {
		if len(output.Messages) == int(params.MaxNumberOfMessages) {
			break
		}
		if message, ok := q.messages[handle]; ok {
			output.Messages = append(output.Messages, message)
		}
	}
	return output, nil
}

func (q *memoryQueue) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.messages, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (q *memoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}
