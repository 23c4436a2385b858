package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSSender is a minimal interface for sending messages to an SQS queue.
type SQSSender interface {
	SendMessage(ctx context.Context, body, eventType string) error
}

// SQSClient sends messages to a single queue.
type SQSClient struct {
	client   *sqs.Client
	queueURL string
}

func NewSQSClient(cfg sdkaws.Config, queueURL string) *SQSClient {
	return &SQSClient{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
	}
}

// SendMessage sends a single message to the queue
func (c *SQSClient) SendMessage(ctx context.Context, body, eventType string) error {
	input := &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(c.queueURL),
		MessageBody: sdkaws.String(body),
	}
	if eventType != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    sdkaws.String("String"),
				StringValue: sdkaws.String(eventType),
			},
		}
	}
	if _, err := c.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// GetQueueURL retrieves the URL for a queue name
func GetQueueURL(ctx context.Context, cfg sdkaws.Config, queueName string) (string, error) {
	client := sqs.NewFromConfig(cfg)
	result, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: &queueName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get queue URL: %w", err)
	}
	return *result.QueueUrl, nil
}
