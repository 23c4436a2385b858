package events

import (
	"context"
	"fmt"

	"github.com/yashrajoria/luxe-storefront/models"
	aws_pkg "github.com/yashrajoria/luxe-storefront/pkg/aws"
)

// SQSPublisher enqueues order events on a single queue.
type SQSPublisher struct {
	sender aws_pkg.SQSSender
}

func NewSQSPublisher(sender aws_pkg.SQSSender) *SQSPublisher {
	return &SQSPublisher{sender: sender}
}

func (p *SQSPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.sender.SendMessage(ctx, string(body), event.Event); err != nil {
		return fmt.Errorf("send %s to sqs: %w", event.Event, err)
	}
	return nil
}

func (p *SQSPublisher) Close() error { return nil }
