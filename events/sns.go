package events

import (
	"context"
	"fmt"

	"github.com/yashrajoria/luxe-storefront/models"
	aws_pkg "github.com/yashrajoria/luxe-storefront/pkg/aws"
)

// SNSPublisher fans order events out through an SNS topic.
type SNSPublisher struct {
	client   aws_pkg.SNSPublisher
	topicArn string
}

func NewSNSPublisher(client aws_pkg.SNSPublisher, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn}
}

func (p *SNSPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	body, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.topicArn, event.Event, body); err != nil {
		return fmt.Errorf("publish %s to sns: %w", event.Event, err)
	}
	return nil
}

func (p *SNSPublisher) Close() error { return nil }
