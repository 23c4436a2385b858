package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// CloudWatchLogsWriter ships every Write as one CloudWatch log event. It is meant to be
// tee'd behind a zap core, so Write never fails the caller.
type CloudWatchLogsWriter struct {
	client        *cloudwatchlogs.Client
	logGroupName  string
	logStreamName string

	mu            sync.Mutex
	sequenceToken *string
}

// NewCloudWatchLogsWriter ensures the log group exists and opens a fresh stream named
// after the service and process start time.
func NewCloudWatchLogsWriter(ctx context.Context, cfg aws.Config, logGroupName, serviceName string) (*CloudWatchLogsWriter, error) {
	w := &CloudWatchLogsWriter{
		client:        cloudwatchlogs.NewFromConfig(cfg),
		logGroupName:  logGroupName,
		logStreamName: fmt.Sprintf("%s-%d", serviceName, time.Now().Unix()),
	}

	if _, err := w.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(w.logGroupName),
	}); err != nil {
		var existsErr *types.ResourceAlreadyExistsException
		if !errors.As(err, &existsErr) {
			return nil, fmt.Errorf("failed to create log group: %w", err)
		}
	}

	if _, err := w.client.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    aws.String(w.logGroupName),
		RetentionInDays: aws.Int32(30),
	}); err != nil {
		return nil, fmt.Errorf("failed to set retention policy: %w", err)
	}

	if _, err := w.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(w.logGroupName),
		LogStreamName: aws.String(w.logStreamName),
	}); err != nil {
		return nil, fmt.Errorf("failed to create log stream: %w", err)
	}

	return w, nil
}

// Write implements io.Writer
func (w *CloudWatchLogsWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := w.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(w.logGroupName),
		LogStreamName: aws.String(w.logStreamName),
		LogEvents: []types.InputLogEvent{{
			Message:   aws.String(string(p)),
			Timestamp: aws.Int64(time.Now().UnixMilli()),
		}},
		SequenceToken: w.sequenceToken,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "CloudWatch write error: %v\n", err)
		return len(p), nil
	}
	w.sequenceToken = out.NextSequenceToken
	return len(p), nil
}
