// internal/pipeline/events.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"
)

// Event describes one stage transition. The orchestrator publishes these
// best-effort: a failing sink never affects the stage outcome.
type Event struct {
	Type          string                   `json:"type"`
	ApplicationID string                   `json:"applicationId"`
	Stage         models.StageType         `json:"stage"`
	Result        models.ReviewResult      `json:"result"`
	Score         float64                  `json:"score"`
	Status        models.ApplicationStatus `json:"status"`
	Feedback      string                   `json:"feedback,omitempty"`
	Timestamp     time.Time                `json:"timestamp"`
}

const (
	EventStageCompleted      = "pipeline.stage.completed"
	EventApplicationRejected = "pipeline.application.rejected"
)

type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

// NoopSink is used when no broadcast channel is configured.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, Event) error { return nil }

// CompositeSink fans an event out to every configured sink. The first error
// is returned so the orchestrator can log it, but later sinks still run.
type CompositeSink []EventSink

func (c CompositeSink) Publish(ctx context.Context, event Event) error {
	var first error
	for _, sink := range c {
		if err := sink.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type snsPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// SNSSink broadcasts stage transitions to an SNS topic for live progress
// consumers.
type SNSSink struct {
	client   snsPublisher
	topicARN string
	logger   logger.Logger
}

func NewSNSSink(client snsPublisher, topicARN string, log logger.Logger) *SNSSink {
	return &SNSSink{
		client:   client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"component": "sns-sink"}),
	}
}

func (s *SNSSink) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(s.topicARN),
		Subject:  awssdk.String(event.Type),
		Message:  awssdk.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("publish to sns: %w", err)
	}

	s.logger.Debug("event published", map[string]interface{}{
		"type":          event.Type,
		"applicationId": event.ApplicationID,
		"stage":         event.Stage,
	})
	return nil
}

type emailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// RejectionNotifier emails the review team when an application is rejected.
// Non-rejection events are ignored.
type RejectionNotifier struct {
	client    emailSender
	fromEmail string
	toEmail   string
	logger    logger.Logger
}

func NewRejectionNotifier(client emailSender, fromEmail, toEmail string, log logger.Logger) *RejectionNotifier {
	return &RejectionNotifier{
		client:    client,
		fromEmail: fromEmail,
		toEmail:   toEmail,
		logger:    log.WithFields(map[string]interface{}{"component": "rejection-notifier"}),
	}
}

func (n *RejectionNotifier) Publish(ctx context.Context, event Event) error {
	if event.Type != EventApplicationRejected {
		return nil
	}

	subject := fmt.Sprintf("Application %s rejected at %s", event.ApplicationID, event.Stage)
	body := fmt.Sprintf("Application %s was rejected during the %s stage (score %.2f).\n\n%s",
		event.ApplicationID, event.Stage, event.Score, event.Feedback)

	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      awssdk.String(n.fromEmail),
		Destination: &sestypes.Destination{ToAddresses: []string{n.toEmail}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body:    &sestypes.Body{Text: &sestypes.Content{Data: awssdk.String(body)}},
		},
	})
	if err != nil {
		return fmt.Errorf("send rejection email: %w", err)
	}

	n.logger.Info("rejection notification sent", map[string]interface{}{
		"applicationId": event.ApplicationID,
		"stage":         event.Stage,
	})
	return nil
}
