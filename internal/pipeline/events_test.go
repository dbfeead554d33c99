// internal/pipeline/events_test.go
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-pipeline/internal/common/logger"
	"review-pipeline/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, input)
	return &sns.PublishOutput{}, f.err
}

type fakeSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, input)
	return &ses.SendEmailOutput{}, f.err
}

func rejectionEvent() Event {
	return Event{
		Type:          EventApplicationRejected,
		ApplicationID: "app-1",
		Stage:         models.StageCostAnalysis,
		Result:        models.ResultRejected,
		Score:         0.12,
		Status:        models.StatusRejected,
		Feedback:      "budget too small",
		Timestamp:     time.Now().UTC(),
	}
}

// ==========================
// Sink Tests
// ==========================

func TestSNSSink_PublishesEventJSON(t *testing.T) {
	client := &fakeSNS{}
	sink := NewSNSSink(client, "arn:aws:sns:us-east-1:000000000000:pipeline-events", logger.NewTestLogger(t))

	err := sink.Publish(context.Background(), rejectionEvent())

	require.NoError(t, err)
	require.Len(t, client.inputs, 1)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:pipeline-events", *client.inputs[0].TopicArn)

	var decoded Event
	require.NoError(t, json.Unmarshal([]byte(*client.inputs[0].Message), &decoded))
	assert.Equal(t, "app-1", decoded.ApplicationID)
	assert.Equal(t, models.StageCostAnalysis, decoded.Stage)
}

func TestSNSSink_PublishError(t *testing.T) {
	sink := NewSNSSink(&fakeSNS{err: errors.New("denied")}, "arn", logger.NewTestLogger(t))

	err := sink.Publish(context.Background(), rejectionEvent())

	assert.Error(t, err)
}

func TestRejectionNotifier_SendsEmailOnRejection(t *testing.T) {
	client := &fakeSES{}
	notifier := NewRejectionNotifier(client, "pipeline@example.com", "reviewers@example.com", logger.NewTestLogger(t))

	err := notifier.Publish(context.Background(), rejectionEvent())

	require.NoError(t, err)
	require.Len(t, client.inputs, 1)
	assert.Equal(t, "pipeline@example.com", *client.inputs[0].Source)
	assert.Contains(t, *client.inputs[0].Message.Body.Text.Data, "budget too small")
}

func TestRejectionNotifier_IgnoresNonRejectionEvents(t *testing.T) {
	client := &fakeSES{}
	notifier := NewRejectionNotifier(client, "from@example.com", "to@example.com", logger.NewTestLogger(t))

	event := rejectionEvent()
	event.Type = EventStageCompleted
	err := notifier.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Empty(t, client.inputs)
}

func TestCompositeSink_AllSinksRunDespiteErrors(t *testing.T) {
	failing := &capturingSink{err: errors.New("boom")}
	ok := &capturingSink{}
	sink := CompositeSink{failing, ok}

	err := sink.Publish(context.Background(), rejectionEvent())

	assert.Error(t, err)
	assert.Len(t, failing.events, 1)
	assert.Len(t, ok.events, 1)
}
