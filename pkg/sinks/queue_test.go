package sinks

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/require"
)

// captureLogger records emitted event codes.
type captureLogger struct {
	mu     sync.Mutex
	events []string
}

func (l *captureLogger) record(event string) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
}

func (l *captureLogger) DebugObj(_, event string, _ map[string]any) { l.record(event) }
func (l *captureLogger) InfoObj(_, event string, _ map[string]any)  { l.record(event) }
func (l *captureLogger) WarnObj(_, event string, _ map[string]any)  { l.record(event) }
func (l *captureLogger) ErrorObj(_, event string, _ map[string]any) { l.record(event) }

type stubSQSClient struct {
	err  error
	last *sqs.SendMessageInput
}

func (c *stubSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	c.last = params
	if c.err != nil {
		return nil, c.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

type stubSNSClient struct {
	err  error
	last *sns.PublishInput
}

func (c *stubSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	c.last = params
	if c.err != nil {
		return nil, c.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func queueEvent() Event {
	return Event{
		URL:        "https://news.example/1",
		Title:      "Title",
		IngestedAt: time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQSSenderSend(t *testing.T) {
	client := &stubSQSClient{}
	sender := &awsSQSSender{queueURL: "https://sqs.example/q", client: client, log: nopLogger{}}

	require.NoError(t, sender.Send(context.Background(), queueEvent()))
	require.Equal(t, "https://sqs.example/q", aws.ToString(client.last.QueueUrl))
	require.Equal(t, "https://news.example/1", aws.ToString(client.last.MessageAttributes["url"].StringValue))

	var evt Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.last.MessageBody)), &evt))
	require.Equal(t, "Title", evt.Title)
}

func TestSQSSenderLogsSendFailure(t *testing.T) {
	log := &captureLogger{}
	sender := &awsSQSSender{
		queueURL: "https://sqs.example/q",
		client:   &stubSQSClient{err: errors.New("throttled")},
		log:      log,
	}

	err := sender.Send(context.Background(), queueEvent())
	require.Error(t, err)
	require.Contains(t, log.events, "sink_sqs_error")
}

func TestSNSSenderSend(t *testing.T) {
	client := &stubSNSClient{}
	sender := &awsSNSSender{topicARN: "arn:aws:sns:eu-west-1:1:news", client: client, log: nopLogger{}}

	require.NoError(t, sender.Send(context.Background(), queueEvent()))
	require.Equal(t, "arn:aws:sns:eu-west-1:1:news", aws.ToString(client.last.TopicArn))
	require.Equal(t, "https://news.example/1", aws.ToString(client.last.MessageAttributes["url"].StringValue))
}

func TestSNSSenderLogsSendFailure(t *testing.T) {
	log := &captureLogger{}
	sender := &awsSNSSender{
		topicARN: "arn:aws:sns:eu-west-1:1:news",
		client:   &stubSNSClient{err: errors.New("access denied")},
		log:      log,
	}

	err := sender.Send(context.Background(), queueEvent())
	require.Error(t, err)
	require.Contains(t, log.events, "sink_sns_error")
}
