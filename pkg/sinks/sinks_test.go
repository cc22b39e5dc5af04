package sinks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeSinksFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigsYAML(t *testing.T) {
	t.Setenv("HOOK_TOKEN", "s3cret")

	path := writeSinksFile(t, "sinks.yaml", `
sinks:
  - id: hook
    type: http
    http:
      url: https://hook.example/ingest
      headers:
        Authorization: Bearer ${HOOK_TOKEN}
  - id: archive
    type: queue
    enabled: false
    queue:
      provider: aws-sqs
      sqs:
        queue_url: https://sqs.eu-west-1.amazonaws.com/1/news
        region: eu-west-1
        access_key_id: AKIA
        secret_access_key: shh
`)

	cfgs, err := LoadConfigs(path)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)

	require.Equal(t, "hook", cfgs[0].ID)
	require.True(t, cfgs[0].EnabledValue())
	require.Equal(t, "Bearer s3cret", cfgs[0].HTTP.Headers["Authorization"])
	require.Equal(t, httpDefaultTimeoutSeconds, cfgs[0].HTTP.TimeoutSeconds)

	require.Equal(t, "archive", cfgs[1].ID)
	require.False(t, cfgs[1].EnabledValue())
}

func TestLoadConfigsJSON(t *testing.T) {
	path := writeSinksFile(t, "sinks.json", `{"sinks":[
		{"id":"hook","type":"HTTP","http":{"url":" https://hook.example/ingest ","timeout_seconds":30}}
	]}`)

	cfgs, err := LoadConfigs(path)
	require.NoError(t, err)
	require.Len(t, cfgs, 1)
	require.Equal(t, "http", cfgs[0].Type, "type is normalized")
	require.Equal(t, "https://hook.example/ingest", cfgs[0].HTTP.URL, "url is trimmed")
	require.Equal(t, 30, cfgs[0].HTTP.TimeoutSeconds)
}

func TestLoadConfigsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no entries", "sinks: []\n"},
		{"missing id", "sinks:\n  - type: http\n    http:\n      url: https://x.example\n"},
		{"missing type", "sinks:\n  - id: a\n"},
		{"unknown type", "sinks:\n  - id: a\n    type: smtp\n"},
		{"http without url", "sinks:\n  - id: a\n    type: http\n    http: {}\n"},
		{"queue without provider", "sinks:\n  - id: a\n    type: queue\n    queue: {}\n"},
		{"gcp missing topic", "sinks:\n  - id: a\n    type: queue\n    queue:\n      provider: gcp\n      gcp:\n        project_id: p\n"},
		{"duplicate id", "sinks:\n  - id: a\n    type: http\n    http:\n      url: https://x.example\n  - id: a\n    type: http\n    http:\n      url: https://y.example\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSinksFile(t, "sinks.yaml", tc.content)
			_, err := LoadConfigs(path)
			require.Error(t, err)
		})
	}
}

func TestLoadConfigsMissingFile(t *testing.T) {
	_, err := LoadConfigs(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	_, err = LoadConfigs("")
	require.Error(t, err)
}

type stubSink struct {
	id   string
	err  error
	seen []Event
}

func (s *stubSink) ID() string   { return s.id }
func (s *stubSink) Type() string { return TypeHTTP }
func (s *stubSink) Publish(_ context.Context, evt Event) error {
	if s.err != nil {
		return s.err
	}
	s.seen = append(s.seen, evt)
	return nil
}

func TestBroadcastContainsFailures(t *testing.T) {
	ok := &stubSink{id: "ok"}
	broken := &stubSink{id: "broken", err: errors.New("endpoint down")}
	also := &stubSink{id: "also"}

	evt := Event{URL: "https://news.example/1", IngestedAt: time.Now()}
	Broadcast(context.Background(), []Sink{ok, broken, also}, evt, nil)

	require.Len(t, ok.seen, 1)
	require.Len(t, also.seen, 1, "a broken sink must not stop the rest")
}

func TestRegistryRoutesByType(t *testing.T) {
	built := 0
	reg := NewRegistry(map[string]Builder{
		"http": func(context.Context, SinkConfig, Logger) (Sink, error) {
			built++
			return &stubSink{id: "built"}, nil
		},
	})

	cfg := SinkConfig{ID: "hook", Type: "http"}
	s, err := reg.SinkFor(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, "built", s.ID())
	require.Equal(t, 1, built)

	_, err = reg.SinkFor(context.Background(), SinkConfig{ID: "x", Type: "smtp"}, nil)
	require.Error(t, err)

	_, err = reg.SinkFor(context.Background(), SinkConfig{ID: "x"}, nil)
	require.Error(t, err)
}

func TestBuildAllSkipsDisabled(t *testing.T) {
	off := false
	reg := NewRegistry(map[string]Builder{
		"http": func(_ context.Context, cfg SinkConfig, _ Logger) (Sink, error) {
			return &stubSink{id: cfg.ID}, nil
		},
	})

	cfgs := []SinkConfig{
		{ID: "on", Type: "http"},
		{ID: "off", Type: "http", Enabled: &off},
	}

	out, err := BuildAll(context.Background(), reg, cfgs, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "on", out[0].ID())
}
