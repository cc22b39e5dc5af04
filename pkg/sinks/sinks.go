package sinks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Supported sink types.
	TypeQueue = "queue"
	TypeHTTP  = "http"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"

	httpDefaultTimeoutSeconds = 5
)

// Event is the payload emitted for every freshly ingested news item.
type Event struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// Sink receives ingest events. Failures are the caller's to contain;
// a broken sink must never abort ingestion.
type Sink interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the logging surface the sink implementations use.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) InfoObj(string, string, map[string]any)  {}
func (nopLogger) WarnObj(string, string, map[string]any)  {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}

// configFile is the on-disk shape of the sink configuration.
type configFile struct {
	Sinks []SinkConfig `json:"sinks" yaml:"sinks"`
}

// SinkConfig is a single sink entry declared in the config file.
type SinkConfig struct {
	ID      string           `json:"id" yaml:"id"`
	Type    string           `json:"type" yaml:"type"`
	Enabled *bool            `json:"enabled" yaml:"enabled"`
	Queue   *QueueSinkConfig `json:"queue" yaml:"queue"`
	HTTP    *HTTPSinkConfig  `json:"http" yaml:"http"`
}

// QueueSinkConfig selects a cloud queue provider.
type QueueSinkConfig struct {
	Provider string          `json:"provider" yaml:"provider"`
	SQS      *AWSSQSConfig   `json:"sqs" yaml:"sqs"`
	SNS      *AWSSNSConfig   `json:"sns" yaml:"sns"`
	GCP      *GCPTopicConfig `json:"gcp" yaml:"gcp"`
}

// AWSSQSConfig holds AWS SQS settings.
type AWSSQSConfig struct {
	QueueURL        string `json:"queue_url" yaml:"queue_url"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// AWSSNSConfig holds AWS SNS settings.
type AWSSNSConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// GCPTopicConfig holds Pub/Sub topic settings.
type GCPTopicConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// HTTPSinkConfig holds generic webhook settings.
type HTTPSinkConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoadConfigs reads sink definitions from a YAML or JSON file. The file
// content is env-expanded before decoding so credentials can live in the
// environment.
func LoadConfigs(path string) ([]SinkConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sinks file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sinks file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	file, err := decodeConfig(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(file.Sinks) == 0 {
		return nil, errors.New("sinks file contains no entries")
	}

	seen := make(map[string]struct{}, len(file.Sinks))
	out := make([]SinkConfig, 0, len(file.Sinks))
	for i := range file.Sinks {
		cfg := sanitizeSinkConfig(file.Sinks[i])
		if err := validateSinkConfig(cfg); err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate sink id %q", cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		out = append(out, cfg)
	}
	return out, nil
}

func decodeConfig(data []byte, ext string) (configFile, error) {
	var file configFile
	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return configFile{}, fmt.Errorf("decode yaml sinks: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return configFile{}, fmt.Errorf("decode json sinks: %w", err)
		}
	default:
		return configFile{}, errors.New("sinks file format not recognized (expected YAML or JSON)")
	}
	return file, nil
}

// sanitizeSinkConfig trims and normalizes a sink entry.
func sanitizeSinkConfig(cfg SinkConfig) SinkConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.Queue != nil {
		qc := *cfg.Queue
		qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
		if qc.SQS != nil {
			c := *qc.SQS
			trimAll(&c.QueueURL, &c.Region, &c.AccessKeyID, &c.SecretAccessKey)
			qc.SQS = &c
		}
		if qc.SNS != nil {
			c := *qc.SNS
			trimAll(&c.TopicARN, &c.Region, &c.AccessKeyID, &c.SecretAccessKey)
			qc.SNS = &c
		}
		if qc.GCP != nil {
			c := *qc.GCP
			trimAll(&c.ProjectID, &c.Topic, &c.CredentialsFile)
			qc.GCP = &c
		}
		cfg.Queue = &qc
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}

	return cfg
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// validateSinkConfig checks required fields per sink type.
func validateSinkConfig(cfg SinkConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case TypeQueue:
		if cfg.Queue == nil {
			return fmt.Errorf("queue config required for sink %q", cfg.ID)
		}
		switch cfg.Queue.Provider {
		case QueueProviderAWSSQS:
			return validateSQS(cfg.ID, cfg.Queue.SQS)
		case QueueProviderAWSSNS:
			return validateSNS(cfg.ID, cfg.Queue.SNS)
		case QueueProviderGCP:
			return validateGCP(cfg.ID, cfg.Queue.GCP)
		default:
			return fmt.Errorf("queue provider %q not supported for sink %q", cfg.Queue.Provider, cfg.ID)
		}
	case TypeHTTP:
		if cfg.HTTP == nil || cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for sink %q", cfg.ID)
		}
		return nil
	case "":
		return fmt.Errorf("type is required for sink %q", cfg.ID)
	default:
		return fmt.Errorf("type %q not supported for sink %q", cfg.Type, cfg.ID)
	}
}

func validateSQS(id string, cfg *AWSSQSConfig) error {
	if cfg == nil {
		return fmt.Errorf("sqs config required for sink %q", id)
	}
	if cfg.QueueURL == "" || cfg.Region == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return fmt.Errorf("sqs sink %q needs queue_url, region, access_key_id and secret_access_key", id)
	}
	return nil
}

func validateSNS(id string, cfg *AWSSNSConfig) error {
	if cfg == nil {
		return fmt.Errorf("sns config required for sink %q", id)
	}
	if cfg.TopicARN == "" || cfg.Region == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return fmt.Errorf("sns sink %q needs topic_arn, region, access_key_id and secret_access_key", id)
	}
	return nil
}

func validateGCP(id string, cfg *GCPTopicConfig) error {
	if cfg == nil {
		return fmt.Errorf("gcp config required for sink %q", id)
	}
	if cfg.ProjectID == "" || cfg.Topic == "" {
		return fmt.Errorf("gcp sink %q needs project_id and topic", id)
	}
	return nil
}

// EnabledValue returns the enabled flag, defaulting to true.
func (cfg SinkConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}

// Broadcast publishes the event to every sink, containing each sink's
// failure to that sink.
func Broadcast(ctx context.Context, all []Sink, evt Event, log Logger) {
	log = ensureLogger(log)
	for _, s := range all {
		if err := s.Publish(ctx, evt); err != nil {
			log.WarnObj("sink publish failed", "sink_error", map[string]any{
				"sink_id": s.ID(),
				"url":     evt.URL,
				"error":   err.Error(),
			})
		}
	}
}
