package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Supported notifier types.
	TypeWebhook = "webhook"
	TypeQueue   = "queue"

	// Supported queue providers.
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"

	webhookDefaultMethod         = "POST"
	webhookDefaultTimeoutSeconds = 10
)

// configFile is the on-disk shape of the notifiers file.
type configFile struct {
	Notifiers []NotifierConfig `json:"notifiers" yaml:"notifiers"`
}

// NotifierConfig is one notifier entry declared in the notifiers file.
type NotifierConfig struct {
	ID      string               `json:"id" yaml:"id"`
	Type    string               `json:"type" yaml:"type"`
	Enabled *bool                `json:"enabled" yaml:"enabled"`
	Queue   *QueueNotifierConfig `json:"queue" yaml:"queue"`
	Webhook *WebhookConfig       `json:"webhook" yaml:"webhook"`
}

// QueueNotifierConfig selects a cloud queue provider.
type QueueNotifierConfig struct {
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

// GCPTopicConfig holds the minimal Pub/Sub topic settings.
type GCPTopicConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// WebhookConfig holds build-hook style HTTP sink settings.
type WebhookConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoadConfigs reads the notifiers file (YAML or JSON, environment variables
// expanded) and returns the validated, enabled entries in declaration order.
func LoadConfigs(path string) ([]NotifierConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("notifiers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read notifiers file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	parsed, err := parseConfigFile(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Notifiers) == 0 {
		return nil, errors.New("notifiers file contains no notifiers entries")
	}

	seen := make(map[string]bool, len(parsed.Notifiers))
	out := make([]NotifierConfig, 0, len(parsed.Notifiers))
	for i := range parsed.Notifiers {
		cfg := sanitizeConfig(parsed.Notifiers[i])
		if err := validateConfig(cfg); err != nil {
			return nil, fmt.Errorf("notifiers[%d]: %w", i, err)
		}
		if seen[cfg.ID] {
			return nil, fmt.Errorf("duplicate notifier id %q", cfg.ID)
		}
		seen[cfg.ID] = true
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func parseConfigFile(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	var cf configFile
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &cf); err != nil {
			return configFile{}, fmt.Errorf("decode json notifiers: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return configFile{}, fmt.Errorf("decode yaml notifiers: %w", err)
		}
	}
	return cf, nil
}

// sanitizeConfig trims and normalizes one notifier entry.
func sanitizeConfig(cfg NotifierConfig) NotifierConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Queue != nil {
		qc := *cfg.Queue
		qc.Provider = strings.ToLower(strings.TrimSpace(qc.Provider))
		if qc.SQS != nil {
			c := *qc.SQS
			c.QueueURL = strings.TrimSpace(c.QueueURL)
			c.Region = strings.TrimSpace(c.Region)
			c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
			c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
			qc.SQS = &c
		}
		if qc.SNS != nil {
			c := *qc.SNS
			c.TopicARN = strings.TrimSpace(c.TopicARN)
			c.Region = strings.TrimSpace(c.Region)
			c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
			c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
			qc.SNS = &c
		}
		if qc.GCP != nil {
			c := *qc.GCP
			c.ProjectID = strings.TrimSpace(c.ProjectID)
			c.Topic = strings.TrimSpace(c.Topic)
			c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
			qc.GCP = &c
		}
		cfg.Queue = &qc
	}

	if cfg.Webhook != nil {
		c := *cfg.Webhook
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = webhookDefaultMethod
		}
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = webhookDefaultTimeoutSeconds
		}
		c.Headers = sanitizeHeaders(c.Headers)
		cfg.Webhook = &c
	}

	return cfg
}

func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateConfig checks that one entry carries everything its type needs.
func validateConfig(cfg NotifierConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case TypeWebhook:
		if cfg.Webhook == nil {
			return fmt.Errorf("webhook config required for notifier %q", cfg.ID)
		}
		if cfg.Webhook.URL == "" {
			return fmt.Errorf("webhook.url is required for notifier %q", cfg.ID)
		}
	case TypeQueue:
		if cfg.Queue == nil {
			return fmt.Errorf("queue config required for notifier %q", cfg.ID)
		}
		switch cfg.Queue.Provider {
		case QueueProviderAWSSQS:
			return validateSQS(cfg.ID, cfg.Queue.SQS)
		case QueueProviderAWSSNS:
			return validateSNS(cfg.ID, cfg.Queue.SNS)
		case QueueProviderGCP:
			return validateGCP(cfg.ID, cfg.Queue.GCP)
		default:
			return fmt.Errorf("queue provider %q not supported for notifier %q", cfg.Queue.Provider, cfg.ID)
		}
	case "":
		return fmt.Errorf("type is required for notifier %q", cfg.ID)
	default:
		return fmt.Errorf("type %q not supported for notifier %q", cfg.Type, cfg.ID)
	}
	return nil
}

func validateSQS(id string, cfg *AWSSQSConfig) error {
	if cfg == nil {
		return fmt.Errorf("sqs config required for notifier %q", id)
	}
	for field, val := range map[string]string{
		"sqs.queue_url":         cfg.QueueURL,
		"sqs.region":            cfg.Region,
		"sqs.access_key_id":     cfg.AccessKeyID,
		"sqs.secret_access_key": cfg.SecretAccessKey,
	} {
		if val == "" {
			return fmt.Errorf("%s is required for notifier %q", field, id)
		}
	}
	return nil
}

func validateSNS(id string, cfg *AWSSNSConfig) error {
	if cfg == nil {
		return fmt.Errorf("sns config required for notifier %q", id)
	}
	for field, val := range map[string]string{
		"sns.topic_arn":         cfg.TopicARN,
		"sns.region":            cfg.Region,
		"sns.access_key_id":     cfg.AccessKeyID,
		"sns.secret_access_key": cfg.SecretAccessKey,
	} {
		if val == "" {
			return fmt.Errorf("%s is required for notifier %q", field, id)
		}
	}
	return nil
}

func validateGCP(id string, cfg *GCPTopicConfig) error {
	if cfg == nil {
		return fmt.Errorf("gcp config required for notifier %q", id)
	}
	if cfg.ProjectID == "" {
		return fmt.Errorf("gcp.project_id is required for notifier %q", id)
	}
	if cfg.Topic == "" {
		return fmt.Errorf("gcp.topic is required for notifier %q", id)
	}
	return nil
}

// EnabledValue reports the enabled flag, defaulting to true.
func (cfg NotifierConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
