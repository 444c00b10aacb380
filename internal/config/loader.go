package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/exchange/internal/assert"
)

// Config represents a fixture file: canned exchanges replayed through the
// in-memory transport.
type Config struct {
	Variables map[string]string   `json:"variables,omitempty" yaml:"variables,omitempty"`
	Exchanges map[string]Exchange `json:"exchanges" yaml:"exchanges"`
}

// Exchange pairs a request description with the response the loopback
// transport answers it with.
type Exchange struct {
	Request    RequestSpec        `json:"request" yaml:"request"`
	Response   ResponseSpec       `json:"response" yaml:"response"`
	Consumer   string             `json:"consumer,omitempty" yaml:"consumer,omitempty"`
	Assertions []assert.Assertion `json:"assertions,omitempty" yaml:"assertions,omitempty"`
}

// Header is one header operation applied to the request builder, in order.
// Replace selects SetHeader over Header.
type Header struct {
	Name    string `json:"name" yaml:"name"`
	Value   string `json:"value" yaml:"value"`
	Replace bool   `json:"replace,omitempty" yaml:"replace,omitempty"`
}

// RequestSpec describes the request to build.
type RequestSpec struct {
	Method         string   `json:"method,omitempty" yaml:"method,omitempty"`
	URL            string   `json:"url" yaml:"url"`
	Headers        []Header `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body           string   `json:"body,omitempty" yaml:"body,omitempty"`
	Charset        string   `json:"charset,omitempty" yaml:"charset,omitempty"`
	Timeout        Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Version        string   `json:"version,omitempty" yaml:"version,omitempty"`
	ExpectContinue bool     `json:"expectContinue,omitempty" yaml:"expectContinue,omitempty"`
}

// ResponseSpec describes the canned response. Chunks are delivered to the
// body consumer one at a time; Body is shorthand for a single chunk.
type ResponseSpec struct {
	Status  int                 `json:"status" yaml:"status"`
	Version string              `json:"version,omitempty" yaml:"version,omitempty"`
	Headers map[string][]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string              `json:"body,omitempty" yaml:"body,omitempty"`
	Chunks  []string            `json:"chunks,omitempty" yaml:"chunks,omitempty"`
}

// Consumer names accepted in an exchange.
const (
	ConsumerString  = "string"
	ConsumerDiscard = "discard"
)

// Duration is a time.Duration read from strings like "30s" or "5 seconds".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.set(s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) set(s string) error {
	if strings.TrimSpace(s) == "" {
		*d = 0
		return nil
	}
	parsed, err := parseDurationString(s)
	if err != nil {
		return fmt.Errorf("invalid duration format '%s': %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// LoadConfig loads a fixture file.
//
// The file format is determined by extension:
//   - .json -> JSON
//   - anything else -> YAML
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return ParseConfig(data, path)
}

// ParseConfig parses fixture data, choosing the format from the extension of
// path.
func ParseConfig(data []byte, path string) (*Config, error) {
	var config Config

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML config: %w", err)
		}
	}

	return &config, nil
}

// ExchangeNames returns the exchange names in sorted order.
func (c *Config) ExchangeNames() []string {
	names := make([]string, 0, len(c.Exchanges))
	for name := range c.Exchanges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named exchange.
func (c *Config) Lookup(name string) (Exchange, error) {
	ex, ok := c.Exchanges[name]
	if !ok {
		return Exchange{}, fmt.Errorf("exchange not found: %s", name)
	}
	return ex, nil
}

// parseDurationString parses duration strings like "30s", "5m", "1h" and
// the spelled out "30 seconds".
func parseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	duration = strings.ReplaceAll(strings.ToLower(duration), " ", "")

	// longest words first so "seconds" is not left as "s" + "s"
	for _, r := range []struct{ word, unit string }{
		{"milliseconds", "ms"},
		{"millisecond", "ms"},
		{"seconds", "s"},
		{"second", "s"},
		{"minutes", "m"},
		{"minute", "m"},
		{"hours", "h"},
		{"hour", "h"},
	} {
		duration = strings.ReplaceAll(duration, r.word, r.unit)
	}

	return time.ParseDuration(duration)
}

// ProcessEnvironment replaces {{name}} placeholders in input
func ProcessEnvironment(input string, env map[string]string) string {
	result := input
	for key, value := range env {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// MergeEnvironments merges two environments, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}
