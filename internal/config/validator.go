package config

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/wesleyorama2/exchange/internal/http"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateConfig validates the configuration. Exchanges are checked in name
// order so the result is stable.
func ValidateConfig(config *Config) []ValidationError {
	var errors []ValidationError

	if len(config.Exchanges) == 0 {
		errors = append(errors, ValidationError{
			Path:    "exchanges",
			Message: "at least one exchange is required",
		})
	}

	for _, name := range config.ExchangeNames() {
		errors = append(errors, validateExchange(name, config.Exchanges[name], config.Variables)...)
	}

	return errors
}

func validateExchange(name string, ex Exchange, vars map[string]string) []ValidationError {
	var errors []ValidationError
	add := func(field, format string, args ...interface{}) {
		errors = append(errors, ValidationError{
			Path:    fmt.Sprintf("exchanges.%s.%s", name, field),
			Message: fmt.Sprintf(format, args...),
		})
	}

	req := ex.Request
	if req.URL == "" {
		add("request.url", "url is required")
	} else if u, err := url.Parse(ProcessEnvironment(req.URL, vars)); err != nil {
		add("request.url", "invalid url: %v", err)
	} else if u.Scheme == "" || u.Host == "" {
		add("request.url", "url must be absolute: %s", req.URL)
	}

	if req.Method != "" && !httpguts.ValidHeaderFieldName(req.Method) {
		add("request.method", "invalid method: %s", req.Method)
	}
	if req.Body != "" && !carriesBody(req.Method) {
		add("request.body", "%s requests cannot carry a body", methodName(req.Method))
	}

	for i, h := range req.Headers {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			add(fmt.Sprintf("request.headers[%d].name", i), "invalid header name: %q", h.Name)
		}
	}

	if req.Charset != "" {
		if _, err := http.LookupCharset(req.Charset); err != nil {
			add("request.charset", "unknown charset: %s", req.Charset)
		}
	}
	if req.Timeout < 0 {
		add("request.timeout", "timeout must be positive")
	}
	if req.Version != "" {
		if _, err := http.ParseVersion(req.Version); err != nil {
			add("request.version", "invalid version: %s", req.Version)
		}
	}

	resp := ex.Response
	if resp.Status < 100 || resp.Status > 999 {
		add("response.status", "status must be between 100 and 999, got %d", resp.Status)
	}
	if resp.Version != "" {
		if _, err := http.ParseVersion(resp.Version); err != nil {
			add("response.version", "invalid version: %s", resp.Version)
		}
	}
	if resp.Body != "" && len(resp.Chunks) > 0 {
		add("response", "body and chunks are mutually exclusive")
	}
	if _, err := http.NewHeaders(resp.Headers, http.KeepAll); err != nil {
		add("response.headers", "%v", err)
	}

	switch strings.ToLower(ex.Consumer) {
	case "", ConsumerString, ConsumerDiscard:
	default:
		add("consumer", "invalid consumer %q, must be one of: %s, %s", ex.Consumer, ConsumerString, ConsumerDiscard)
	}

	for i, a := range ex.Assertions {
		if err := a.Validate(); err != nil {
			add(fmt.Sprintf("assertions[%d]", i), "%v", err)
		}
	}

	return errors
}
