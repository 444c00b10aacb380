package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/exchange/internal/assert"
	"github.com/wesleyorama2/exchange/internal/http"
	"github.com/wesleyorama2/exchange/internal/metrics"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q, must be one of: text, json, yaml", s)
	}
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req *http.Request) string
	FormatResponse(resp *http.Response[string]) string
	FormatResults(name string, results []assert.Result) string
	FormatSummary(name string, summary metrics.Summary) string
}

// RequestData represents the structured data of a request
type RequestData struct {
	Method         string              `json:"method" yaml:"method"`
	URL            string              `json:"url" yaml:"url"`
	Version        string              `json:"version,omitempty" yaml:"version,omitempty"`
	Headers        map[string][]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body           string              `json:"body,omitempty" yaml:"body,omitempty"`
	ContentLength  int64               `json:"contentLength" yaml:"contentLength"`
	ExpectContinue bool                `json:"expectContinue" yaml:"expectContinue"`
	Timeout        string              `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// ResponseData represents the structured data of a response
type ResponseData struct {
	StatusCode int                 `json:"statusCode" yaml:"statusCode"`
	Version    string              `json:"version" yaml:"version"`
	Headers    map[string][]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       interface{}         `json:"body,omitempty" yaml:"body,omitempty"`
}

// ResultsData represents the assertion results of one exchange
type ResultsData struct {
	Exchange string          `json:"exchange" yaml:"exchange"`
	Passed   int             `json:"passed" yaml:"passed"`
	Failed   int             `json:"failed" yaml:"failed"`
	Results  []assert.Result `json:"results" yaml:"results"`
}

// SummaryData represents a latency summary with millisecond values
type SummaryData struct {
	Exchange string  `json:"exchange" yaml:"exchange"`
	Count    int64   `json:"count" yaml:"count"`
	Errors   int64   `json:"errors" yaml:"errors"`
	MinMs    float64 `json:"minMs" yaml:"minMs"`
	MeanMs   float64 `json:"meanMs" yaml:"meanMs"`
	P50Ms    float64 `json:"p50Ms" yaml:"p50Ms"`
	P90Ms    float64 `json:"p90Ms" yaml:"p90Ms"`
	P99Ms    float64 `json:"p99Ms" yaml:"p99Ms"`
	MaxMs    float64 `json:"maxMs" yaml:"maxMs"`
}

func newRequestData(req *http.Request) RequestData {
	data := RequestData{
		Method:         req.Method(),
		URL:            req.URI().String(),
		ExpectContinue: req.ExpectContinue(),
	}
	if v, ok := req.Version(); ok {
		data.Version = v.String()
	}
	if req.Headers().Len() > 0 {
		data.Headers = req.Headers().Map()
	}
	if body, ok := req.Body(); ok {
		data.Body = body.String()
		data.ContentLength = body.ContentLength()
	}
	if d, ok := req.Timeout(); ok {
		data.Timeout = d.String()
	}
	return data
}

func newResponseData(resp *http.Response[string]) ResponseData {
	data := ResponseData{
		StatusCode: resp.StatusCode(),
		Version:    resp.Version().String(),
	}
	if resp.Headers().Len() > 0 {
		data.Headers = resp.Headers().Map()
	}
	if body := resp.Body(); body != "" {
		// Try to parse as JSON
		var parsed interface{}
		if err := json.Unmarshal([]byte(body), &parsed); err == nil {
			data.Body = parsed
		} else {
			data.Body = body
		}
	}
	return data
}

func newResultsData(name string, results []assert.Result) ResultsData {
	failed := assert.Failed(results)
	if results == nil {
		results = []assert.Result{}
	}
	return ResultsData{
		Exchange: name,
		Passed:   len(results) - failed,
		Failed:   failed,
		Results:  results,
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func newSummaryData(name string, s metrics.Summary) SummaryData {
	return SummaryData{
		Exchange: name,
		Count:    s.Count,
		Errors:   s.Errors,
		MinMs:    millis(s.Min),
		MeanMs:   millis(s.Mean),
		P50Ms:    millis(s.P50),
		P90Ms:    millis(s.P90),
		P99Ms:    millis(s.P99),
		MaxMs:    millis(s.Max),
	}
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(v interface{}, what string) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal %s: %s"}`, what, err)
	}
	return string(output)
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(req *http.Request) string {
	return f.marshal(newRequestData(req), "request")
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Response[string]) string {
	return f.marshal(newResponseData(resp), "response")
}

// FormatResults formats assertion results as JSON
func (f *JSONFormatter) FormatResults(name string, results []assert.Result) string {
	return f.marshal(newResultsData(name, results), "results")
}

// FormatSummary formats a latency summary as JSON
func (f *JSONFormatter) FormatSummary(name string, summary metrics.Summary) string {
	return f.marshal(newSummaryData(name, summary), "summary")
}

// YAMLFormatter formats output as YAML documents
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(v interface{}, what string) string {
	output, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("---\nerror: Failed to marshal %s: %s\n", what, err)
	}
	return "---\n" + string(output)
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(req *http.Request) string {
	return f.marshal(newRequestData(req), "request")
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *http.Response[string]) string {
	return f.marshal(newResponseData(resp), "response")
}

// FormatResults formats assertion results as YAML
func (f *YAMLFormatter) FormatResults(name string, results []assert.Result) string {
	return f.marshal(newResultsData(name, results), "results")
}

// FormatSummary formats a latency summary as YAML
func (f *YAMLFormatter) FormatSummary(name string, summary metrics.Summary) string {
	return f.marshal(newSummaryData(name, summary), "summary")
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}
