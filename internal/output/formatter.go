package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wesleyorama2/exchange/internal/assert"
	"github.com/wesleyorama2/exchange/internal/http"
	"github.com/wesleyorama2/exchange/internal/metrics"
)

// Formatter is responsible for formatting requests and responses in text format
type Formatter struct {
	Verbose bool
	NoColor bool

	scheme *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  SchemeFor(noColor),
	}
}

func (f *Formatter) colors() *ColorScheme {
	if f.scheme == nil {
		f.scheme = SchemeFor(f.NoColor)
	}
	return f.scheme
}

// FormatRequest formats a request for display
func (f *Formatter) FormatRequest(req *http.Request) string {
	var buf strings.Builder
	c := f.colors()

	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s", c.Method.Sprint(req.Method()), c.URL.Sprint(req.URI())))
	if v, ok := req.Version(); ok {
		buf.WriteString(" " + v.String())
	}
	buf.WriteString("\n")

	if f.Verbose || req.Headers().Len() > 0 {
		buf.WriteString("  Headers:\n")
		f.writeHeaders(&buf, req.Headers())
	}

	if f.Verbose {
		timeout := "none"
		if d, ok := req.Timeout(); ok {
			timeout = d.String()
		}
		buf.WriteString(fmt.Sprintf("  Expect-Continue: %t\n", req.ExpectContinue()))
		buf.WriteString(fmt.Sprintf("  Timeout: %s\n", timeout))
	}

	if body, ok := req.Body(); ok && body.ContentLength() > 0 {
		buf.WriteString(fmt.Sprintf("  Body (%d bytes): ", body.ContentLength()))
		buf.WriteString(formatJSONString(body.String()))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats a response for display
func (f *Formatter) FormatResponse(resp *http.Response[string]) string {
	var buf strings.Builder
	c := f.colors()

	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s %s\n",
		c.Status(resp.StatusCode()).Sprint(resp.StatusCode()),
		resp.Version()))

	if f.Verbose {
		buf.WriteString("  Headers:\n")
		f.writeHeaders(&buf, resp.Headers())
	}

	if body := resp.Body(); body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResults formats assertion results under the exchange name
func (f *Formatter) FormatResults(name string, results []assert.Result) string {
	var buf strings.Builder
	c := f.colors()

	failed := assert.Failed(results)
	icon := SuccessIcon(f.NoColor)
	if failed > 0 {
		icon = ErrorIcon(f.NoColor)
	}
	buf.WriteString(fmt.Sprintf("%s %s: %d/%d assertions passed\n",
		icon, c.Highlight.Sprint(name), len(results)-failed, len(results)))

	for _, r := range results {
		if r.Passed {
			buf.WriteString(fmt.Sprintf("  %s %s\n", SuccessIcon(f.NoColor), r.Message))
		} else {
			buf.WriteString(fmt.Sprintf("  %s %s\n", ErrorIcon(f.NoColor), c.Error.Sprint(r.Message)))
		}
	}
	return buf.String()
}

// FormatSummary formats a latency summary
func (f *Formatter) FormatSummary(name string, s metrics.Summary) string {
	var buf strings.Builder
	c := f.colors()

	buf.WriteString(fmt.Sprintf("%s: %d exchanges", c.Highlight.Sprint(name), s.Count))
	if s.Errors > 0 {
		buf.WriteString(", " + c.Error.Sprintf("%d errors", s.Errors))
	}
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf("  min %s  mean %s  max %s\n", s.Min, s.Mean, s.Max))
	buf.WriteString(fmt.Sprintf("  p50 %s  p90 %s  p99 %s\n", s.P50, s.P90, s.P99))
	return buf.String()
}

func (f *Formatter) writeHeaders(buf *strings.Builder, h *http.Headers) {
	c := f.colors()
	for _, name := range h.Names() {
		for _, value := range h.AllValues(name) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", c.HeaderKey.Sprint(name), c.HeaderValue.Sprint(value)))
		}
	}
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
