package output

import (
	"net/url"
	"testing"
	"time"

	"github.com/wesleyorama2/exchange/internal/http"
)

func buildRequest(t *testing.T) *http.Request {
	t.Helper()
	u, err := url.Parse("https://api.example.com/users")
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	body, err := http.StringBody(`{"name":"John Doe"}`, http.UTF8)
	if err != nil {
		t.Fatalf("StringBody() error = %v", err)
	}

	b, err := http.NewRequestBuilderURI(u)
	if err != nil {
		t.Fatalf("NewRequestBuilderURI() error = %v", err)
	}
	if b, err = b.POST(body); err != nil {
		t.Fatalf("POST() error = %v", err)
	}
	if b, err = b.Headers("Content-Type", "application/json", "Authorization", "Bearer token123"); err != nil {
		t.Fatalf("Headers() error = %v", err)
	}
	if b, err = b.Timeout(5 * time.Second); err != nil {
		t.Fatalf("Timeout() error = %v", err)
	}
	if b, err = b.Version(http.HTTP11); err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	req, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return req
}

func buildResponse(t *testing.T, status int, body string) *http.Response[string] {
	t.Helper()
	headers, err := http.NewHeaders(map[string][]string{
		"Content-Type": {"application/json"},
		"X-Request-Id": {"abc"},
	}, http.KeepAll)
	if err != nil {
		t.Fatalf("NewHeaders() error = %v", err)
	}
	resp, err := http.NewResponse(buildRequest(t), status, headers, http.HTTP2, body)
	if err != nil {
		t.Fatalf("NewResponse() error = %v", err)
	}
	return resp
}
