package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wesleyorama2/exchange/internal/http"
)

// BuildRequest turns the request half of ex into an immutable request,
// substituting vars into the URL, header values and body.
func BuildRequest(ex Exchange, vars map[string]string) (*http.Request, error) {
	spec := ex.Request

	u, err := url.Parse(ProcessEnvironment(spec.URL, vars))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	b, err := http.NewRequestBuilderURI(u)
	if err != nil {
		return nil, err
	}

	for _, h := range spec.Headers {
		value := ProcessEnvironment(h.Value, vars)
		if h.Replace {
			b, err = b.SetHeader(h.Name, value)
		} else {
			b, err = b.Header(h.Name, value)
		}
		if err != nil {
			return nil, fmt.Errorf("header %q: %w", h.Name, err)
		}
	}

	body, err := requestBody(spec, vars)
	if err != nil {
		return nil, err
	}
	method := strings.ToUpper(spec.Method)
	if spec.Body != "" && !carriesBody(method) {
		return nil, fmt.Errorf("%w: %s requests cannot carry a body", http.ErrInvalidArgument, methodName(method))
	}
	switch method {
	case "", "GET":
		b = b.GET()
	case "DELETE":
		b = b.DELETE()
	default:
		if b, err = b.Method(method, body); err != nil {
			return nil, err
		}
	}

	if spec.Timeout != 0 {
		if b, err = b.Timeout(spec.Timeout.Std()); err != nil {
			return nil, err
		}
	}
	if spec.Version != "" {
		v, err := http.ParseVersion(spec.Version)
		if err != nil {
			return nil, err
		}
		if b, err = b.Version(v); err != nil {
			return nil, err
		}
	}
	b = b.ExpectContinue(spec.ExpectContinue)

	return b.Build()
}

// carriesBody reports whether method is sent with the fixture body. GET and
// DELETE, including an omitted method, are built without one.
func carriesBody(method string) bool {
	switch strings.ToUpper(method) {
	case "", "GET", "DELETE":
		return false
	}
	return true
}

func methodName(method string) string {
	if method == "" {
		return "GET"
	}
	return strings.ToUpper(method)
}

func requestBody(spec RequestSpec, vars map[string]string) (*http.Publisher, error) {
	if spec.Body == "" {
		return http.NoBody(), nil
	}
	enc := http.UTF8
	if spec.Charset != "" {
		var err error
		if enc, err = http.LookupCharset(spec.Charset); err != nil {
			return nil, err
		}
	}
	return http.StringBody(ProcessEnvironment(spec.Body, vars), enc)
}

// RawResponse turns the response half of ex into what the loopback transport
// hands back.
func RawResponse(ex Exchange, vars map[string]string) (*http.RawResponse, error) {
	spec := ex.Response

	headers := make(map[string][]string, len(spec.Headers))
	for name, values := range spec.Headers {
		processed := make([]string, len(values))
		for i, v := range values {
			processed[i] = ProcessEnvironment(v, vars)
		}
		headers[name] = processed
	}
	h, err := http.NewHeaders(headers, http.KeepAll)
	if err != nil {
		return nil, err
	}

	raw := &http.RawResponse{Status: spec.Status, Header: h}
	if spec.Version != "" {
		if raw.Proto, err = http.ParseVersion(spec.Version); err != nil {
			return nil, err
		}
	}

	chunks := spec.Chunks
	if len(chunks) == 0 && spec.Body != "" {
		chunks = []string{spec.Body}
	}
	for _, chunk := range chunks {
		raw.Chunks = append(raw.Chunks, []byte(ProcessEnvironment(chunk, vars)))
	}
	return raw, nil
}

// Mount builds the request of ex and registers its canned response on loop
// under the request's method and URI.
func Mount(loop *http.Loopback, ex Exchange, vars map[string]string) (*http.Request, error) {
	req, err := BuildRequest(ex, vars)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	raw, err := RawResponse(ex, vars)
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	loop.Handle(req.Method(), req.URI().String(), raw)
	return req, nil
}

// Discards reports whether ex asks for the response body to be dropped.
func (ex Exchange) Discards() bool {
	return strings.EqualFold(ex.Consumer, ConsumerDiscard)
}
