package cli

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/exchange/internal/http"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build URL",
		Short: "Build a request and print it",
		Long: `Build an immutable request from flags and print it. Headers given with
--header accumulate values; --set-header replaces every value of that name.`,
		Example: `  exchange build https://api.example.com/users -X POST -d '{"name":"ada"}' \
    -H 'Content-Type: application/json' --timeout 5s`,
		Args: cobra.ExactArgs(1),
		RunE: runBuild,
	}

	flags := cmd.Flags()
	flags.StringP("method", "X", "GET", "Request method")
	flags.StringArrayP("header", "H", nil, "Add a header value (\"Name: value\"), repeatable")
	flags.StringArray("set-header", nil, "Replace a header (\"Name: value\"), repeatable")
	flags.StringP("data", "d", "", "Request body")
	flags.String("charset", "utf-8", "Charset used to encode the body")
	flags.Duration("timeout", 0, "Request timeout")
	flags.String("http-version", "", "Preferred protocol version: HTTP/1.1 or HTTP/2")
	flags.Bool("expect-continue", false, "Request a 100-Continue handshake")
	return cmd
}

// requestFlags mirrors the build flags.
type requestFlags struct {
	method         string
	headers        []string
	setHeaders     []string
	data           string
	charset        string
	timeout        time.Duration
	version        string
	expectContinue bool
}

func readRequestFlags(cmd *cobra.Command) requestFlags {
	var f requestFlags
	f.method, _ = cmd.Flags().GetString("method")
	f.headers, _ = cmd.Flags().GetStringArray("header")
	f.setHeaders, _ = cmd.Flags().GetStringArray("set-header")
	f.data, _ = cmd.Flags().GetString("data")
	f.charset, _ = cmd.Flags().GetString("charset")
	f.timeout, _ = cmd.Flags().GetDuration("timeout")
	f.version, _ = cmd.Flags().GetString("http-version")
	f.expectContinue, _ = cmd.Flags().GetBool("expect-continue")
	return f
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	req, err := buildFromFlags(args[0], readRequestFlags(cmd))
	if err != nil {
		return err
	}
	s.log.Debug().Str("method", req.Method()).Stringer("uri", req.URI()).Int("headers", req.Headers().Len()).Msg("request built")

	s.print(s.formatter.FormatRequest(req))
	return nil
}

func buildFromFlags(rawURL string, f requestFlags) (*http.Request, error) {
	u, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}
	b, err := http.NewRequestBuilderURI(u)
	if err != nil {
		return nil, err
	}

	for _, h := range f.headers {
		name, value, err := splitHeader(h)
		if err != nil {
			return nil, err
		}
		if b, err = b.Header(name, value); err != nil {
			return nil, err
		}
	}
	for _, h := range f.setHeaders {
		name, value, err := splitHeader(h)
		if err != nil {
			return nil, err
		}
		if b, err = b.SetHeader(name, value); err != nil {
			return nil, err
		}
	}

	body := http.NoBody()
	if f.data != "" {
		enc, err := http.LookupCharset(f.charset)
		if err != nil {
			return nil, err
		}
		if body, err = http.StringBody(f.data, enc); err != nil {
			return nil, err
		}
	}

	switch method := strings.ToUpper(f.method); method {
	case "GET", "DELETE":
		if f.data != "" {
			return nil, fmt.Errorf("%s requests cannot carry --data, use -X POST or PUT", method)
		}
		if method == "GET" {
			b = b.GET()
		} else {
			b = b.DELETE()
		}
	default:
		if b, err = b.Method(method, body); err != nil {
			return nil, err
		}
	}

	if f.timeout != 0 {
		if b, err = b.Timeout(f.timeout); err != nil {
			return nil, err
		}
	}
	if f.version != "" {
		v, err := http.ParseVersion(f.version)
		if err != nil {
			return nil, err
		}
		if b, err = b.Version(v); err != nil {
			return nil, err
		}
	}
	b = b.ExpectContinue(f.expectContinue)

	return b.Build()
}

// parseURL adds a missing scheme and requires a host.
func parseURL(raw string) (*url.URL, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: missing host", raw)
	}
	return u, nil
}

// splitHeader parses "Name: value".
func splitHeader(h string) (string, string, error) {
	name, value, ok := strings.Cut(h, ":")
	if !ok {
		return "", "", fmt.Errorf("invalid header %q, expected \"Name: value\"", h)
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), nil
}
