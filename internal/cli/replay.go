package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/exchange/internal/assert"
	"github.com/wesleyorama2/exchange/internal/config"
	"github.com/wesleyorama2/exchange/internal/http"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay fixture exchanges and check their assertions",
		Long: `Replay loads a YAML or JSON fixture file, sends every selected exchange
through the in-memory loopback transport and evaluates its assertions.
The command fails when any exchange errors or any assertion fails.`,
		Example: `  exchange replay -f fixtures/users.yaml
  exchange replay -f fixtures/users.yaml -e createUser --var host=localhost:8080`,
		Args: cobra.NoArgs,
		RunE: runReplay,
	}

	flags := cmd.Flags()
	flags.StringP("file", "f", "", "Fixture file (required)")
	flags.StringArrayP("exchange", "e", nil, "Exchange to replay, repeatable (default all)")
	flags.StringArray("var", nil, "Override a fixture variable (name=value), repeatable")
	cmd.MarkFlagRequired("file")
	return cmd
}

// fixture is a loaded, validated fixture with its variables resolved.
type fixture struct {
	cfg  *config.Config
	vars map[string]string
}

func loadFixture(cmd *cobra.Command) (*fixture, error) {
	path, _ := cmd.Flags().GetString("file")
	overrides, _ := cmd.Flags().GetStringArray("var")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
		var sb strings.Builder
		sb.WriteString("configuration validation errors:")
		for _, e := range errs {
			sb.WriteString("\n  - " + e.Error())
		}
		return nil, fmt.Errorf("%s", sb.String())
	}

	vars := make(map[string]string, len(overrides))
	for _, kv := range overrides {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q, expected name=value", kv)
		}
		vars[name] = value
	}
	return &fixture{cfg: cfg, vars: config.MergeEnvironments(cfg.Variables, vars)}, nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	fx, err := loadFixture(cmd)
	if err != nil {
		return err
	}

	names, _ := cmd.Flags().GetStringArray("exchange")
	if len(names) == 0 {
		names = fx.cfg.ExchangeNames()
	}

	loop := http.NewLoopback()
	client, err := http.NewClient(loop)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	failed := 0
	for _, name := range names {
		ex, err := fx.cfg.Lookup(name)
		if err != nil {
			return err
		}
		log := s.log.With().Str("exchange", name).Logger()

		req, err := config.Mount(loop, ex, fx.vars)
		if err != nil {
			return fmt.Errorf("exchange %s: %w", name, err)
		}
		s.print(s.formatter.FormatRequest(req))

		resp, err := send(ctx, client, req, ex)
		if err != nil {
			log.Error().Err(err).Msg("exchange failed")
			failed++
			continue
		}
		s.print(s.formatter.FormatResponse(resp))

		results := assert.EvaluateAll(ex.Assertions, resp)
		s.print(s.formatter.FormatResults(name, results))
		if n := assert.Failed(results); n > 0 {
			log.Warn().Int("failed", n).Int("total", len(results)).Msg("assertions failed")
			failed++
		} else {
			log.Info().Int("status", resp.StatusCode()).Msg("exchange passed")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d exchanges failed", failed, len(names))
	}
	return nil
}

// send runs one exchange. A discarding consumer still yields a string
// response, with an empty body, so assertions and formatters see one type.
func send(ctx context.Context, client *http.Client, req *http.Request, ex config.Exchange) (*http.Response[string], error) {
	if ex.Discards() {
		resp, err := http.Send(ctx, client, req, http.DiscardingHandler())
		if err != nil {
			return nil, err
		}
		return http.NewResponse(req, resp.StatusCode(), resp.Headers(), resp.Version(), "")
	}

	handler, err := http.StringHandlerFromContentType(http.UTF8)
	if err != nil {
		return nil, err
	}
	return http.Send(ctx, client, req, handler)
}
