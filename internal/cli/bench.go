package cli

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/exchange/internal/config"
	"github.com/wesleyorama2/exchange/internal/http"
	"github.com/wesleyorama2/exchange/internal/metrics"
	"github.com/wesleyorama2/exchange/internal/rate"
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bench",
		Short:   "Repeat one fixture exchange and report latency percentiles",
		Example: `  exchange bench -f fixtures/users.yaml -e createUser -n 10000 -c 8`,
		Args:    cobra.NoArgs,
		RunE:    runBench,
	}

	flags := cmd.Flags()
	flags.StringP("file", "f", "", "Fixture file (required)")
	flags.StringArrayP("exchange", "e", nil, "Exchange to repeat (required, exactly one)")
	flags.StringArray("var", nil, "Override a fixture variable (name=value), repeatable")
	flags.IntP("iterations", "n", 100, "Number of exchanges to run")
	flags.IntP("concurrency", "c", 1, "Number of concurrent workers")
	flags.Int("warmup", 0, "Exchanges to run and discard before measuring")
	flags.Float64("rate", 0, "Target exchanges per second across all workers (0 means unpaced)")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("exchange")
	return cmd
}

func runBench(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	names, _ := cmd.Flags().GetStringArray("exchange")
	iterations, _ := cmd.Flags().GetInt("iterations")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	warmup, _ := cmd.Flags().GetInt("warmup")
	perSecond, _ := cmd.Flags().GetFloat64("rate")

	if len(names) != 1 {
		return fmt.Errorf("bench needs exactly one --exchange, got %d", len(names))
	}
	if iterations < 1 {
		return fmt.Errorf("iterations must be at least 1")
	}
	if concurrency < 1 || concurrency > 1000 {
		return fmt.Errorf("concurrency must be between 1 and 1000")
	}
	if warmup < 0 {
		return fmt.Errorf("warmup cannot be negative")
	}
	if perSecond < 0 {
		return fmt.Errorf("rate cannot be negative")
	}

	fx, err := loadFixture(cmd)
	if err != nil {
		return err
	}
	name := names[0]
	ex, err := fx.cfg.Lookup(name)
	if err != nil {
		return err
	}

	loop := http.NewLoopback()
	if _, err := config.Mount(loop, ex, fx.vars); err != nil {
		return fmt.Errorf("exchange %s: %w", name, err)
	}
	client, err := http.NewClient(loop)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	recorder := metrics.NewRecorder()
	b := &bench{client: client, exchange: ex, vars: fx.vars, recorder: recorder}
	if perSecond > 0 {
		b.pacer = rate.NewPacer(perSecond)
	}

	if warmup > 0 {
		s.log.Debug().Int("iterations", warmup).Msg("warming up")
		b.run(ctx, warmup, concurrency)
		recorder.Reset()
	}

	s.log.Info().Str("exchange", name).Int("iterations", iterations).Int("concurrency", concurrency).Msg("benchmark started")
	start := time.Now()
	b.run(ctx, iterations, concurrency)
	s.log.Info().Dur("elapsed", time.Since(start)).Msg("benchmark finished")
	if b.pacer != nil {
		scheduled, waited := b.pacer.Stats()
		s.log.Debug().Int64("scheduled", scheduled).Dur("waited", waited).Msg("pacing")
	}

	summary := recorder.Summary()
	s.print(s.formatter.FormatSummary(name, summary))
	if summary.Errors > 0 {
		return fmt.Errorf("%d of %d exchanges failed", summary.Errors, iterations)
	}
	return nil
}

// bench repeats one exchange across a fixed pool of workers.
type bench struct {
	client   *http.Client
	exchange config.Exchange
	vars     map[string]string
	recorder *metrics.Recorder
	pacer    *rate.Pacer // nil when unpaced
}

// run executes n exchanges on workers goroutines sharing one counter.
func (b *bench) run(ctx context.Context, n, workers int) {
	var next atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, err := config.BuildRequest(b.exchange, b.vars)
			if err != nil {
				for next.Add(1) <= int64(n) {
					b.recorder.RecordError()
				}
				return
			}

			for next.Add(1) <= int64(n) {
				if ctx.Err() != nil {
					b.recorder.RecordError()
					continue
				}
				if b.pacer != nil {
					if err := b.pacer.Wait(ctx); err != nil {
						b.recorder.RecordError()
						continue
					}
				}
				start := time.Now()
				if _, err := send(ctx, b.client, req, b.exchange); err != nil {
					b.recorder.RecordError()
					continue
				}
				b.recorder.Record(time.Since(start))
			}
		}()
	}
	wg.Wait()
}
