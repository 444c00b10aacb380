package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/exchange/internal/output"
)

var version = "0.1.0"

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "exchange",
		Short:   "Build immutable HTTP requests and replay canned exchanges",
		Version: version,
		Long: `Exchange builds immutable HTTP requests from the command line and replays
fixture files of request/response pairs through an in-memory transport,
checking each response against declarative assertions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Show headers and request details")
	flags.StringP("output", "o", "text", "Output format: text, json, yaml")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newReplayCmd())
	root.AddCommand(newBenchCmd())
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// session carries what every subcommand needs once flags are parsed.
type session struct {
	log       zerolog.Logger
	out       io.Writer
	formatter output.FormatProvider
	noColor   bool
}

func newSession(cmd *cobra.Command) (*session, error) {
	levelName, _ := cmd.Flags().GetString("log-level")
	noColor, _ := cmd.Flags().GetBool("no-color")
	verbose, _ := cmd.Flags().GetBool("verbose")
	formatName, _ := cmd.Flags().GetString("output")

	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); !ok || !output.ColorEnabled(f) {
		noColor = true
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:     cmd.ErrOrStderr(),
		NoColor: noColor,
	}).Level(level).With().Timestamp().Str("cmd", cmd.Name()).Logger()

	return &session{
		log:       logger,
		out:       out,
		formatter: output.GetFormatter(format, verbose, noColor),
		noColor:   noColor,
	}, nil
}

func (s *session) print(text string) {
	fmt.Fprint(s.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(s.out)
	}
}
