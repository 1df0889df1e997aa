package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meenmo/bondrisk/cmd/bondrisk/internal/job"
	"github.com/meenmo/bondrisk/config"
	"github.com/meenmo/bondrisk/logger"
	"github.com/meenmo/bondrisk/marketdata"
)

// errJobsFailed is returned after output was written when some input failed.
var errJobsFailed = errors.New("one or more jobs failed")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		if errors.Is(err, errJobsFailed) {
			return 1
		}
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(stderr, ue.Error())
			return 2
		}
		return writeError(stdout, err.Error())
	}
	return 0
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var (
		cfgFile  string
		logLevel string
		cfg      config.Config
	)

	root := &cobra.Command{
		Use:   "bondrisk",
		Short: "Bond pricing and bump-and-reprice delta from a par market curve",
		Long: `bondrisk bootstraps a zero curve from par-style market rates, prices
fixed-coupon bonds against it and reports single-tenor deltas.

Input is JSON or YAML (one job or a list) on stdin or --input; output is
one JSON line per invocation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if logLevel != "" {
				loaded.Logging.Level = logLevel
			}
			if err := logger.GetLogger().Configure(loaded.Logging.Level, loaded.Logging.Format, loaded.Logging.Output, loaded.Logging.MaxAgeDays); err != nil {
				return fmt.Errorf("failed to configure logger: %w", err)
			}
			config.SetConfig(*loaded)
			cfg = *loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./bondrisk.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cfgRef := func() config.Config { return cfg }
	root.AddCommand(
		newJobCmd(job.KindPrice, "Price bonds against their market curve (with yield and modified duration)", cfgRef, stdin, stdout),
		newJobCmd(job.KindDelta, "Symmetric 1bp bump-and-reprice delta for one curve tenor", cfgRef, stdin, stdout),
		newJobCmd(job.KindLadder, "Delta for every curve tenor", cfgRef, stdin, stdout),
		newJobCmd(job.KindCurve, "Dump the bootstrapped fine-grid curve", cfgRef, stdin, stdout),
	)
	return root
}

func newJobCmd(kind job.Kind, short string, cfg func() config.Config, stdin io.Reader, stdout io.Writer) *cobra.Command {
	var (
		inputPath string
		precision int32
		workers   int
	)

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(inputPath)
			if path == "" {
				if f, ok := stdin.(*os.File); ok {
					if stat, err := f.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
						return usageError{msg: fmt.Sprintf("Usage: bondrisk %s --input <path> (or pipe JSON/YAML on stdin)", kind)}
					}
				}
			}

			raw, err := readInput(stdin, path)
			if err != nil {
				return fmt.Errorf("read input: %v", err)
			}
			inputs, isArray, err := job.Parse(raw)
			if err != nil {
				return fmt.Errorf("parse input: %v", err)
			}

			c := cfg()
			feed, closeFeed, err := openFeed(c)
			if err != nil {
				return err
			}
			defer closeFeed()

			runner := job.NewRunner(c, feed)
			runner.Precision = precision
			runner.Workers = workers

			outputs, hadError, err := runner.Run(cmd.Context(), kind, inputs)
			if err != nil {
				return err
			}

			var b []byte
			if isArray {
				b, _ = json.Marshal(outputs)
			} else {
				b, _ = json.Marshal(outputs[0])
			}
			fmt.Fprintln(stdout, string(b))

			if hadError {
				return errJobsFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "JSON/YAML input path (reads stdin if omitted)")
	cmd.Flags().Int32Var(&precision, "precision", -1, "round reported numbers to this many decimals (-1 keeps full precision)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent jobs (default risk.workers from config)")
	return cmd
}

// openFeed connects the Postgres quote feed when database.dsn is configured.
func openFeed(c config.Config) (marketdata.QuoteFeed, func(), error) {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return nil, func() {}, nil
	}
	feed, err := marketdata.NewPostgresFeed(c.Database.DSN, c.Database.Table)
	if err != nil {
		return nil, nil, err
	}
	return feed, func() { _ = feed.Close() }, nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

func writeError(stdout io.Writer, msg string) int {
	b, _ := json.Marshal(job.Output{Error: msg})
	fmt.Fprintln(stdout, string(b))
	return 1
}
