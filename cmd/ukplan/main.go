package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/joho/godotenv"
	"github.com/rgehrsitz/ukplan/internal/config"
	"github.com/rgehrsitz/ukplan/internal/store/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultTaxConfig = "configs/tax-years.yaml"

// options holds the persistent flags shared by every command
type options struct {
	taxConfig string
	dbPath    string
	format    string
	debug     bool
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger builds the debug logger. Logs go to stderr so they never mix
// with formatted output.
func newLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// openProvider returns the sqlite store when a database is configured and
// the YAML file provider otherwise. The returned closer is never nil.
func (o *options) openProvider() (config.Provider, func() error, error) {
	if o.dbPath != "" {
		store, err := sqlite.New(o.dbPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	fp, err := config.NewFileProvider(o.taxConfig)
	if err != nil {
		return nil, nil, err
	}
	return fp, func() error { return nil }, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "ukplan",
		Short:         "UK financial planning calculator CLI",
		Long:          "Tax, property, pension, protection and portfolio calculations for UK households, driven by versioned tax-year configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.taxConfig, "tax-config", getEnv("UKPLAN_TAX_CONFIG", defaultTaxConfig), "Tax-year configuration YAML file")
	flags.StringVar(&opts.dbPath, "db", getEnv("UKPLAN_DB", ""), "SQLite database of tax years (overrides --tax-config)")
	flags.StringVarP(&opts.format, "format", "f", getEnv("UKPLAN_FORMAT", "console"), "Output format: console, json, csv")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		reportCmd(opts),
		validateCmd(),
		netIncomeCmd(opts),
		sdltCmd(opts),
		mortgageCmd(opts),
		allowanceCmd(opts),
		frontierCmd(opts),
		protectionCmd(opts),
		validateConfigCmd(opts),
		configCmd(opts),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ukplan %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
