// Package cmd implements the linkrot command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lukemcguire/linkrot/config"
	"github.com/lukemcguire/linkrot/crawler"
	"github.com/lukemcguire/linkrot/markup"
)

// ErrBrokenFound is returned when the crawl completed and found at least one
// broken resource.
var ErrBrokenFound = errors.New("broken resources found")

// Exit codes.
const (
	ExitOK     = 0
	ExitBroken = 1
	ExitFatal  = 2
)

// flagKeys maps each flag to the configuration key it overrides.
var flagKeys = map[string]string{
	"depth":          "max_depth",
	"concurrency":    "concurrency",
	"timeout":        "request_timeout",
	"user-agent":     "user_agent",
	"username":       "username",
	"password":       "password",
	"max-body-bytes": "max_body_bytes",
	"check-cache-mb": "check_cache_mb",
	"crawl-timeout":  "crawl_timeout",
	"parser":         "parser",
	"format":         "format",
	"output":         "output",
	"no-tui":         "no_tui",
	"metrics-addr":   "metrics_addr",
	"log-level":      "log_level",
	"log-dev":        "log_development",
}

// NewRootCmd builds the linkrot command with its own Viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "linkrot [flags] <url>",
		Short: "Crawl a website and report broken links, images, stylesheets and scripts",
		Long: `linkrot crawls a website breadth-first from a start URL, staying on the
start URL's host, and checks every link, image, stylesheet and script it
finds. Broken resources are reported grouped by kind.

Exit status is 0 when nothing is broken, 1 when broken resources were found
and 2 on a configuration or startup error.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v.Set("url", args[0])
			}
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML, TOML or JSON)")
	addCrawlFlags(flags)
	for name, key := range flagKeys {
		// Lookup never fails here: every name in flagKeys is registered above.
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	return cmd
}

func addCrawlFlags(flags *pflag.FlagSet) {
	d := crawler.DefaultConfig("")
	flags.Int("depth", d.MaxDepth, "maximum link depth from the start URL (negative for unlimited)")
	flags.Int("concurrency", d.Concurrency, "maximum concurrent HTTP requests")
	flags.Duration("timeout", d.RequestTimeout, "timeout for each HTTP request")
	flags.String("user-agent", d.UserAgent, "User-Agent header sent with every request")
	flags.String("username", "", "basic auth username")
	flags.String("password", "", "basic auth password")
	flags.Int64("max-body-bytes", d.MaxBodyBytes, "maximum bytes read from a page body")
	flags.Int("check-cache-mb", d.CheckCacheMB, "check cache size in MB (0 disables)")
	flags.Duration("crawl-timeout", 0, "stop the crawl after this long (0 for no limit)")
	flags.String("parser", markup.ParserTokenizer, "HTML parser: tokenizer or document")
	flags.String("format", config.FormatText, "output format: text, markdown, json or csv")
	flags.StringP("output", "o", "", "write the report to this file instead of stdout")
	flags.Bool("no-tui", false, "disable the interactive progress view")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Bool("log-dev", false, "human-friendly development logging")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	return exitCode(err, os.Stderr)
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrBrokenFound):
		return ExitBroken
	default:
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitFatal
	}
}
