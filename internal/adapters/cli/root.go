// Package cli is the docshelf command line: one batch run, or a single stage
// of it, per invocation.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kirillkom/docshelf/internal/bootstrap"
	"github.com/kirillkom/docshelf/internal/config"
	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
	"github.com/kirillkom/docshelf/internal/observability/logging"
)

// Deps are injected by tests; zero values mean the real process streams and
// filesystem.
type Deps struct {
	Out   io.Writer
	Err   io.Writer
	Fs    afero.Fs
	Store ports.RemoteStore
}

type flags struct {
	configFile string
	envFile    string
	dir        string
	query      string
	logLevel   string
	reportPath string
}

type cli struct {
	deps  Deps
	flags flags
	cfg   *config.Config
}

func NewRootCommand(deps Deps) *cobra.Command {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Err == nil {
		deps.Err = os.Stderr
	}
	c := &cli{deps: deps}

	root := &cobra.Command{
		Use:           "docshelf",
		Short:         "Sort, search, classify and upload a folder of PDF and DOCX documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.SetOut(deps.Out)
	root.SetErr(deps.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configFile, "config", "", "config file (default ./docshelf.yaml when present)")
	pf.StringVar(&c.flags.envFile, "env-file", config.DefaultEnvFile, "dotenv file loaded before reading the environment")
	pf.StringVar(&c.flags.dir, "dir", "", "input directory (overrides input_directory)")
	pf.StringVar(&c.flags.query, "query", "", "search query (overrides search_query)")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		c.runCommand(),
		c.sortCommand(),
		c.searchCommand(),
		c.classifyCommand(),
		c.uploadCommand(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	overrides := map[string]any{}
	if cmd.Flags().Changed("dir") {
		overrides["input_directory"] = c.flags.dir
	}
	if cmd.Flags().Changed("query") {
		overrides["search_query"] = c.flags.query
	}
	if cmd.Flags().Changed("log-level") {
		overrides["log_level"] = c.flags.logLevel
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: c.flags.configFile,
		EnvFile:    c.flags.envFile,
		Overrides:  overrides,
	})
	if err != nil {
		return err
	}
	c.cfg = cfg
	slog.SetDefault(logging.NewJSONLogger(c.deps.Err, "docshelf", cfg.LogLevel))
	return nil
}

func (c *cli) newApp(ctx context.Context, uploads bool) (*bootstrap.App, error) {
	return bootstrap.New(ctx, c.cfg, bootstrap.Options{
		Uploads: uploads,
		Fs:      c.deps.Fs,
		Store:   c.deps.Store,
	})
}

// analyzable loads the corpus and extracts it, leaving out documents that
// fail to decode.
func analyzable(ctx context.Context, app *bootstrap.App) (domain.Corpus, error) {
	corpus, err := app.Loader.LoadCorpus(ctx, app.Config.InputDirectory)
	if err != nil {
		return nil, err
	}
	docs, _, err := app.Extract.ExtractAll(ctx, corpus)
	return docs, err
}
