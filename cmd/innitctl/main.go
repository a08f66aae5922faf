package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"innit/internal/config"
	"innit/internal/logging"
	innitapi "innit/pkg/innit"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	root := newRootCommand(stdout)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// offlineAnnotation marks commands that never read INNIT_* settings, so a bad
// environment does not stop them.
const offlineAnnotation = "innit.offline"

// globalFlags are shared by every subcommand. Their defaults come from the
// INNIT_* environment.
type globalFlags struct {
	storeKind string
	dbPath    string
	seed      int64
	logLevel  string
	templates string
	exports   string
	jsonOut   bool

	logger *zap.Logger
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Default()
	}
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "innitctl",
		Short:         "Generate, decode, mutate and breed innit genomes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgErr != nil && cmd.Annotations[offlineAnnotation] == "" {
				return cfgErr
			}
			logger, err := logging.New(flags.logLevel)
			if err != nil {
				return err
			}
			flags.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if flags.logger != nil {
				_ = flags.logger.Sync()
			}
		},
	}
	root.SetOut(stdout)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.storeKind, "store", cfg.StoreKind, "store backend: memory|sqlite")
	pf.StringVar(&flags.dbPath, "db-path", cfg.DBPath, "sqlite database path")
	pf.Int64Var(&flags.seed, "seed", cfg.Seed, "random seed")
	pf.StringVar(&flags.logLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	pf.StringVar(&flags.templates, "templates", cfg.TemplatesPath, "object template YAML file")
	pf.StringVar(&flags.exports, "exports-dir", cfg.ExportsDir, "export output directory")
	pf.BoolVar(&flags.jsonOut, "json", false, "emit JSON instead of key=value lines")

	root.AddCommand(
		newGenerateCommand(flags, cfg),
		newEncodeCommand(flags),
		newDecodeCommand(flags),
		newMutateCommand(flags),
		newReproduceCommand(flags),
		newSpawnCommand(flags),
		newLineageCommand(flags),
		newListCommand(flags),
		newCatalogCommand(flags),
		newCensusCommand(flags),
		newExportCommand(flags),
	)
	return root
}

func (f *globalFlags) client() (*innitapi.Client, error) {
	return innitapi.New(innitapi.Options{
		StoreKind:     f.storeKind,
		DBPath:        f.dbPath,
		ExportsDir:    f.exports,
		TemplatesPath: f.templates,
		Seed:          f.seed,
		Logger:        f.logger,
	})
}

// withClient opens a client for the duration of fn.
func (f *globalFlags) withClient(fn func(*innitapi.Client) error) error {
	client, err := f.client()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	return fn(client)
}
