package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/scoutgrade/internal/adapters/input"
	"github.com/okian/scoutgrade/internal/adapters/worker"
	service "github.com/okian/scoutgrade/internal/app"
	"github.com/okian/scoutgrade/internal/config"
	"github.com/okian/scoutgrade/internal/domain/catalog"
	"github.com/okian/scoutgrade/pkg/logger"
)

// cli carries state shared by every subcommand.
type cli struct {
	configFile string
	envFile    string
	logLevel   string

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "scoutgrade",
		Short: "Score and grade college players against position profiles",
		Long: `scoutgrade turns season statistics into weighted Total Scores, grades,
consistency counts, style-fit flags, top-N lists and progression deltas.

Configuration is layered: defaults, .env, a YAML file (--config or
SCOUT_CONFIG) and SCOUT_* environment variables. Flags win over all of them.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.init,
	}

	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "YAML config file (default $SCOUT_CONFIG)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "dotenv file (default ./.env when present)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newScoreCmd(c), newServeCmd(c), newSampleCmd(c))
	return root
}

func (c *cli) init(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx, config.WithFile(c.configFile), config.WithEnvFile(c.envFile))
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}

	// Logs go to stderr so a report on stdout stays machine readable.
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(os.Stderr)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	c.log = logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	c.cfg = cfg
	return nil
}

// catalog loads the configured catalog, or the embedded default, and applies
// the configured variant.
func (c *cli) catalog(ctx context.Context) (*catalog.Catalog, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if c.cfg.Catalog != "" {
		cat, err = catalog.Load(ctx, c.cfg.Catalog)
	} else {
		cat, err = catalog.Default(ctx)
	}
	if err != nil {
		return nil, err
	}
	if c.cfg.Variant != "" {
		if cat, err = cat.WithVariant(c.cfg.Variant); err != nil {
			return nil, err
		}
	}
	c.log.Info(ctx, "catalog loaded",
		logger.Int("profiles", len(cat.Profiles())),
		logger.String("variant", cat.Variant()))
	return cat, nil
}

func (c *cli) engine(ctx context.Context) (*service.Engine, error) {
	cat, err := c.catalog(ctx)
	if err != nil {
		return nil, err
	}
	pool := worker.New(
		worker.WithName("profiles"),
		worker.WithWorkers(c.cfg.WorkerCount),
		worker.WithLogger(c.log),
	)
	return service.NewEngine(cat,
		service.WithPool(pool),
		service.WithEngineLogger(c.log),
		service.WithSeason(c.cfg.Season),
		service.WithTopN(c.cfg.TopN),
	)
}

func (c *cli) source() input.Files {
	return input.Files{
		Records:       c.cfg.Records,
		History:       c.cfg.History,
		Reference:     c.cfg.Reference,
		ReferenceTeam: c.cfg.ReferenceTeam,
	}
}
