package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/scoutgrade/internal/adapters/output"
	"github.com/okian/scoutgrade/pkg/logger"
)

type scoreFlags struct {
	records string
	format  string
	output  string
	variant string
	season  int
	topN    int
}

func newScoreCmd(c *cli) *cobra.Command {
	f := &scoreFlags{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score the configured records once and write the report",
		Example: `  scoutgrade score --records 'data/2025/**/*.yaml' --format console
  scoutgrade score -c scoutgrade.yaml --variant intent_focused -f json -o report.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.apply(cmd, c)
			return runScore(cmd, c)
		},
	}
	cmd.Flags().StringVar(&f.records, "records", "", "glob of record files, e.g. 'data/**/*.json'")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "report format: json, yaml or console")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "report destination, - for stdout")
	cmd.Flags().StringVar(&f.variant, "variant", "", "catalog weighting variant")
	cmd.Flags().IntVar(&f.season, "season", 0, "season to score (default latest found)")
	cmd.Flags().IntVar(&f.topN, "top-n", 0, "override the catalog top_n cutoff")
	return cmd
}

// apply copies explicitly set flags over the loaded config.
func (f *scoreFlags) apply(cmd *cobra.Command, c *cli) {
	flags := cmd.Flags()
	if flags.Changed("records") {
		c.cfg.Records = f.records
	}
	if flags.Changed("format") {
		c.cfg.Format = f.format
	}
	if flags.Changed("output") {
		c.cfg.Output = f.output
	}
	if flags.Changed("variant") {
		c.cfg.Variant = f.variant
	}
	if flags.Changed("season") {
		c.cfg.Season = f.season
	}
	if flags.Changed("top-n") {
		c.cfg.TopN = f.topN
	}
}

func runScore(cmd *cobra.Command, c *cli) error {
	ctx := cmd.Context()

	formatter, err := output.New(c.cfg.Format)
	if err != nil {
		return err
	}
	engine, err := c.engine(ctx)
	if err != nil {
		return err
	}
	snap, err := c.source().Snapshot(ctx)
	if err != nil {
		return err
	}
	report, err := engine.Report(ctx, snap)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if c.cfg.Output != "-" && c.cfg.Output != "" {
		file, err := output.Open(c.cfg.Output)
		if err != nil {
			return err
		}
		defer func() {
			if err := file.Close(); err != nil {
				c.log.Error(ctx, "failed to close report", logger.Error(err))
			}
		}()
		w = file
	}
	if err := formatter.Format(w, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	c.log.Info(ctx, "report written",
		logger.Int("season", report.Season),
		logger.Int("bundles", len(report.Bundles)),
		logger.Int("warnings", len(report.Warnings)),
		logger.String("output", c.cfg.Output))
	return nil
}
