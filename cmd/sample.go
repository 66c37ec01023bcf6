package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/scoutgrade/internal/sampledata"
	"github.com/okian/scoutgrade/pkg/logger"
)

const (
	dirPermission  = 0o755
	filePermission = 0o644
)

type sampleFlags struct {
	dir     string
	format  string
	seed    uint64
	players int
	season  int
	history int
	teams   int
}

func newSampleCmd(c *cli) *cobra.Command {
	f := &sampleFlags{}
	cmd := &cobra.Command{
		Use:   "sample-data",
		Short: "Write deterministic synthetic records for the configured catalog",
		Example: `  scoutgrade sample-data --dir data --seed 42
  scoutgrade score --records 'data/records.yaml'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSample(cmd, c, f)
		},
	}
	cmd.Flags().StringVar(&f.dir, "dir", "data", "output directory")
	cmd.Flags().StringVarP(&f.format, "format", "f", "yaml", "file format: json or yaml")
	cmd.Flags().Uint64Var(&f.seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&f.players, "players", 40, "players per profile")
	cmd.Flags().IntVar(&f.season, "season", 2025, "current season")
	cmd.Flags().IntVar(&f.history, "history-seasons", 1, "earlier seasons to generate")
	cmd.Flags().IntVar(&f.teams, "reference-teams", 12, "teams in the reference league, 0 to skip")
	return cmd
}

func runSample(cmd *cobra.Command, c *cli, f *sampleFlags) error {
	ctx := cmd.Context()
	if f.format != "json" && f.format != "yaml" {
		return fmt.Errorf("format %q must be json or yaml", f.format)
	}
	cat, err := c.catalog(ctx)
	if err != nil {
		return err
	}
	gen, err := sampledata.New(cat,
		sampledata.WithSeed(f.seed),
		sampledata.WithPlayers(f.players),
		sampledata.WithSeason(f.season),
		sampledata.WithHistorySeasons(f.history),
		sampledata.WithReferenceTeams(f.teams),
		sampledata.WithLogger(c.log),
	)
	if err != nil {
		return err
	}
	ds, err := gen.Generate(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(f.dir, dirPermission); err != nil {
		return fmt.Errorf("create %s: %w", f.dir, err)
	}
	files := map[string]any{"records": ds.Records, "history": ds.History}
	if ds.Reference != nil {
		files["reference"] = ds.Reference
	}
	for name, v := range files {
		path := filepath.Join(f.dir, name+"."+f.format)
		data, err := encode(f.format, v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		if err := os.WriteFile(path, data, filePermission); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		c.log.Info(ctx, "wrote sample file", logger.String("path", path))
	}
	return nil
}

func encode(format string, v any) ([]byte, error) {
	if format == "json" {
		return json.MarshalIndent(v, "", "  ")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
