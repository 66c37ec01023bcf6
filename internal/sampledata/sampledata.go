// Package sampledata generates deterministic synthetic player records for a
// catalog, for demos and load testing.
package sampledata

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/okian/scoutgrade/internal/domain/catalog"
	"github.com/okian/scoutgrade/internal/domain/model"
	"github.com/okian/scoutgrade/pkg/logger"
)

// Defaults.
const (
	defaultPlayers        = 40
	defaultSeason         = 2025
	defaultHistorySeasons = 1
	defaultReferenceTeams = 12
	teamsPerConference    = 6
	minMinutes            = 200.0
	minutesRange          = 2200.0
	// Minutes a team plays over a season.
	teamMinutes = 2700.0
	// Share of a player's metrics left unmeasured.
	missingRate = 0.05
	// Season-over-season drift of a returning player's level.
	driftRange = 0.3
)

var defaultConferences = []string{"ACC", "BIG10", "SEC"}

// Performance tiers as [min, min+range) on a 0.1 to 10 scale. Average
// players are listed twice so they stay the most common.
var tiers = [][2]float64{
	{3.0, 4.0}, // average
	{3.0, 4.0}, // average
	{7.0, 2.0}, // high
	{0.1, 2.9}, // low
	{9.0, 1.0}, // elite
	{0.1, 0.9}, // very low
	{6.0, 2.0}, // mid-high
	{2.0, 2.0}, // mid-low
}

// Dataset is a generated snapshot.
type Dataset struct {
	Records   []model.PlayerRecord   `json:"records" yaml:"records"`
	History   []model.PlayerRecord   `json:"history" yaml:"history"`
	Reference *model.ReferenceLeague `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// Snapshot returns the dataset as engine input.
func (d Dataset) Snapshot() model.Snapshot {
	return model.Snapshot{Records: d.Records, History: d.History, Reference: d.Reference}
}

// Generator produces datasets for one catalog.
type Generator struct {
	cat            *catalog.Catalog
	seed           uint64
	players        int
	season         int
	historySeasons int
	conferences    []string
	referenceTeams int
	logger         logger.Logger
}

// New creates a generator for cat. Conferences default to the catalog's
// eligible list.
func New(cat *catalog.Catalog, opts ...Option) (*Generator, error) {
	if cat == nil {
		return nil, ErrNoCatalog
	}
	g := &Generator{
		cat:            cat,
		seed:           1,
		players:        defaultPlayers,
		season:         defaultSeason,
		historySeasons: defaultHistorySeasons,
		conferences:    cat.Document().Cohorts.Eligible,
		referenceTeams: defaultReferenceTeams,
		logger:         logger.Nop(),
	}
	if len(g.conferences) == 0 {
		g.conferences = defaultConferences
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate builds the dataset. Output depends only on the catalog and the
// generator's options.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data, not security sensitive

	var ds Dataset
	for _, p := range g.cat.Profiles() {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		leaves := g.cat.LeafMetrics(p.ID)
		for i := range g.players {
			id := fmt.Sprintf("%s-%03d", p.ID, i+1)
			conf := g.conferences[i%len(g.conferences)]
			team := fmt.Sprintf("%s %d", conf, rng.IntN(teamsPerConference)+1)
			level := tierValue(rng)
			seasons := rng.IntN(g.historySeasons+1) + 1

			for back := seasons - 1; back >= 0; back-- {
				rec := model.PlayerRecord{
					PlayerID:      id,
					Name:          fmt.Sprintf("Player %s %d", p.ID, i+1),
					Team:          team,
					Conference:    conf,
					Profile:       p.ID,
					Season:        g.season - back,
					Minutes:       round(minMinutes+rng.Float64()*minutesRange, 0),
					TeamMinutes:   teamMinutes,
					SeasonsPlayed: seasons - back,
					Metrics:       g.metrics(rng, leaves, level),
				}
				if back == 0 {
					ds.Records = append(ds.Records, rec)
				} else {
					ds.History = append(ds.History, rec)
				}
				level = clamp(level*(1+(rng.Float64()*2-1)*driftRange), 0.1, 10)
			}
		}
	}

	if g.referenceTeams > 0 {
		ds.Reference = g.reference(rng)
	}

	g.logger.Info(ctx, "generated sample data",
		logger.Int("records", len(ds.Records)),
		logger.Int("history", len(ds.History)),
		logger.Int("profiles", len(g.cat.Profiles())))
	return ds, nil
}

func (g *Generator) metrics(rng *rand.Rand, leaves []string, level float64) map[string]float64 {
	out := make(map[string]float64, len(leaves))
	for _, id := range leaves {
		if rng.Float64() < missingRate {
			continue
		}
		v := level * (0.75 + rng.Float64()*0.5)
		if m, ok := g.cat.Metric(id); ok && m.LowerIsBetter {
			v = 10.1 - v
		}
		out[id] = round(clamp(v, 0.1, 10), 2)
	}
	return out
}

// reference builds a league ranked on every statistic any profile maps a
// style-fit metric to.
func (g *Generator) reference(rng *rand.Rand) *model.ReferenceLeague {
	statSet := map[string]struct{}{}
	for _, p := range g.cat.Profiles() {
		for _, sf := range p.StyleFit {
			statSet[sf.Reference] = struct{}{}
		}
	}
	stats := make([]string, 0, len(statSet))
	for s := range statSet {
		stats = append(stats, s)
	}
	sort.Strings(stats)

	league := &model.ReferenceLeague{Team: "Reference 1"}
	for t := range g.referenceTeams {
		ts := model.TeamStats{Team: fmt.Sprintf("Reference %d", t+1), Stats: make(map[string]float64, len(stats))}
		for _, s := range stats {
			ts.Stats[s] = round(tierValue(rng)*10, 1)
		}
		league.Teams = append(league.Teams, ts)
	}
	return league
}

func tierValue(rng *rand.Rand) float64 {
	t := tiers[rng.IntN(len(tiers))]
	return t[0] + rng.Float64()*t[1]
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
