package sampledata

import "github.com/okian/scoutgrade/pkg/logger"

// Option configures a Generator.
type Option func(*Generator)

// WithSeed fixes the random source. Equal seeds give equal datasets.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithPlayers sets how many players are generated per profile.
func WithPlayers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.players = n
		}
	}
}

// WithSeason sets the current season; history covers the seasons before it.
func WithSeason(season int) Option {
	return func(g *Generator) {
		if season > 0 {
			g.season = season
		}
	}
}

// WithHistorySeasons sets how many earlier seasons are generated.
func WithHistorySeasons(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.historySeasons = n
		}
	}
}

// WithConferences overrides the conferences players are spread across.
func WithConferences(conferences ...string) Option {
	return func(g *Generator) {
		if len(conferences) > 0 {
			g.conferences = conferences
		}
	}
}

// WithReferenceTeams sets the size of the generated reference league.
// Zero disables it.
func WithReferenceTeams(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.referenceTeams = n
		}
	}
}

// WithLogger sets the generator's logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l.Named("sampledata")
		}
	}
}
