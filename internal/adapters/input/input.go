// Package input loads player records and reference leagues from JSON or
// YAML files selected by doublestar globs.
package input

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/okian/scoutgrade/internal/domain/model"
)

// recordFile is the wrapped form of a records file. A bare list of records
// is accepted as well.
type recordFile struct {
	Records []model.PlayerRecord `json:"records" yaml:"records"`
}

// Expand returns the files matching pattern, sorted so loading order is
// stable across platforms.
func Expand(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Records loads every record file matching pattern. required makes an
// empty match an error.
func Records(ctx context.Context, pattern string, required bool) ([]model.PlayerRecord, error) {
	if pattern == "" {
		if required {
			return nil, fmt.Errorf("%w: empty pattern", ErrNoMatches)
		}
		return nil, nil
	}
	files, err := Expand(pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 && required {
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, pattern)
	}

	var out []model.PlayerRecord
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := RecordsFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// RecordsFile decodes one records file.
func RecordsFile(path string) ([]model.PlayerRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []model.PlayerRecord
	if isList(data) {
		err = decode(path, data, &list)
	} else {
		var wrapped recordFile
		err = decode(path, data, &wrapped)
		list = wrapped.Records
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Reference loads a reference league. A non-empty team replaces the team
// named in the file; either way the team must be one of the league's.
func Reference(path, team string) (*model.ReferenceLeague, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var league model.ReferenceLeague
	if err := decode(path, data, &league); err != nil {
		return nil, err
	}
	if team != "" {
		league.Team = team
	}
	for _, t := range league.Teams {
		if t.Team == league.Team {
			return &league, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrNoTeam, league.Team, path)
}

func decode(path string, data []byte, v any) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(v)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return nil
}

// isList reports whether a document's top level is a sequence.
func isList(data []byte) bool {
	for _, line := range bytes.Split(data, []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '#' || bytes.Equal(trimmed, []byte("---")) {
			continue
		}
		return trimmed[0] == '[' || trimmed[0] == '-'
	}
	return false
}
