package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

//go:embed schema/catalog.cue
var schemaSource []byte

//go:embed default.yaml
var defaultSource []byte

// Load reads a YAML catalog from disk, checks it against the catalog schema
// and resolves it. Structural problems surface as *ConfigurationError.
func Load(ctx context.Context, path string) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, path, err)
	}
	return fromKoanf(k, path)
}

// Parse resolves a catalog from YAML bytes.
func Parse(ctx context.Context, data []byte) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(bytesProvider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	return fromKoanf(k, "")
}

// Default returns the built-in catalog.
func Default(ctx context.Context) (*Catalog, error) {
	return Parse(ctx, defaultSource)
}

// DefaultSource returns the YAML of the built-in catalog.
func DefaultSource() []byte {
	return append([]byte(nil), defaultSource...)
}

func fromKoanf(k *koanf.Koanf, source string) (*Catalog, error) {
	if err := validateSchema(k.Raw(), source); err != nil {
		return nil, err
	}

	doc := Document{Thresholds: DefaultThresholds()}
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}

	c, err := build(doc, "")
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			cfgErr.Source = source
		}
		return nil, err
	}
	return c, nil
}

// validateSchema unifies the raw document with #Catalog. The schema is
// closed, so unknown keys are rejected along with wrong types.
func validateSchema(raw map[string]any, source string) error {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("catalog.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile catalog schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Catalog"))
	if !def.Exists() {
		return errors.New("catalog schema has no #Catalog definition")
	}

	data := ctx.Encode(raw)
	if err := data.Err(); err != nil {
		return fmt.Errorf("%w: encode: %w", ErrLoadCatalog, err)
	}

	unified := def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		problems := make([]string, 0, 4)
		for _, e := range cueerrors.Errors(err) {
			problems = append(problems, e.Error())
		}
		return &ConfigurationError{Source: source, Problems: problems}
	}
	return nil
}

// bytesProvider feeds an in-memory document to koanf.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) { return b, nil }

func (b bytesProvider) Read() (map[string]any, error) {
	return nil, errors.New("bytes provider does not support Read")
}
