// Package envconf fills configuration structs from the process environment.
//
// Fields are bound with `env:"NAME"` tags; `envDefault:"..."` supplies a
// fallback and `env:"NAME,required"` makes the variable mandatory. Nested
// structs without a tag are walked recursively. Before parsing, variables
// from an optional .env file are merged in without overriding values that
// are already set.
package envconf

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvFile is read by Load when present.
var DotEnvFile = ".env"

var ErrMissingRequired = errors.New("missing required environment variable")

func Load(dst any) error {
	if dst == nil {
		return errors.New("destination is nil")
	}

	err := godotenv.Load(DotEnvFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	err = env.Parse(dst)
	if err != nil {
		var agg env.AggregateError
		if errors.As(err, &agg) {
			for _, e := range agg.Errors {
				var missing env.EnvVarIsNotSetError
				if errors.As(e, &missing) {
					return fmt.Errorf("%w: %s", ErrMissingRequired, missing.Key)
				}
			}
		}

		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}
