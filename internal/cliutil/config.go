package cliutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LOGRELAY_PORT.
const EnvPrefix = "LOGRELAY"

// NewFlagSet returns a flag set that reports errors to the caller instead of
// printing or exiting. It always carries --config.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.String("config", "", "optional YAML config file")
	return fs
}

// LoadViper parses args into fs and layers flags, environment and the optional
// config file (named by --config) into a viper instance. Flag defaults are the
// lowest layer.
func LoadViper(fs *pflag.FlagSet, args []string) (*viper.Viper, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				return nil, fmt.Errorf("config file %s not found", path)
			}
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

// Usage renders the flag help for fs.
func Usage(fs *pflag.FlagSet, synopsis string) string {
	return fmt.Sprintf("Usage: %s\n\nFlags:\n%s", synopsis, fs.FlagUsages())
}
