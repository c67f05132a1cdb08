package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// loadConfig is a [kong.ConfigurationLoader] that reads YAML config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(loadConfig, "/path/to/config.yaml")
//
// The document is converted as follows:
//   - Nested mappings are flattened by joining keys with "-", so a "log"
//     mapping holding "level" configures --log-level
//   - Keys may use underscores in place of hyphens (log_level)
//   - A key qualified with a command name (eval-output) applies only to that
//     command and takes precedence over the unqualified key
//   - Numbers are passed to kong as strings, which parses them per flag type
//   - Sequences configure slice flags
//
// Example config file:
//
//	log:
//	  level: debug
//	  pretty: false
//	eval:
//	  output: json
//
// Command-line flags override config file values, which override environment
// variables. When several config files set a flag, the last one wins.
func loadConfig(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	err := yaml.NewDecoder(r).Decode(&doc)
	if errors.Is(err, io.EOF) {
		return config{}, nil
	}

	if err != nil {
		return nil, ErrLoadConfig.Wrap(err)
	}

	conf := make(config, len(doc))
	conf.flatten("", doc)

	return conf, nil
}

// config implements [kong.Resolver] over a flattened YAML document.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for key, val := range m {
		name := strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			name = prefix + "-" + name
		}

		if sub, ok := val.(map[string]any); ok {
			c.flatten(name, sub)

			continue
		}

		c[name] = kongValue(val)
	}
}

// kongValue converts a decoded YAML scalar or sequence into a form kong
// accepts: numbers are formatted as strings, everything else passes through.
func kongValue(val any) any {
	switch v := val.(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = kongValue(e)
		}

		return out
	case nil, bool, string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if parent != nil && parent.Command != nil {
		if v, ok := c[parent.Command.Name+"-"+flag.Name]; ok {
			return v, nil
		}
	}

	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	// Not found: kong falls back to envars and defaults.
	return nil, nil //nolint:nilnil
}
