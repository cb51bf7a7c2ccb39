// Package config parses the JSON configuration handed to the registry at
// construction time. Pool budgets are immutable for a pool lifetime; there
// is no live reconfiguration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/facebookgo/stackerr"

	"github.com/skipor/cachepool"
	"github.com/skipor/cachepool/cache"
	"github.com/skipor/cachepool/internal/util"
	"github.com/skipor/cachepool/log"
)

type Config struct {
	LogDestination string `json:"log-destination,omitempty"` // Stdout, stderr, or filepath.
	LogLevel       string `json:"log-level,omitempty"`
	// Pools is keyed by pool type name: "compute", "response", "config".
	Pools map[string]PoolConfig `json:"pools,omitempty"`
}

type PoolConfig struct {
	MaxEntries int `json:"max-entries,omitempty"`
	// DefaultTTL in time.Duration format: 30s, 5m, 12h. Empty or 0 means
	// entries never expire.
	DefaultTTL string `json:"default-ttl,omitempty"`
	// Size values 10g, 128m, 1024k, 1000000b.
	MaxMemory string `json:"max-memory,omitempty"`
}

// Parsed is registry construction input.
type Parsed struct {
	LogDestination io.Writer
	LogLevel       log.Level
	Pools          map[cachepool.PoolType]cache.Config
}

func Parse(conf Config) (parsed Parsed, err error) {
	parsed.LogDestination, err = logDestination(conf.LogDestination)
	if err != nil {
		err = stackerr.Newf("Log destination open error: %v", err)
		return
	}
	parsed.LogLevel, err = log.LevelFromString(strings.ToUpper(conf.LogLevel))
	if err != nil {
		err = stackerr.Newf("Log level parse error: %v", err)
		return
	}
	parsed.Pools = make(map[cachepool.PoolType]cache.Config, len(conf.Pools))
	for name, pc := range conf.Pools {
		t, ok := cachepool.PoolTypeFromString(name)
		if !ok {
			err = stackerr.Newf("Unknown pool type %q.", name)
			return
		}
		parsed.Pools[t], err = parsePool(pc)
		if err != nil {
			err = stackerr.Newf("Pool %q config parse error: %v", name, err)
			return
		}
	}
	return
}

func Default() *Config {
	return &Config{
		LogDestination: "stderr",
		LogLevel:       "info",
		Pools: map[string]PoolConfig{
			"compute":  {MaxEntries: 500, DefaultTTL: "5m", MaxMemory: "32m"},
			"response": {MaxEntries: 2000, DefaultTTL: "30m", MaxMemory: "32m"},
			"config":   {MaxEntries: 100, DefaultTTL: "12h", MaxMemory: "8m"},
		},
	}
}

// Load reads a JSON config file and merges it over defaults.
func Load(path string) (*Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stackerr.Newf("Config file read error: %v", err)
	}
	var override Config
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, stackerr.Newf("Config parse error: %v", err)
	}
	Merge(conf, &override)
	return conf, nil
}

// Merge overwrites def values with non zero override values. Pool sections
// merge per key, per field.
func Merge(def, override *Config) {
	defPools := def.Pools
	merge(def, override)
	def.Pools = defPools
	if def.Pools == nil && len(override.Pools) > 0 {
		def.Pools = make(map[string]PoolConfig, len(override.Pools))
	}
	for name, p := range override.Pools {
		dp := def.Pools[name]
		merge(&dp, &p)
		def.Pools[name] = dp
	}
}

func merge(def, override interface{}) {
	defVal := reflect.ValueOf(def).Elem()
	overrideVal := reflect.ValueOf(override).Elem()
	for i, end := 0, defVal.NumField(); i < end; i++ {
		field := overrideVal.Field(i)
		if field.Kind() == reflect.Map {
			continue
		}
		if !util.IsZeroVal(field) {
			defVal.Field(i).Set(field)
		}
	}
}

func parsePool(pc PoolConfig) (conf cache.Config, err error) {
	conf.MaxEntries = pc.MaxEntries
	if pc.DefaultTTL != "" {
		conf.DefaultTTL, err = time.ParseDuration(pc.DefaultTTL)
		if err != nil {
			err = fmt.Errorf("default-ttl parse error: %v", err)
			return
		}
	}
	if pc.MaxMemory != "" {
		conf.MaxMemory, err = parseSize(pc.MaxMemory)
		if err != nil {
			err = fmt.Errorf("max-memory parse error: %v", err)
			return
		}
	}
	return
}

func parseSize(s string) (size int64, err error) {
	if len(s) < 2 {
		err = errors.New("Invalid size format.")
		return
	}
	sep := len(s) - 1
	sizeStr := s[:sep]
	exponentStr := s[sep:]
	var exponent uint32
	switch strings.ToLower(exponentStr) {
	case "b":
		exponent = 0
	case "k":
		exponent = 10
	case "m":
		exponent = 20
	case "g":
		exponent = 30
	default:
		err = errors.New("Invalid exponent. Only 'b', 'k', 'm', 'g' allowed.")
		return
	}
	size, err = strconv.ParseInt(sizeStr, 10, 31)
	if err != nil {
		err = fmt.Errorf("Size parse error: %s", err)
		return
	}
	size <<= exponent
	return
}

func logDestination(dest string) (w io.Writer, err error) {
	switch strings.ToLower(dest) {
	case "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		w, err = os.OpenFile(dest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	}
	return
}
