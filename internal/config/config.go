// Package config loads the HCL configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/store"
)

// DefaultFile is the configuration file read when none is given
const DefaultFile = "mahjong.hcl"

// Config represents the complete configuration
type Config struct {
	LogLevel string         `hcl:"log_level,optional"`
	Rule     *RuleConfig    `hcl:"rule,block"`
	Engine   *EngineConfig  `hcl:"engine,block"`
	Storage  *StorageConfig `hcl:"storage,block"`
}

// RuleConfig overrides the default rule. Unset attributes keep the default.
type RuleConfig struct {
	Red                      *hand.RedFives `hcl:"red,block"`
	HonbaBonus               *int           `hcl:"honba_bonus,optional"`
	RoundedMangan            *bool          `hcl:"rounded_mangan,optional"`
	DoubleWindFu             *int           `hcl:"double_wind_fu,optional"`
	AccumulatedYakuman       *bool          `hcl:"accumulated_yakuman,optional"`
	MultipleYakuman          *bool          `hcl:"multiple_yakuman,optional"`
	Kokushi13DoubleYakuman   *bool          `hcl:"kokushi_13_double_yakuman,optional"`
	SuankoTankiDoubleYakuman *bool          `hcl:"suanko_tanki_double_yakuman,optional"`
	DaisushiDoubleYakuman    *bool          `hcl:"daisushi_double_yakuman,optional"`
	PureChurenDoubleYakuman  *bool          `hcl:"pure_churen_double_yakuman,optional"`
	FinalRound               *int           `hcl:"final_round,optional"`
}

// EngineConfig tunes the round engine
type EngineConfig struct {
	ErrorTTL  string `hcl:"error_ttl,optional"`
	CacheSize int64  `hcl:"cache_size,optional"`
}

// StorageConfig selects the snapshot backend
type StorageConfig struct {
	Backend string `hcl:"backend,label"`

	Path string `hcl:"path,optional"`

	Addr     string `hcl:"addr,optional"`
	Password string `hcl:"password,optional"`
	DB       int    `hcl:"db,optional"`
	Key      string `hcl:"key,optional"`
	TTL      string `hcl:"ttl,optional"`

	URI        string `hcl:"uri,optional"`
	Database   string `hcl:"database,optional"`
	Collection string `hcl:"collection,optional"`
	ID         string `hcl:"id,optional"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads the configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Rule == nil {
		c.Rule = &RuleConfig{}
	}
	if c.Engine == nil {
		c.Engine = &EngineConfig{}
	}
	if c.Engine.ErrorTTL == "" {
		c.Engine.ErrorTTL = "3s"
	}
	if c.Engine.CacheSize == 0 {
		c.Engine.CacheSize = 100_000
	}
	if c.Storage == nil {
		c.Storage = &StorageConfig{Backend: store.BackendFile}
	}
	if c.Storage.Backend == store.BackendFile && c.Storage.Path == "" {
		c.Storage.Path = "mahjong-snapshot.json"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	r := c.GameRule()
	for _, n := range []int{r.Red.Man, r.Red.Pin, r.Red.Sou} {
		if n < 0 || n > 4 {
			return fmt.Errorf("red fives must be between 0 and 4, got %d", n)
		}
	}
	if r.HonbaBonus < 0 {
		return fmt.Errorf("honba bonus must not be negative")
	}
	if r.DoubleWindFu != 2 && r.DoubleWindFu != 4 {
		return fmt.Errorf("double wind fu must be 2 or 4, got %d", r.DoubleWindFu)
	}
	if r.FinalRound < 0 {
		return fmt.Errorf("final round must not be negative")
	}

	ttl, err := time.ParseDuration(c.Engine.ErrorTTL)
	if err != nil {
		return fmt.Errorf("invalid error_ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("error_ttl must be positive")
	}
	if c.Engine.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}

	s := c.Storage
	switch s.Backend {
	case store.BackendMemory:
	case store.BackendFile:
		if s.Path == "" {
			return fmt.Errorf("storage file: path is required")
		}
	case store.BackendRedis:
		if s.Addr == "" {
			return fmt.Errorf("storage redis: addr is required")
		}
		if s.TTL != "" {
			if _, err := time.ParseDuration(s.TTL); err != nil {
				return fmt.Errorf("storage redis: invalid ttl: %w", err)
			}
		}
	case store.BackendMongo:
		if s.URI == "" {
			return fmt.Errorf("storage mongo: uri is required")
		}
	default:
		return fmt.Errorf("invalid storage backend %s", s.Backend)
	}
	return nil
}

// Level returns the parsed log level, falling back to info
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// GameRule returns the default rule with the configured overrides
func (c *Config) GameRule() hand.Rule {
	r := hand.DefaultRule()
	rc := c.Rule
	if rc == nil {
		return r
	}
	if rc.Red != nil {
		r.Red = *rc.Red
	}
	setInt(&r.HonbaBonus, rc.HonbaBonus)
	setBool(&r.RoundedMangan, rc.RoundedMangan)
	setInt(&r.DoubleWindFu, rc.DoubleWindFu)
	setBool(&r.AccumulatedYakuman, rc.AccumulatedYakuman)
	setBool(&r.MultipleYakuman, rc.MultipleYakuman)
	setBool(&r.Kokushi13DoubleYakuman, rc.Kokushi13DoubleYakuman)
	setBool(&r.SuankoTankiDoubleYakuman, rc.SuankoTankiDoubleYakuman)
	setBool(&r.DaisushiDoubleYakuman, rc.DaisushiDoubleYakuman)
	setBool(&r.PureChurenDoubleYakuman, rc.PureChurenDoubleYakuman)
	setInt(&r.FinalRound, rc.FinalRound)
	return r
}

// ErrorTTL returns how long engine error messages stay visible
func (c *Config) ErrorTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Engine.ErrorTTL)
	if err != nil {
		return 3 * time.Second
	}
	return ttl
}

// StoreConfig converts the storage block for store.Open
func (c *Config) StoreConfig() store.Config {
	s := c.Storage
	ttl, _ := time.ParseDuration(s.TTL)
	return store.Config{
		Backend:         s.Backend,
		Path:            s.Path,
		RedisAddr:       s.Addr,
		RedisPassword:   s.Password,
		RedisDB:         s.DB,
		RedisKey:        s.Key,
		RedisTTL:        ttl,
		MongoURI:        s.URI,
		MongoDatabase:   s.Database,
		MongoCollection: s.Collection,
		MongoID:         s.ID,
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
