package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	exerr "github.com/msto63/exprkit/foundation/core/error"
	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/foundation/expr/parser"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "EXPRKIT_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	Store   StoreConfig   `toml:"store" yaml:"store"`
	Cache   CacheConfig   `toml:"cache" yaml:"cache"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	TUI     TUIConfig     `toml:"tui" yaml:"tui"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name" yaml:"name"`
	DataDir   string `toml:"data_dir" yaml:"data_dir"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// ParserConfig holds parser settings
type ParserConfig struct {
	Mode           string `toml:"mode" yaml:"mode"`
	MaxInputLength int    `toml:"max_input_length" yaml:"max_input_length"`
}

// StoreConfig holds the variable and history store settings
type StoreConfig struct {
	Path           string   `toml:"path" yaml:"path"`
	BusyTimeout    Duration `toml:"busy_timeout" yaml:"busy_timeout"`
	DisableHistory bool     `toml:"disable_history" yaml:"disable_history"`
	HistoryLimit   int      `toml:"history_limit" yaml:"history_limit"`
}

// CacheConfig holds the parse cache settings
type CacheConfig struct {
	Disabled bool     `toml:"disabled" yaml:"disabled"`
	MaxItems int      `toml:"max_items" yaml:"max_items"`
	TTL      Duration `toml:"ttl" yaml:"ttl"`
}

// ServerConfig holds gRPC and HTTP listener settings
type ServerConfig struct {
	Host            string   `toml:"host" yaml:"host"`
	GRPCPort        int      `toml:"grpc_port" yaml:"grpc_port"`
	HTTPPort        int      `toml:"http_port" yaml:"http_port"`
	ReadTimeout     Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	Reflection      bool     `toml:"reflection" yaml:"reflection"`
}

// TUIConfig holds terminal UI settings
type TUIConfig struct {
	Prompt      string `toml:"prompt" yaml:"prompt"`
	ShowTree    bool   `toml:"show_tree" yaml:"show_tree"`
	HistoryFile string `toml:"history_file" yaml:"history_file"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file. The format follows the
// file extension; anything but .yaml and .yml is read as TOML.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, exerr.Newf("config file not found: %s", path).
				WithCode(exerr.CodeConfigError).
				WithDetail("path", path)
		}
		return nil, exerr.Wrap(err, "failed to read config").WithCode(exerr.CodeConfigError)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		_, err = toml.Decode(string(data), &cfg)
	}
	if err != nil {
		return nil, exerr.Wrap(err, "failed to parse config").
			WithCode(exerr.CodeConfigError).
			WithDetail("path", path)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Discover returns the first existing config file from EXPRKIT_CONFIG and
// the default locations.
func Discover() (string, bool) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, true
	}

	candidates := []string{
		"./configs/config.toml",
		"./config.toml",
		"./config.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "exprkit", "config.toml"))
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// LoadFromEnv loads the configuration found by Discover
func LoadFromEnv() (*Config, error) {
	path, ok := Discover()
	if !ok {
		return nil, exerr.New("no config file found, set " + EnvConfigPath + " or create configs/config.toml").
			WithCode(exerr.CodeConfigError)
	}
	return Load(path)
}

// LoadOrDefault loads path, or the discovered file when path is empty. With
// no file at all the defaults are returned.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		var ok bool
		if path, ok = Discover(); !ok {
			return Default(), nil
		}
	}
	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.General.Name == "" {
		c.General.Name = "exprkit"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "json"
	}

	if c.Parser.Mode == "" {
		c.Parser.Mode = parser.ModeStrict.String()
	}
	if c.Parser.MaxInputLength == 0 {
		c.Parser.MaxInputLength = parser.DefaultMaxInputLength
	}

	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.General.DataDir, "exprkit.db")
	}
	if c.Store.BusyTimeout.Duration == 0 {
		c.Store.BusyTimeout.Duration = 5 * time.Second
	}
	if c.Store.HistoryLimit == 0 {
		c.Store.HistoryLimit = 1000
	}

	if c.Cache.MaxItems == 0 {
		c.Cache.MaxItems = 1024
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 10 * time.Minute
	}

	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = 9310
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8310
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 15 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 10 * time.Second
	}

	if c.TUI.Prompt == "" {
		c.TUI.Prompt = "expr> "
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Store.Path = os.ExpandEnv(c.Store.Path)
	c.TUI.HistoryFile = os.ExpandEnv(c.TUI.HistoryFile)
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	var problems []string

	if _, err := parser.ParseMode(c.Parser.Mode); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := exlog.ParseLevel(c.General.LogLevel); err != nil {
		problems = append(problems, "unknown log level "+strconv.Quote(c.General.LogLevel))
	}
	if _, err := exlog.ParseFormat(c.General.LogFormat); err != nil {
		problems = append(problems, "unknown log format "+strconv.Quote(c.General.LogFormat))
	}
	for name, port := range map[string]int{"grpc_port": c.Server.GRPCPort, "http_port": c.Server.HTTPPort} {
		if port < 1 || port > 65535 {
			problems = append(problems, fmt.Sprintf("%s %d out of range", name, port))
		}
	}
	if c.Server.GRPCPort == c.Server.HTTPPort {
		problems = append(problems, "grpc_port and http_port must differ")
	}
	if c.Store.HistoryLimit < 0 {
		problems = append(problems, "history_limit must not be negative")
	}

	if len(problems) == 0 {
		return nil
	}
	return exerr.New("invalid configuration: " + strings.Join(problems, "; ")).
		WithCode(exerr.CodeInvalidConfig).
		WithDetail("problems", problems)
}

// ParseMode returns the configured parser mode
func (c *Config) ParseMode() parser.Mode {
	mode, _ := parser.ParseMode(c.Parser.Mode)
	return mode
}

// GRPCAddress returns the gRPC listen address
func (c *Config) GRPCAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.GRPCPort))
}

// HTTPAddress returns the HTTP listen address
func (c *Config) HTTPAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}
