package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Server     *ServerConfig     `toml:"server,omitempty"`
	Files      *FilesConfig      `toml:"files,omitempty"`
	Worker     *WorkerConfig     `toml:"worker,omitempty"`
	Classifier *ClassifierConfig `toml:"classifier,omitempty"`
	Watch      *WatchConfig      `toml:"watch,omitempty"`
}

type ServerConfig struct {
	Addr      *string `toml:"addr,omitempty"`
	CacheSize *int    `toml:"cache_size,omitempty"`
}

type FilesConfig struct {
	MaxSizeMB *int    `toml:"max_size_mb,omitempty"`
	Extension *string `toml:"extension,omitempty"`
}

type WorkerConfig struct {
	QueueSize *int `toml:"queue_size,omitempty"`
}

type ClassifierConfig struct {
	RulesFile *string `toml:"rules_file,omitempty"`
}

type WatchConfig struct {
	DebounceMS *int `toml:"debounce_ms,omitempty"`
}

// Helper methods to get values with defaults

func (c *Config) GetAddr() string {
	if c == nil || c.Server == nil || c.Server.Addr == nil {
		return "127.0.0.1:7477"
	}
	return *c.Server.Addr
}

func (c *Config) GetCacheSize() int {
	if c == nil || c.Server == nil || c.Server.CacheSize == nil || *c.Server.CacheSize <= 0 {
		return 128
	}
	return *c.Server.CacheSize
}

func (c *Config) GetMaxFileSizeMB() int {
	if c == nil || c.Files == nil || c.Files.MaxSizeMB == nil || *c.Files.MaxSizeMB <= 0 {
		return 5
	}
	return *c.Files.MaxSizeMB
}

func (c *Config) GetExtension() string {
	if c == nil || c.Files == nil || c.Files.Extension == nil || *c.Files.Extension == "" {
		return ".dctl"
	}
	return *c.Files.Extension
}

func (c *Config) GetQueueSize() int {
	if c == nil || c.Worker == nil || c.Worker.QueueSize == nil || *c.Worker.QueueSize <= 0 {
		return 64
	}
	return *c.Worker.QueueSize
}

// GetRulesFile returns "" when the embedded classifier rules should be used
func (c *Config) GetRulesFile() string {
	if c == nil || c.Classifier == nil || c.Classifier.RulesFile == nil {
		return ""
	}
	return expandHome(*c.Classifier.RulesFile)
}

func (c *Config) GetDebounceMS() int {
	if c == nil || c.Watch == nil || c.Watch.DebounceMS == nil || *c.Watch.DebounceMS < 0 {
		return 200
	}
	return *c.Watch.DebounceMS
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".dctl", "config.toml"), nil
}

// Load reads the config at path, or the user config when path is empty, then
// applies .env and environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		p, err := GetConfigPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides file values with DCTL_ADDR, DCTL_MAX_FILE_MB and DCTL_CACHE_SIZE
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv("DCTL_ADDR")); v != "" {
		c.server().Addr = &v
	}
	if v := strings.TrimSpace(os.Getenv("DCTL_MAX_FILE_MB")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DCTL_MAX_FILE_MB: %w", err)
		}
		if c.Files == nil {
			c.Files = &FilesConfig{}
		}
		c.Files.MaxSizeMB = &n
	}
	if v := strings.TrimSpace(os.Getenv("DCTL_CACHE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DCTL_CACHE_SIZE: %w", err)
		}
		c.server().CacheSize = &n
	}
	return nil
}

func (c *Config) server() *ServerConfig {
	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	return c.Server
}

// Save writes the config as TOML, creating the directory if needed
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Display renders the effective settings with defaults filled in
func (c *Config) Display() string {
	effective := struct {
		Server     ServerConfig     `toml:"server"`
		Files      FilesConfig      `toml:"files"`
		Worker     WorkerConfig     `toml:"worker"`
		Classifier ClassifierConfig `toml:"classifier"`
		Watch      WatchConfig      `toml:"watch"`
	}{
		Server:     ServerConfig{Addr: strPtr(c.GetAddr()), CacheSize: intPtr(c.GetCacheSize())},
		Files:      FilesConfig{MaxSizeMB: intPtr(c.GetMaxFileSizeMB()), Extension: strPtr(c.GetExtension())},
		Worker:     WorkerConfig{QueueSize: intPtr(c.GetQueueSize())},
		Classifier: ClassifierConfig{RulesFile: strPtr(c.GetRulesFile())},
		Watch:      WatchConfig{DebounceMS: intPtr(c.GetDebounceMS())},
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(effective); err != nil {
		return fmt.Sprintf("# failed to render settings: %v\n", err)
	}
	return buf.String()
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
