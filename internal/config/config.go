package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration. The YAML file carries the structural
// settings; secrets come from the environment (optionally via a .env file)
// and override whatever the file says.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	Stats struct {
		QuantitativePath string `yaml:"quantitative_path"`
		QualitativePath  string `yaml:"qualitative_path"`
	} `yaml:"stats"`

	Search struct {
		Endpoint        string `yaml:"endpoint"`
		IndexName       string `yaml:"index_name"`
		APIVersion      string `yaml:"api_version"`
		EmbedEndpoint   string `yaml:"embed_endpoint"`
		EmbedDeployment string `yaml:"embed_deployment"`
		Key             string `yaml:"-"`
		EmbedKey        string `yaml:"-"`
	} `yaml:"search"`

	History struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"history"`
}

// Load reads the optional .env file, then the YAML config, then applies
// environment overrides. A missing YAML path just yields defaults.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	cfg.ListenAddr = ":8080"
	cfg.Stats.QuantitativePath = "data/sales_stats.json"
	cfg.Stats.QualitativePath = "data/qualitative_stats.json"
	cfg.History.DBPath = "data/history.db"

	if path != "" {
		blob, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(blob, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setIfEnv(&cfg.ListenAddr, "LISTEN_ADDR")
	setIfEnv(&cfg.Stats.QuantitativePath, "SALES_STATS_PATH")
	setIfEnv(&cfg.Stats.QualitativePath, "QUALITATIVE_STATS_PATH")
	setIfEnv(&cfg.Search.Endpoint, "SEARCH_ENDPOINT")
	setIfEnv(&cfg.Search.IndexName, "INDEX_NAME")
	setIfEnv(&cfg.Search.EmbedEndpoint, "OPEN_AI_ENDPOINT")
	setIfEnv(&cfg.Search.EmbedDeployment, "EMBEDDING_MODEL")
	setIfEnv(&cfg.Search.Key, "SEARCH_KEY")
	setIfEnv(&cfg.Search.EmbedKey, "OPEN_AI_KEY")
	setIfEnv(&cfg.History.DBPath, "HISTORY_DB_PATH")
}

func setIfEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
