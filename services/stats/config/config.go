package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	// CatalogueStrategyJSON reads the catalogue from a structured JSON listing
	CatalogueStrategyJSON = "json"
	// CatalogueStrategyHTML scrapes the catalogue from the application HTML page
	CatalogueStrategyHTML = "html"

	// BatchModeBulk processes the whole catalogue with one statistics fetch per invocation
	BatchModeBulk = "bulk"
	// BatchModeSlice processes a bounded slice of the catalogue, one statistics fetch per model
	BatchModeSlice = "slice"
)

// SourceConfig defines where and how the statistics are harvested from
type SourceConfig struct {
	UserAgent             string  `toml:"UserAgent"`
	FetchTimeoutInSeconds uint32  `toml:"FetchTimeoutInSeconds"`
	RequestsPerSecond     float64 `toml:"RequestsPerSecond"`
	CatalogueStrategy     string  `toml:"CatalogueStrategy"`
	CatalogueURL          string  `toml:"CatalogueURL"`
	ItemsPath             string  `toml:"ItemsPath"`
	IDPath                string  `toml:"IDPath"`
	NamePath              string  `toml:"NamePath"`
	FamilyPath            string  `toml:"FamilyPath"`
	FamilyValue           string  `toml:"FamilyValue"`
	FamilyMarker          string  `toml:"FamilyMarker"`
	FamilyWindow          int     `toml:"FamilyWindow"`
	StatsURLTemplate      string  `toml:"StatsURLTemplate"`
}

// BatchConfig defines how much of the catalogue is processed in one invocation
type BatchConfig struct {
	Mode string `toml:"Mode"`
	Size int    `toml:"Size"`
}

// Config maps to the config.toml file for the stats service
type Config struct {
	ListenAddress           string       `toml:"ListenAddress"`
	ScrapeIntervalInSeconds uint32       `toml:"ScrapeIntervalInSeconds"`
	RetentionSeconds        int          `toml:"RetentionSeconds"`
	AllowedOrigins          []string     `toml:"AllowedOrigins"`
	Source                  SourceConfig `toml:"Source"`
	Batch                   BatchConfig  `toml:"Batch"`
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &cfg, nil
}
