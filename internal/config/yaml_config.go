package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Search tuning is easier to keep next to the deployment than in env vars.
type YAMLConfig struct {
	Search SearchConfig `yaml:"search"`
	Notify NotifyConfig `yaml:"notify"`
}

// SearchConfig overrides the flight search defaults.
type SearchConfig struct {
	Origin          string `yaml:"origin"`
	Currency        string `yaml:"currency"`
	CurrencySymbol  string `yaml:"currency_symbol"`
	HorizonDays     int    `yaml:"horizon_days"`
	NightsInDstFrom int    `yaml:"nights_in_dst_from"`
	NightsInDstTo   int    `yaml:"nights_in_dst_to"`
}

// NotifyConfig overrides notification defaults.
type NotifyConfig struct {
	EmailSubject string `yaml:"email_subject"`
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Apply overlays non-zero YAML values onto c.
func (y *YAMLConfig) Apply(c *Config) {
	if y == nil {
		return
	}
	if y.Search.Origin != "" {
		c.OriginCityCode = strings.ToUpper(y.Search.Origin)
	}
	if y.Search.Currency != "" {
		c.Currency = y.Search.Currency
	}
	if y.Search.CurrencySymbol != "" {
		c.CurrencySymbol = y.Search.CurrencySymbol
	}
	if y.Search.HorizonDays > 0 {
		c.HorizonDays = y.Search.HorizonDays
	}
	if y.Search.NightsInDstFrom > 0 {
		c.NightsInDstFrom = y.Search.NightsInDstFrom
	}
	if y.Search.NightsInDstTo > 0 {
		c.NightsInDstTo = y.Search.NightsInDstTo
	}
	if y.Notify.EmailSubject != "" {
		c.EmailSubject = y.Notify.EmailSubject
	}
}
