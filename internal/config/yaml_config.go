package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Keyword vocabularies are lists, which are easier to manage in YAML than env vars.
type YAMLConfig struct {
	Vocabularies []VocabularyConfig `yaml:"vocabularies"`
	Defaults     DefaultsConfig     `yaml:"defaults"`
}

// VocabularyConfig defines a named keyword vocabulary profile.
type VocabularyConfig struct {
	Name     string   `yaml:"name"`
	Friction []string `yaml:"friction"`
	Security []string `yaml:"security"`
}

// DefaultsConfig defines default settings.
type DefaultsConfig struct {
	Vocabulary string `yaml:"vocabulary"` // Used when VOCABULARY is unset
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return LoadYAMLConfigFile(getEnv("CONFIG_FILE", "config.yaml"))
}

// LoadYAMLConfigFile loads the YAML configuration from an explicit path.
func LoadYAMLConfigFile(path string) (*YAMLConfig, error) {
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

// GetVocabularyByName finds a vocabulary profile by its name.
func (c *YAMLConfig) GetVocabularyByName(name string) *VocabularyConfig {
	if c == nil {
		return nil
	}
	for i := range c.Vocabularies {
		if c.Vocabularies[i].Name == name {
			return &c.Vocabularies[i]
		}
	}
	return nil
}

// DefaultVocabulary returns the profile name set in the file, or fallback.
func (c *YAMLConfig) DefaultVocabulary(fallback string) string {
	if c == nil || c.Defaults.Vocabulary == "" {
		return fallback
	}
	return c.Defaults.Vocabulary
}
