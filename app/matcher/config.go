package matcher

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the acceptance thresholds. The defaults were tuned
// empirically against real cross-platform mirrors; keep them overridable so
// a mismatch report does not require a rebuild.
type Config struct {
	ChannelThreshold float64 `yaml:"channel_threshold"`
	TitleThreshold   float64 `yaml:"title_threshold"`
	ChannelWeight    float64 `yaml:"channel_weight"`
	TitleWeight      float64 `yaml:"title_weight"`
	NearMatchRatio   float64 `yaml:"near_match_ratio"`
}

func DefaultConfig() Config {
	return Config{
		ChannelThreshold: 0.45,
		TitleThreshold:   0.4,
		ChannelWeight:    0.4,
		TitleWeight:      0.6,
		NearMatchRatio:   0.75,
	}
}

// LoadConfig reads threshold overrides from a YAML file; zero-valued fields
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read matcher config: %w", err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return config, fmt.Errorf("failed to parse matcher config: %w", err)
	}

	if override.ChannelThreshold > 0 {
		config.ChannelThreshold = override.ChannelThreshold
	}
	if override.TitleThreshold > 0 {
		config.TitleThreshold = override.TitleThreshold
	}
	if override.ChannelWeight > 0 {
		config.ChannelWeight = override.ChannelWeight
	}
	if override.TitleWeight > 0 {
		config.TitleWeight = override.TitleWeight
	}
	if override.NearMatchRatio > 0 {
		config.NearMatchRatio = override.NearMatchRatio
	}

	return config, nil
}

// Score combines the two signals into one weighted number, used for ranking
// accepted candidates.
func (c Config) Score(channelSim, titleOverlap float64) float64 {
	return c.ChannelWeight*channelSim + c.TitleWeight*titleOverlap
}

// Accept is an OR gate: either signal alone is sufficient.
func (c Config) Accept(channelSim, titleOverlap float64) bool {
	return channelSim >= c.ChannelThreshold || titleOverlap >= c.TitleThreshold
}
