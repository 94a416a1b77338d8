package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Runtime environment keys that override the file configuration.
const (
	EnvDimension    = "mineseeker_dimension"
	EnvMineCount    = "mineseeker_mine_count"
	EnvResultSecret = "mineseeker_result_secret"
	EnvResultIssuer = "mineseeker_result_issuer"
)

type GameConfig struct {
	Dimension int `json:"dimension"`
	MineCount int `json:"mine_count"`
	TickRate  int `json:"tick_rate"`
	// EmptyTimeoutSeconds is how long a match without presences is kept for resuming.
	EmptyTimeoutSeconds   int    `json:"empty_timeout_seconds"`
	ResultTokenTTLSeconds int    `json:"result_token_ttl_seconds"`
	ResultIssuer          string `json:"result_issuer"`
	ResultSecret          string `json:"-"`
}

// Defaults returns the reference 10x10 board with 10 mines.
func Defaults() GameConfig {
	return GameConfig{
		Dimension:             10,
		MineCount:             10,
		TickRate:              5,
		EmptyTimeoutSeconds:   60,
		ResultTokenTTLSeconds: 3600,
		ResultIssuer:          "mineseeker",
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path. Missing
// fields keep their defaults.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c := Defaults()
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns a copy of the loaded configuration, or the defaults
// if nothing was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Defaults()
	}
	return *cfg
}

// WithEnv applies runtime environment overrides. Unparseable numbers are ignored.
func (c GameConfig) WithEnv(env map[string]string) GameConfig {
	if val, ok := env[EnvDimension]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			c.Dimension = i
		}
	}
	if val, ok := env[EnvMineCount]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			c.MineCount = i
		}
	}
	if val, ok := env[EnvResultSecret]; ok {
		c.ResultSecret = val
	}
	if val, ok := env[EnvResultIssuer]; ok && val != "" {
		c.ResultIssuer = val
	}
	return c
}

// TicksFor converts seconds into match loop ticks.
func (c GameConfig) TicksFor(seconds int) int64 {
	rate := c.TickRate
	if rate < 1 {
		rate = 1
	}
	return int64(seconds * rate)
}
