package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGameConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_config.json")
	if err := os.WriteFile(path, []byte(`{"dimension": 12, "mine_count": 20}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := LoadGameConfig(path); err != nil {
		t.Fatalf("LoadGameConfig() error: %v", err)
	}
	got := GetGameConfig()
	if got.Dimension != 12 || got.MineCount != 20 {
		t.Fatalf("dimension/mines = %d/%d, want 12/20", got.Dimension, got.MineCount)
	}
	if got.TickRate != 5 || got.ResultIssuer != "mineseeker" {
		t.Fatalf("defaults not kept for missing fields: %+v", got)
	}
}

func TestWithEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want GameConfig
	}{
		{
			name: "no overrides",
			env:  map[string]string{},
			want: Defaults(),
		},
		{
			name: "board and secret",
			env: map[string]string{
				EnvDimension:    "16",
				EnvMineCount:    "40",
				EnvResultSecret: "s3cret",
			},
			want: func() GameConfig {
				c := Defaults()
				c.Dimension, c.MineCount, c.ResultSecret = 16, 40, "s3cret"
				return c
			}(),
		},
		{
			name: "bad numbers ignored",
			env:  map[string]string{EnvDimension: "ten", EnvMineCount: "", EnvResultIssuer: ""},
			want: Defaults(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Defaults().WithEnv(tt.env); got != tt.want {
				t.Fatalf("WithEnv() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTicksFor(t *testing.T) {
	c := Defaults()
	if got := c.TicksFor(60); got != 300 {
		t.Fatalf("TicksFor(60) = %d, want 300", got)
	}
	c.TickRate = 0
	if got := c.TicksFor(60); got != 60 {
		t.Fatalf("TicksFor(60) with zero rate = %d, want 60", got)
	}
}
