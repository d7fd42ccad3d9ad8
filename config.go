package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
	Depth   int      `mapstructure:"depth"`
	Skip    []string `mapstructure:"skip"`
	Confirm *bool    `mapstructure:"confirm"`
	MinSize string   `mapstructure:"min_size"`
}

// resolveConfigPath picks an explicit path when given, otherwise the first
// existing candidate: project root, then XDG, then home config dir.
func resolveConfigPath(root, explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	for _, candidate := range defaultConfigPaths(root) {
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func defaultConfigPaths(root string) []string {
	var paths []string
	if root != "" {
		paths = append(paths, filepath.Join(root, ".reclaim.json"))
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "reclaim", "config.json"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "reclaim", "config.json"))
	}
	return paths
}

func loadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Depth < 0 {
		return Config{}, fmt.Errorf("config %s: depth must be >= 0", path)
	}
	return cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func mergeSkipDirs(base map[string]struct{}, extra []string) map[string]struct{} {
	if len(extra) == 0 {
		return base
	}
	if base == nil {
		base = map[string]struct{}{}
	}
	for _, item := range extra {
		if item == "" {
			continue
		}
		base[item] = struct{}{}
	}
	return base
}
