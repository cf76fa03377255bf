// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the anatomy-mapper CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/anatomy-mapper/internal/kb"
	"github.com/pdiddy/anatomy-mapper/internal/secrets"
	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the named secret.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the anatomy-mapper CLI.
var rootCmd = &cobra.Command{
	Use:   "anatomy-mapper",
	Short: "Map body-part phrases from injury reports to 3D model meshes",
	Long: `anatomy-mapper resolves free-text anatomical references ("right knee",
"hamstring strain") to the named meshes of a 3D body model, so an injury
visualization renderer can highlight the correct structures.

Matching combines a synonym/relationship knowledge base, an optional AI
completion backend, and a deterministic local scorer, with a learning loop
that improves future matches from confirmed results.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./anatomy-mapper.yaml or ~/.config/anatomy-mapper/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("anatomy-mapper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "anatomy-mapper"))
		}
	}

	viper.SetEnvPrefix("ANATOMY_MAPPER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// appConfig assembles the component configuration from viper and secrets.
func appConfig() types.AppConfig {
	cfg := types.AppConfig{
		AI: types.AIConfig{
			Model:      viper.GetString("ai.model"),
			APIKey:     secretDefault("anthropic-api-key", viper.GetString("ai.api_key")),
			Timeout:    viper.GetDuration("ai.timeout"),
			MaxRetries: viper.GetInt("ai.max_retries"),
			CacheTTL:   viper.GetDuration("ai.cache_ttl"),
		},
		KnowledgeBase: types.KnowledgeBaseConfig{
			Path: viper.GetString("knowledge_base.path"),
		},
		Match: types.MatchConfig{
			MaxResults:   viper.GetInt("match.max_results"),
			MinAIResults: viper.GetInt("match.min_ai_results"),
		},
		Learning: types.LearningConfig{
			DBPath: viper.GetString("learning.db_path"),
		},
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "claude-sonnet-4-5-20250929"
	}
	if cfg.AI.CacheTTL == 0 {
		cfg.AI.CacheTTL = 5 * time.Minute
	}
	return cfg
}

// loadKnowledge opens the configured knowledge document, or the built-in
// default set when none is configured.
func loadKnowledge(cfg types.AppConfig) (*kb.Base, error) {
	if cfg.KnowledgeBase.Path == "" {
		return kb.Default(), nil
	}
	return kb.Load(cfg.KnowledgeBase.Path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
