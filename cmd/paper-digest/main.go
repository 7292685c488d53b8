// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-digest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/logging"
	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the effective configuration: defaults, then the config file and
	// environment, then .secrets/ for credentials still empty.
	cfg types.Config

	logger *log.Logger
)

// envKeys are bound explicitly so they work without a config file entry.
var envKeys = []string{
	"ai.anthropic_api_key",
	"ai.gemini_api_key",
	"notion.api_key",
	"notion.database_id",
	"slack.bot_token",
	"slack.app_token",
	"lock.redis_addr",
	"lock.redis_password",
	"grobid.mode",
	"grobid.service_url",
	"digest.channel",
	"logging.level",
}

var rootCmd = &cobra.Command{
	Use:   "paper-digest",
	Short: "Summarize arXiv papers section by section and publish them to Notion",
	Long: `paper-digest fetches arXiv papers, converts them with GROBID, summarizes
every section with an LLM and publishes the ordered summary as a Notion page.

Jobs run from the command line (summarize) or from Slack mentions (serve). The
digest command posts short overviews of recent papers for configured keywords.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c := types.DefaultConfig()
		if err := viper.Unmarshal(&c); err != nil {
			return fmt.Errorf("%w: %v", types.ErrConfiguration, err)
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		secrets.Apply(&c, s)
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			c.Logging.Level = lvl
		}

		cfg = c
		logger = logging.New(cfg.Logging, os.Stderr)
		log.DefaultLogger = *logger

		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-digest.yaml or ~/.config/paper-digest/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory holding one file per credential")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-digest"))
		}
	}

	viper.SetEnvPrefix("PAPER_DIGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, k := range envKeys {
		viper.BindEnv(k)
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
