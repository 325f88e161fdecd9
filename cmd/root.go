/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/beetseer/internal/analysis"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "beetseer",
	Short: "Genre positioning and media placement analysis for artists",
	Long: `Looks an artist up on Spotify, MusicBrainz and last.fm, resolves their genre and
origin, and asks a language model for a structured genre and media placement analysis.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.beetseer.yaml)")

	var anthropicAPIKey string
	rootCmd.PersistentFlags().StringVar(&anthropicAPIKey, "anthropic_api_key", "", "Anthropic API key")
	viper.BindPFlag("anthropic_api_key", rootCmd.PersistentFlags().Lookup("anthropic_api_key"))

	var anthropicModel string
	rootCmd.PersistentFlags().StringVar(&anthropicModel, "anthropic_model", "", "Anthropic model used for analysis")
	viper.BindPFlag("anthropic_model", rootCmd.PersistentFlags().Lookup("anthropic_model"))

	var lastFmAPIKey string
	rootCmd.PersistentFlags().StringVar(&lastFmAPIKey, "lastfm_api_key", "", "last.fm API key")
	viper.BindPFlag("lastfm_api_key", rootCmd.PersistentFlags().Lookup("lastfm_api_key"))

	var lastFmSecret string
	rootCmd.PersistentFlags().StringVar(&lastFmSecret, "lastfm_secret", "", "last.fm secret")
	viper.BindPFlag("lastfm_secret", rootCmd.PersistentFlags().Lookup("lastfm_secret"))

	var contact string
	rootCmd.PersistentFlags().StringVar(&contact, "musicbrainz_contact", "https://github.com/ademuri/beetseer", "Contact URL or email sent to MusicBrainz in the User-Agent")
	viper.BindPFlag("musicbrainz_contact", rootCmd.PersistentFlags().Lookup("musicbrainz_contact"))

	var listeningStats bool
	rootCmd.PersistentFlags().BoolVar(&listeningStats, "listening_stats", true, "Include last.fm listening statistics in the analysis")
	viper.BindPFlag("listening_stats", rootCmd.PersistentFlags().Lookup("listening_stats"))

	var logLevel string
	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "info", "Log level (debug, info, warn, error)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))

	policy := analysis.DefaultPolicy()
	viper.SetDefault("eligibility.allowed_countries", policy.Allowed)
	viper.SetDefault("eligibility.denied_countries", policy.Denied)
	viper.SetDefault("eligibility.trust_origin_override", policy.TrustOriginOverride)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".beetseer" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".beetseer")
	}

	// ANTHROPIC_API_KEY, LASTFM_API_KEY, ELIGIBILITY_ALLOWED_COUNTRIES, ...
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// requireKeys fails if any of the given config keys is unset.
func requireKeys(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if strings.TrimSpace(viper.GetString(k)) == "" {
			missing = append(missing, fmt.Sprintf("%q", k))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flag(s) %s not set", strings.Join(missing, ", "))
	}
	return nil
}
