/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/valpere/transhub/internal/config"
)

var version = "0.1.0"

var (
	cfgFile string
	v       *viper.Viper
	initErr error
)

var rootCmd = &cobra.Command{
	Use:   "transhub",
	Short: "Community Translation Hub",
	Long: `Translate community notices between languages with open translation models,
or broadcast one message into many languages at once.

Two variants are available:
  lite  per-pair opus-mt models, 11 common languages
  full  one multilingual NLLB model, broadcast and message templates

Settings come from flags, TRANSHUB_* environment variables, a .env file
and ~/.transhub.yaml (or ./.transhub.yaml).

Use "transhub serve" to start the web interface.`,
	Version:      version,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.transhub.yaml)")
	pf.String("variant", "", "Gateway variant: lite or full (default full)")
	pf.String("backend", "", "Translation backend: hub, google, ollama or openai (default hub)")
	pf.String("hf-token", "", "Hugging Face access token")
	pf.String("hub-url", "", "Model hub base URL")
	pf.String("inference-url", "", "Inference runtime base URL")
	pf.String("model", "", "Multilingual model for the full variant")
	pf.String("google-credentials", "", "Path to Google Cloud credentials")
	pf.String("ollama-url", "", "Ollama base URL")
	pf.String("ollama-model", "", "Ollama model name")
	pf.String("openai-key", "", "API key for the OpenAI-compatible backend")
	pf.String("openai-base-url", "", "Base URL for the OpenAI-compatible backend")
	pf.String("openai-model", "", "Chat model for the OpenAI-compatible backend")
	pf.String("memory", "", "Translation memory database (disabled when empty)")
	pf.Bool("validate", false, "Warn when the output looks like the wrong language")
	pf.Int("max-chunk-chars", 0, "Longest text sent to the model in one call")
	pf.Duration("timeout", 0, "Limit for a single translation (default 2m)")
}

// flagKeys maps flags to config keys.
var flagKeys = map[string]string{
	"variant":            "variant",
	"backend":            "backend",
	"hf-token":           "hf_token",
	"hub-url":            "hub_url",
	"inference-url":      "inference_url",
	"model":              "multilingual_model",
	"google-credentials": "google.credentials",
	"ollama-url":         "ollama.url",
	"ollama-model":       "ollama.model",
	"openai-key":         "openai.key",
	"openai-base-url":    "openai.base_url",
	"openai-model":       "openai.model",
	"memory":             "memory",
	"validate":           "validate",
	"max-chunk-chars":    "max_chunk_chars",
	"timeout":            "timeout",
	"listen":             "listen",
}

func initConfig() {
	v, initErr = config.New(cfgFile)
	if initErr != nil {
		return
	}
	bind := func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && initErr == nil {
			initErr = v.BindPFlag(key, f)
		}
	}
	rootCmd.PersistentFlags().VisitAll(bind)
	serveCmd.Flags().VisitAll(bind)
}

// loadConfig returns the merged settings. Commands call it from RunE so a
// bad config file is reported like any other error.
func loadConfig() (*config.Config, error) {
	if initErr != nil {
		return nil, initErr
	}
	return config.Load(v)
}
