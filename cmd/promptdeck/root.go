package main

import (
	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "promptdeck",
	Short: "Community platform for sharing and testing prompts, agents, and personas",
	Long: `Promptdeck is a self-hostable platform for authoring, sharing, and
interactively testing prompts, agents, personas, and reusable context
documents against multiple LLM providers.

The playground lets you:
  - Fill prompt template variables through a guided dialogue
  - Compose context documents and attachments into the final prompt
  - Stream responses from cloud providers, local Ollama, or a simulator`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.promptdeck/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "promptdeck home directory (default: ~/.promptdeck)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
