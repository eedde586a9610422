package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescope/internal/config"
)

// NewRootCmd creates the root command for SiteScope.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitescope",
		Short: "Single-page SEO, accessibility and security analyzer",
		Long: `SiteScope fetches a web page with its stylesheets and scripts and reports
keyword ranking, heading structure, metadata, image alt coverage, inline
content, obsolete tags, tabnabbing links, risky iframes, insecure resources
and missing security headers.

Reports can be printed in the terminal, served through a small web UI, or
discussed with a Gemini-backed assistant (set GEMINI_API_KEY).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .sitescope in current or home directory)")
	cmd.PersistentFlags().String("env-file", config.DefaultEnvFile,
		"Dotenv file read for GEMINI_API_KEY and GEMINI_MODEL")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
