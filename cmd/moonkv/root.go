package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X main.Version=..."
var Version = "0.1.0"

var (
	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "moonkv",
		Short: "in-memory key-value server speaking RESP",
		Long: fmt.Sprintf(`moonkv (v%s)

An in-memory key-value server compatible with Redis clients.
It stores strings, lists, sets and hashes with optional expiration.`, Version),
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of moonkv",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("moonkv v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(loadEnvFiles)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cliCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFiles exports .env and .env.local so MOONKV_* variables can live next to the binary
func loadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}
