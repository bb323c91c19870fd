package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "reflectmeta",
		Short: "Metadata registry server and tools",
		Long: `reflectmeta attaches key/value annotations to (target, property) pairs.

The serve command exposes a registry over HTTP; demo walks through the
imperative and declarative APIs against an in-process store.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				_ = godotenv.Load()
				return nil
			}
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load env file %s: %w", envFile, err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default: .env when present)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewDemoCommand())

	return rootCmd
}
