package main

import (
	"fmt"
	"os"

	"github.com/sipeed/chanscout/pkg/config"
	"github.com/sipeed/chanscout/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	envFile string
)

var rootCmd = &cobra.Command{
	Use:          "chanscout",
	Short:        "Find Telegram channels that match a keyword configuration",
	SilenceUsage: true,
	Long: `chanscout searches a channel directory, keeps the results that match the
configured include/exclude keywords (Arabic and Latin aware, tolerant of
separator obfuscation), and ranks them by weighted keyword score and size.

Configuration comes from environment variables such as BOT_TOKEN,
INCLUDE_KEYWORDS, EXCLUDE_KEYWORDS, KEYWORDS_FILE and DIRECTORY_URL.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file applied before reading the environment")
	rootCmd.AddCommand(serveCmd(), searchCmd(), checkCmd(), versionCmd())
}

// loadConfig applies the dotenv file, parses the environment and configures
// logging.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := config.ApplyDotEnv(envFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Configure(os.Stderr, cfg.LogLevel, cfg.LogJSON)
	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chanscout %s\n", version)
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
