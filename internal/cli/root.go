package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	addr       string
	transport  string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envAddr := os.Getenv("ADDR")
	if envAddr == "" {
		envAddr = ":8080"
	}
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "archive-service",
		Short: "Practiso archive build tools served over MCP",
	}

	cmd.PersistentFlags().StringVar(&addr, "addr", envAddr, "address to listen on in http mode")
	cmd.PersistentFlags().StringVar(&transport, "transport", "", "transport to serve on: stdio or http")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &addr, &transport))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}
