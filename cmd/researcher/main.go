package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"stock-researcher/internal/cli"
	"stock-researcher/internal/config"
	"stock-researcher/internal/logging"
)

func main() {
	// A local .env can carry OPENAI_API_KEY and TELEGRAM_BOT_TOKEN
	_ = godotenv.Load()

	cfg, err := config.Load(cli.ConfigDir(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger()

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
