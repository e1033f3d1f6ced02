package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "motrilog",
	Short: "MotriLog authentication service",
	Long: `Password login with an optional Telegram second factor, server-side
sessions and admin user management for MotriLog.

Configuration is read from the environment (PORT, MOTRILOG_DATABASE_FILE,
SESSION_STORE, NOTIFY_DRIVER, TELEGRAM_BOT_TOKEN, ...).`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
