package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "itemhub",
	Short: "Item Hub API server",
	Long:  "HTTP API for managing items and users, plus administrative commands.",
	// Running the binary without a subcommand serves the API.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional config file (yaml, json, toml or env)")
	rootCmd.AddCommand(serveCmd, migrateCmd, createSuperuserCmd, usersCmd)
}

// @title Item Hub API
// @version 1.0.0
// @description Items and users CRUD service with JWT authentication.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
