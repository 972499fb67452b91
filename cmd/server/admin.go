package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"itemhub/internal/auth"
	"itemhub/internal/config"
	"itemhub/internal/db"
	"itemhub/internal/model"
	"itemhub/internal/repository"
	"itemhub/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the SQL schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if !db.IsSQL(cfg.DatabaseURL) {
			log.Info("backend has no schema, nothing to migrate", zap.String("scheme", db.Scheme(cfg.DatabaseURL)))
			return nil
		}
		gdb, err := db.Open(cfg.DatabaseURL, cfg.Debug)
		if err != nil {
			return err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		log.Info("schema migrated", zap.String("scheme", db.Scheme(cfg.DatabaseURL)))
		return nil
	},
}

var superuserFlags struct {
	username string
	email    string
	password string
	fullName string
}

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an active superuser account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if superuserFlags.password == "" {
			superuserFlags.password = os.Getenv("SUPERUSER_PASSWORD")
		}
		if superuserFlags.password == "" {
			return errors.New("--password or SUPERUSER_PASSWORD is required")
		}

		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		store, err := openStore(cmd, cfg, log)
		if err != nil {
			return err
		}
		defer store.Close()

		yes := true
		in := model.UserCreate{
			Username:    superuserFlags.username,
			Email:       superuserFlags.email,
			Password:    superuserFlags.password,
			IsActive:    &yes,
			IsSuperuser: &yes,
		}
		if superuserFlags.fullName != "" {
			in.FullName = &superuserFlags.fullName
		}

		users := service.NewUserService(store.Users, auth.NewHasher(cfg.BcryptCost, cfg.HashWorkers), log)
		user, err := users.CreateUser(cmd.Context(), service.SystemActor, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "superuser %q created with id %d\n", user.Username, user.ID)
		return nil
	},
}

var listFlags struct {
	skip  int
	limit int
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print a page of users as a table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		store, err := openStore(cmd, cfg, log)
		if err != nil {
			return err
		}
		defer store.Close()

		users := service.NewUserService(store.Users, auth.NewHasher(cfg.BcryptCost, cfg.HashWorkers), log)
		page, err := users.ListUsers(cmd.Context(), listFlags.skip, listFlags.limit)
		if err != nil {
			return err
		}
		renderUsers(cmd, page)
		return nil
	},
}

func init() {
	f := createSuperuserCmd.Flags()
	f.StringVar(&superuserFlags.username, "username", "admin", "username")
	f.StringVar(&superuserFlags.email, "email", "admin@example.com", "email address")
	f.StringVar(&superuserFlags.password, "password", "", "password (falls back to SUPERUSER_PASSWORD)")
	f.StringVar(&superuserFlags.fullName, "full-name", "", "optional display name")

	usersListCmd.Flags().IntVar(&listFlags.skip, "skip", 0, "rows to skip")
	usersListCmd.Flags().IntVar(&listFlags.limit, "limit", repository.DefaultLimit, "maximum rows to print")
	usersCmd.AddCommand(usersListCmd)
}

func openStore(cmd *cobra.Command, cfg *config.Config, log *zap.Logger) (*repository.Store, error) {
	return repository.Open(cmd.Context(), cfg.DatabaseURL, repository.Options{
		Debug:       cfg.Debug,
		AutoMigrate: true,
	}, log)
}

func renderUsers(cmd *cobra.Command, users []model.User) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"ID", "Username", "Email", "Full name", "Active", "Superuser", "Created"})
	for _, u := range users {
		fullName := ""
		if u.FullName != nil {
			fullName = *u.FullName
		}
		t.AppendRow(table.Row{u.ID, u.Username, u.Email, fullName, u.IsActive, u.IsSuperuser, u.CreatedAt.Format("2006-01-02 15:04")})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(users)})
	t.Render()
}
