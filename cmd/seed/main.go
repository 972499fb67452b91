package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"itemhub/internal/config"
	"itemhub/internal/logger"
	"itemhub/internal/model"
	"itemhub/internal/repository"
	"itemhub/internal/router"
	"itemhub/internal/service"
)

const fetchTimeout = 30 * time.Second

var configPath string

var rootCmd = &cobra.Command{
	Use:   "seed <file-or-url>",
	Short: "Load an items catalogue into the configured store",
	Long: `Reads a JSON array of items from a local file or an http(s) URL and
creates every valid entry. Invalid entries are logged and skipped.`,
	Args:          cobra.ExactArgs(1),
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "optional config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Dev: cfg.Debug, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	store, err := repository.Open(ctx, cfg.DatabaseURL, repository.Options{Debug: cfg.Debug, AutoMigrate: true}, log)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Info("loading catalogue", zap.String("source", args[0]))
	items, err := loadCatalogue(ctx, args[0])
	if err != nil {
		return err
	}
	log.Info("catalogue loaded", zap.Int("entries", len(items)))

	created, skipped, err := seedItems(ctx, service.NewItemService(store.Items), items, log)
	if err != nil {
		return err
	}
	log.Info("seed completed",
		zap.Int("created", created),
		zap.Int("skipped", skipped),
		zap.String("backend", store.Backend),
	)
	return nil
}

// loadCatalogue reads a JSON array of items from a path or an http(s) URL.
func loadCatalogue(ctx context.Context, source string) ([]model.ItemCreate, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err := fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		r = body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open catalogue: %w", err)
		}
		r = f
	}
	defer r.Close()

	var items []model.ItemCreate
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return items, nil
}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to fetch catalogue: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("catalogue URL returned status code: %d", resp.StatusCode)
	}
	return cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

// seedItems creates every entry that passes the same validation as the
// HTTP API. A store failure aborts the run.
func seedItems(ctx context.Context, items service.ItemService, entries []model.ItemCreate, log *zap.Logger) (created, skipped int, err error) {
	v := router.NewValidator()
	for i, in := range entries {
		if err := v.Validate(in); err != nil {
			log.Warn("skipping invalid entry", zap.Int("index", i), zap.String("name", in.Name), zap.Error(err))
			skipped++
			continue
		}
		if _, err := items.CreateItem(ctx, in); err != nil {
			return created, skipped, fmt.Errorf("create item %d (%q): %w", i, in.Name, err)
		}
		created++
	}
	return created, skipped, nil
}
