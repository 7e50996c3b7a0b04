// Package cmdutil holds the setup shared by parsoid commands: config
// loading, logging, input reading and template source construction.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/api"
	"github.com/open-cli-collective/parsoid-go/internal/config"
	"github.com/open-cli-collective/parsoid-go/pkg/templates"
)

// ConfigPath returns the --config flag value or the default path.
func ConfigPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

// LoadConfig loads, validates and completes the configuration at path.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w (run 'parsoid init' to configure)", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w (run 'parsoid init' to configure)", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// NewLogger returns a text logger without timestamps. It logs warnings
// and above, or everything when PARSOID_DEBUG is set.
func NewLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("PARSOID_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// NewClient creates an API client for the configured wiki.
func NewClient(cfg *config.Config) (*api.Client, error) {
	if cfg.APIURL == "" {
		return nil, errors.New("no api_url configured (set it with 'parsoid init' or PARSOID_API_URL)")
	}
	return api.NewClient(cfg.APIURL, cfg.UserAgent, cfg.Timeout()), nil
}

// ReadInput reads the file named by the first argument, or in when there
// is none or it is "-".
func ReadInput(args []string, in io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// OpenStore opens the template database, creating it and its directory
// if needed.
func OpenStore(ctx context.Context, cfg *config.Config) (*templates.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.TemplateDB), 0755); err != nil {
		return nil, fmt.Errorf("failed to create template directory: %w", err)
	}
	store, err := templates.OpenSQLite(ctx, cfg.TemplateDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open template database %s: %w", cfg.TemplateDB, err)
	}
	return store, nil
}

// SourceOptions select the template sources of a parse.
type SourceOptions struct {
	Dir     string // directory of *.wiki files, searched first
	Offline bool   // never ask the remote wiki
}

// OpenSource builds the template source chain: the directory, then the
// local database if it exists, then the remote wiki behind a cache. The
// returned function releases what was opened.
func OpenSource(ctx context.Context, cfg *config.Config, opts SourceOptions) (templates.Source, func() error, error) {
	var chain templates.Chain
	closers := []func() error{}
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	if opts.Dir != "" {
		mem, err := templates.LoadDir(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, mem)
	}

	if _, err := os.Stat(cfg.TemplateDB); err == nil {
		store, err := templates.OpenSQLite(ctx, cfg.TemplateDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open template database %s: %w", cfg.TemplateDB, err)
		}
		chain = append(chain, store)
		closers = append(closers, store.Close)
	}

	if cfg.APIURL != "" && !opts.Offline {
		client, err := NewClient(cfg)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		cached, err := templates.NewCached(templates.NewRemote(client), cfg.CacheSize)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		chain = append(chain, cached)
	}

	return chain, closeAll, nil
}
