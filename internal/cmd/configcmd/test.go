package configcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/internal/cmd/cmdutil"
	"github.com/open-cli-collective/parsoid-go/internal/config"
)

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the wiki connection and the template database",
		Long: `Check that parsoid can reach the configured wiki API and open the local
template database.`,
		Example: `  # Test connection
  parsoid config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			if noColor {
				color.NoColor = true
			}
			cfg, err := cmdutil.LoadConfig(cmdutil.ConfigPath(cmd))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runTest(ctx, cfg, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runTest(ctx context.Context, cfg *config.Config, out io.Writer) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	dim := color.New(color.Faint)

	if cfg.APIURL == "" {
		_, _ = dim.Fprintln(out, "No api_url configured; templates resolve from the local database only")
	} else {
		fmt.Fprintf(out, "Testing connection to %s...\n", cfg.APIURL)
		client, err := cmdutil.NewClient(cfg)
		if err != nil {
			return err
		}
		site, err := client.GetSiteInfo(ctx)
		if err != nil {
			_, _ = red.Fprintln(out, "✗ Connection failed:", err)
			fmt.Fprintln(out, "\nCheck your URL with: parsoid config show")
			fmt.Fprintln(out, "Reconfigure with: parsoid init")
			return fmt.Errorf("connection failed: %w", err)
		}
		_, _ = green.Fprintf(out, "✓ Connected to %s (%s)\n", site.SiteName, site.Generator)
	}

	if _, err := os.Stat(cfg.TemplateDB); errors.Is(err, os.ErrNotExist) {
		_, _ = dim.Fprintf(out, "Template database not created yet: %s\n", cfg.TemplateDB)
		return nil
	}
	store, err := cmdutil.OpenStore(ctx, cfg)
	if err != nil {
		_, _ = red.Fprintln(out, "✗ Template database unusable:", err)
		return err
	}
	defer func() { _ = store.Close() }()
	titles, err := store.List(ctx, "")
	if err != nil {
		_, _ = red.Fprintln(out, "✗ Template database unusable:", err)
		return err
	}
	_, _ = green.Fprintf(out, "✓ Template database: %d templates in %s\n", len(titles), cfg.TemplateDB)

	return nil
}
