// Package init provides the init command for parsoid.
package init

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/api"
	"github.com/open-cli-collective/parsoid-go/internal/cmd/cmdutil"
	"github.com/open-cli-collective/parsoid-go/internal/config"
)

type initOptions struct {
	configPath string
	apiURL     string
	noVerify   bool
}

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize parsoid configuration",
		Long: `Initialize parsoid with the wiki it should fetch templates from.

This command will guide you through setting the action API URL of your wiki,
the user agent sent with requests, and where templates are stored locally.
The configuration will be saved to ~/.config/parsoid/config.yml.

Leave the API URL empty to work with local templates only.`,
		Example: `  # Interactive setup
  parsoid init

  # Pre-populate the API URL
  parsoid init --api-url https://en.wikipedia.org/w/api.php`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.configPath = cmdutil.ConfigPath(cmd)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runInit(ctx, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.apiURL, "api-url", "", "wiki action API URL (e.g., https://en.wikipedia.org/w/api.php)")
	cmd.Flags().BoolVar(&opts.noVerify, "no-verify", false, "Skip connection verification")

	return cmd
}

func runInit(ctx context.Context, opts *initOptions, out io.Writer) error {
	// Check if config already exists
	if _, err := os.Stat(opts.configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", opts.configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(out, "Initialization cancelled.")
			return nil
		}
	}

	cfg := &config.Config{
		APIURL:       opts.apiURL,
		UserAgent:    config.DefaultUserAgent,
		TemplateDB:   config.DefaultTemplateDBPath(),
		OutputFormat: config.DefaultOutputFormat,
	}
	maxDepth := strconv.Itoa(config.DefaultMaxDepth)

	formatOptions := make([]huh.Option[string], 0, len(config.OutputFormats))
	for _, f := range config.OutputFormats {
		formatOptions = append(formatOptions, huh.NewOption(f, f))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Wiki API URL (optional)").
				Description("The action API of the wiki templates are fetched from").
				Placeholder("https://en.wikipedia.org/w/api.php").
				Value(&cfg.APIURL),

			huh.NewInput().
				Title("User Agent").
				Description("Sent with every API request; wikis ask for contact details here").
				Value(&cfg.UserAgent).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("user agent is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Template Database").
				Description("Where templates are stored locally").
				Value(&cfg.TemplateDB),

			huh.NewInput().
				Title("Max Template Depth").
				Description("How deeply templates may nest").
				Value(&maxDepth).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 0 {
						return fmt.Errorf("depth must be a positive number")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Title("Default Output").
				Options(formatOptions...).
				Value(&cfg.OutputFormat),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.MaxDepth, _ = strconv.Atoi(maxDepth)
	return finish(ctx, cfg, opts, out)
}

// finish normalizes, verifies and saves a configuration the user entered.
func finish(ctx context.Context, cfg *config.Config, opts *initOptions, out io.Writer) error {
	cfg.APIURL = normalizeAPIURL(cfg.APIURL)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.APIURL != "" && !opts.noVerify {
		fmt.Fprint(out, "Verifying connection... ")
		site, err := verifyConnection(ctx, cfg)
		if err != nil {
			fmt.Fprintln(out, "failed!")
			return fmt.Errorf("connection verification failed: %w", err)
		}
		fmt.Fprintf(out, "connected to %s\n", site.SiteName)
	}

	if err := cfg.Save(opts.configPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nConfiguration saved to %s\n", opts.configPath)
	fmt.Fprintln(out, "\nYou're all set! Try running:")
	fmt.Fprintln(out, "  echo \"'''Hello''' {{Example}}\" | parsoid parse")
	if cfg.APIURL != "" {
		fmt.Fprintln(out, "  parsoid template list --remote")
	}

	return nil
}

// normalizeAPIURL adds a missing scheme and drops trailing slashes.
func normalizeAPIURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	return strings.TrimRight(u, "/")
}

func verifyConnection(ctx context.Context, cfg *config.Config) (*api.SiteInfo, error) {
	client := api.NewClient(cfg.APIURL, cfg.UserAgent, cfg.Timeout())
	return client.GetSiteInfo(ctx)
}
