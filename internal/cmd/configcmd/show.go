package configcmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/internal/cmd/cmdutil"
	"github.com/open-cli-collective/parsoid-go/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the effective parsoid configuration and where each value comes from.`,
		Example: `  # Show current config
  parsoid config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runShow(cmdutil.ConfigPath(cmd), noColor, cmd.OutOrStdout())
		},
	}

	return cmd
}

func runShow(configPath string, noColor bool, out io.Writer) error {
	if noColor {
		color.NoColor = true
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyDefaults()

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue, envVar string) {
		_, _ = bold.Fprintf(out, "%-14s", label+":")
		if value == "" {
			_, _ = dim.Fprintln(out, "-")
			return
		}
		fmt.Fprint(out, value)

		source := "default"
		switch {
		case os.Getenv(envVar) != "":
			source = envVar
		case fileValue != "":
			source = "config"
		}
		_, _ = dim.Fprintf(out, "  (source: %s)\n", source)
	}
	itoa := func(n int) string {
		if n == 0 {
			return ""
		}
		return strconv.Itoa(n)
	}

	printField("API URL", cfg.APIURL, fileCfg.APIURL, "PARSOID_API_URL")
	printField("User Agent", cfg.UserAgent, fileCfg.UserAgent, "PARSOID_USER_AGENT")
	printField("Template DB", cfg.TemplateDB, fileCfg.TemplateDB, "PARSOID_TEMPLATE_DB")
	printField("Max Depth", itoa(cfg.MaxDepth), itoa(fileCfg.MaxDepth), "PARSOID_MAX_DEPTH")
	printField("Cache Size", itoa(cfg.CacheSize), itoa(fileCfg.CacheSize), "PARSOID_CACHE_SIZE")
	printField("Fetch Timeout", cfg.FetchTimeout, fileCfg.FetchTimeout, "PARSOID_FETCH_TIMEOUT")
	printField("Output", cfg.OutputFormat, fileCfg.OutputFormat, "PARSOID_OUTPUT_FORMAT")

	fmt.Fprintln(out)
	_, _ = dim.Fprintf(out, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(out, "(file not found)")
	}

	return nil
}
