// Package root provides the root command for the parsoid CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/internal/cmd/completion"
	"github.com/open-cli-collective/parsoid-go/internal/cmd/configcmd"
	initcmd "github.com/open-cli-collective/parsoid-go/internal/cmd/init"
	"github.com/open-cli-collective/parsoid-go/internal/cmd/parse"
	"github.com/open-cli-collective/parsoid-go/internal/cmd/templatecmd"
	"github.com/open-cli-collective/parsoid-go/internal/version"
)

// NewCmdRoot creates the root command for parsoid.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parsoid",
		Short: "Convert wikitext to HTML",
		Long: `parsoid converts wikitext to HTML through a streaming token pipeline.

Templates are expanded from a local template database, a directory of
.wiki files, or the action API of a wiki.

Get started by running: parsoid init`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	build := version.Current()
	cmd.Version = build.Version

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/parsoid/config.yml)")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format for listings: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	cmd.SetVersionTemplate(build.String() + "\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(parse.NewCmdParse())
	cmd.AddCommand(parse.NewCmdTokens())
	cmd.AddCommand(templatecmd.NewCmdTemplate())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
