// Package templatecmd provides the commands managing the local template
// database.
package templatecmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/internal/cmd/cmdutil"
	"github.com/open-cli-collective/parsoid-go/internal/config"
	"github.com/open-cli-collective/parsoid-go/internal/view"
	"github.com/open-cli-collective/parsoid-go/pkg/templates"
)

// NewCmdTemplate creates the template command.
func NewCmdTemplate() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates", "tpl"},
		Short:   "Manage the local template database",
		Long: `Commands for storing, inspecting and removing templates in the local
template database, and for listing or pulling templates from the wiki.`,
	}

	cmd.AddCommand(NewCmdPut())
	cmd.AddCommand(NewCmdGet())
	cmd.AddCommand(NewCmdList())
	cmd.AddCommand(NewCmdDelete())
	cmd.AddCommand(NewCmdPull())

	return cmd
}

// env is what every template subcommand works with.
type env struct {
	ctx      context.Context
	cfg      *config.Config
	renderer *view.Renderer
}

// globals are the root flags a subcommand reads.
type globals struct {
	configPath string
	output     string
	noColor    bool
}

func readGlobals(cmd *cobra.Command) globals {
	g := globals{configPath: cmdutil.ConfigPath(cmd)}
	g.output, _ = cmd.Flags().GetString("output")
	g.noColor, _ = cmd.Flags().GetBool("no-color")
	return g
}

func newEnv(ctx context.Context, g globals, out io.Writer) (*env, error) {
	if err := view.ValidateFormat(g.output); err != nil {
		return nil, err
	}
	cfg, err := cmdutil.LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	r := view.NewRenderer(view.Format(g.output), g.noColor)
	r.SetWriter(out)
	return &env{ctx: ctx, cfg: cfg, renderer: r}, nil
}

// withStore runs fn with the opened template database.
func (e *env) withStore(fn func(*templates.SQLiteStore) error) error {
	store, err := cmdutil.OpenStore(e.ctx, e.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}
