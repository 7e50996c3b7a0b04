package templatecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/api"
	"github.com/open-cli-collective/parsoid-go/internal/cmd/cmdutil"
	"github.com/open-cli-collective/parsoid-go/pkg/templates"
)

type listOptions struct {
	prefix string
	remote bool
	limit  int
}

// NewCmdList creates the template list command.
func NewCmdList() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list [prefix]",
		Aliases: []string{"ls"},
		Short:   "List templates",
		Long:    `List the templates in the local database, or on the wiki with --remote.`,
		Example: `  # Local templates
  parsoid template list

  # Templates on the wiki starting with "Info"
  parsoid template list Info --remote --limit 20

  # Output as JSON
  parsoid template list -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.prefix = args[0]
			}
			e, err := newEnv(cmd.Context(), readGlobals(cmd), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runList(e, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.remote, "remote", false, "list templates on the configured wiki")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 50, "maximum number of remote templates to list")

	return cmd
}

func runList(e *env, opts *listOptions) error {
	if opts.limit < 0 {
		return fmt.Errorf("invalid limit: %d", opts.limit)
	}
	if opts.remote {
		return listRemote(e, opts)
	}
	return e.withStore(func(store *templates.SQLiteStore) error {
		titles, err := store.List(e.ctx, opts.prefix)
		if err != nil {
			return err
		}
		return render(e, titles, false)
	})
}

func listRemote(e *env, opts *listOptions) error {
	if opts.limit == 0 {
		return render(e, nil, false)
	}
	client, err := cmdutil.NewClient(e.cfg)
	if err != nil {
		return err
	}
	list, err := client.ListTemplates(e.ctx, &api.ListTemplatesOptions{
		Prefix: templates.ShortTitle(opts.prefix),
		Limit:  opts.limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}
	return render(e, list.Titles, list.HasMore())
}

func render(e *env, titles []string, more bool) error {
	if len(titles) == 0 {
		e.renderer.RenderText("No templates found.")
		return nil
	}
	rows := make([][]string, 0, len(titles))
	for _, t := range titles {
		rows = append(rows, []string{t})
	}
	e.renderer.RenderTable([]string{"TITLE"}, rows)
	if more {
		e.renderer.RenderText(fmt.Sprintf("\n(showing first %d results, use --limit to see more)", len(titles)))
	}
	return nil
}
