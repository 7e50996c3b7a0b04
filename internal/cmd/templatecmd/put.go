package templatecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/internal/cmd/cmdutil"
	"github.com/open-cli-collective/parsoid-go/pkg/templates"
)

// NewCmdPut creates the template put command.
func NewCmdPut() *cobra.Command {
	return &cobra.Command{
		Use:   "put <title> [file|-]",
		Short: "Store a template",
		Long:  `Store wikitext as a template. Storing identical text again is a no-op.`,
		Example: `  # Store from a file
  parsoid template put Hello hello.wiki

  # Store from stdin
  echo "Hello {{{1}}}" | parsoid template put Hello`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := cmdutil.ReadInput(args[1:], cmd.InOrStdin())
			if err != nil {
				return err
			}
			e, err := newEnv(cmd.Context(), readGlobals(cmd), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runPut(e, args[0], text)
		},
	}
}

func runPut(e *env, title, text string) error {
	return e.withStore(func(store *templates.SQLiteStore) error {
		changed, err := store.Put(e.ctx, title, text)
		if err != nil {
			return fmt.Errorf("failed to store template: %w", err)
		}
		name := templates.NormalizeTitle(title)
		if !changed {
			e.renderer.Success(name + " is unchanged")
			return nil
		}
		e.renderer.Success("Stored " + name)
		return nil
	})
}
