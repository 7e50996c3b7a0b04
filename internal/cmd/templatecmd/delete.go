package templatecmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/pkg/templates"
)

// NewCmdDelete creates the template delete command.
func NewCmdDelete() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <title>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored template",
		Example: `  parsoid template delete Hello`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), readGlobals(cmd), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runDelete(e, args[0])
		},
	}
}

func runDelete(e *env, title string) error {
	return e.withStore(func(store *templates.SQLiteStore) error {
		name := templates.NormalizeTitle(title)
		err := store.Delete(e.ctx, title)
		if errors.Is(err, templates.ErrNotFound) {
			return fmt.Errorf("template %s is not stored", name)
		}
		if err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}
		e.renderer.Success("Deleted " + name)
		return nil
	})
}
