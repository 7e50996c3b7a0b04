package templatecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/internal/cmd/cmdutil"
	"github.com/open-cli-collective/parsoid-go/pkg/templates"
)

// NewCmdPull creates the template pull command.
func NewCmdPull() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <title>...",
		Short: "Copy templates from the wiki into the local database",
		Long: `Fetch the current text of each template from the configured wiki and
store it locally, so later parses work offline.`,
		Example: `  parsoid template pull Infobox Navbox`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), readGlobals(cmd), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runPull(e, args)
		},
	}
}

func runPull(e *env, titles []string) error {
	client, err := cmdutil.NewClient(e.cfg)
	if err != nil {
		return err
	}
	remote := templates.NewRemote(client)
	return e.withStore(func(store *templates.SQLiteStore) error {
		failed := 0
		for _, title := range titles {
			name := templates.NormalizeTitle(title)
			text, err := remote.Fetch(e.ctx, name)
			if err != nil {
				e.renderer.Error(fmt.Sprintf("failed to pull %s: %v", name, err))
				failed++
				continue
			}
			changed, err := store.Put(e.ctx, name, text)
			if err != nil {
				return fmt.Errorf("failed to store %s: %w", name, err)
			}
			if changed {
				e.renderer.Success("Pulled " + name)
			} else {
				e.renderer.Success(name + " is up to date")
			}
		}
		if failed > 0 {
			return fmt.Errorf("failed to pull %d of %d templates", failed, len(titles))
		}
		return nil
	})
}
