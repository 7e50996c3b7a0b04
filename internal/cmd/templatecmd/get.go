package templatecmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/pkg/templates"
)

type getOptions struct {
	info bool
}

// NewCmdGet creates the template get command.
func NewCmdGet() *cobra.Command {
	opts := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get <title>",
		Short: "Print a stored template",
		Example: `  parsoid template get Hello
  parsoid template get Hello --info`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd.Context(), readGlobals(cmd), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runGet(e, opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.info, "info", false, "show title, hash and update time instead of the text")

	return cmd
}

func runGet(e *env, opts *getOptions, title string, out io.Writer) error {
	return e.withStore(func(store *templates.SQLiteStore) error {
		entry, err := store.Get(e.ctx, title)
		if errors.Is(err, templates.ErrNotFound) {
			return fmt.Errorf("template %s is not stored", templates.NormalizeTitle(title))
		}
		if err != nil {
			return err
		}
		if opts.info {
			e.renderer.RenderKeyValue("Title", entry.Title)
			e.renderer.RenderKeyValue("Hash", entry.Hash)
			e.renderer.RenderKeyValue("Updated", entry.UpdatedAt.Format(time.RFC3339))
			e.renderer.RenderKeyValue("Size", fmt.Sprintf("%d bytes", len(entry.Source)))
			return nil
		}
		_, err = io.WriteString(out, entry.Source)
		return err
	})
}
