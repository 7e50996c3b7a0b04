package parse

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/internal/cmd/cmdutil"
	"github.com/open-cli-collective/parsoid-go/pkg/tokenizer"
)

// NewCmdTokens creates the tokens command.
func NewCmdTokens() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file|-]",
		Short: "Show the tokens of a wikitext page",
		Long: `Print the tokenizer output for a page, one token per line with its
source byte range. No handler runs, so templates stay unexpanded.`,
		Example: `  parsoid tokens page.wiki
  echo "''hi''" | parsoid tokens`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := cmdutil.ReadInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			writeTokens(cmd.OutOrStdout(), tokenizer.Tokens(text))
			return nil
		},
	}
}
