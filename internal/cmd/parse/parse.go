// Package parse provides the parse and tokens commands.
package parse

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/parsoid-go/internal/cmd/cmdutil"
	"github.com/open-cli-collective/parsoid-go/internal/config"
	"github.com/open-cli-collective/parsoid-go/internal/view"
	"github.com/open-cli-collective/parsoid-go/pkg/diag"
	"github.com/open-cli-collective/parsoid-go/pkg/parsoid"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

type parseOptions struct {
	configPath   string
	format       string
	templatesDir string
	title        string
	maxDepth     int
	offline      bool
	noColor      bool
}

// NewCmdParse creates the parse command.
func NewCmdParse() *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Convert wikitext to HTML",
		Long: `Convert a wikitext page to HTML, expanding templates.

Templates are looked up in the --templates directory, then in the local
template database, then on the configured wiki. Problems found in the
content are reported on stderr; the page is still converted.`,
		Example: `  # Convert a file
  parsoid parse page.wiki

  # Read from stdin, use local templates only
  echo "{{Hello|world}}" | parsoid parse --templates ./templates --offline

  # Markdown output
  parsoid parse page.wiki -f markdown

  # HTML plus diagnostics as JSON
  parsoid parse page.wiki -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath = cmdutil.ConfigPath(cmd)
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			text, err := cmdutil.ReadInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runParse(cmd.Context(), opts, text, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: html, markdown, tokens, json (default from config)")
	cmd.Flags().StringVarP(&opts.templatesDir, "templates", "t", "", "directory of <Title>.wiki template files")
	cmd.Flags().StringVar(&opts.title, "title", "", "title of the page being converted")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum template nesting depth (default from config)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "do not fetch templates from the wiki")

	return cmd
}

// result is the json output of a parse.
type result struct {
	Title       string            `json:"title,omitempty"`
	HTML        string            `json:"html"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
}

func runParse(ctx context.Context, opts *parseOptions, text string, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := cmdutil.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	format := opts.format
	if format == "" {
		format = cfg.OutputFormat
	}
	if !slices.Contains(config.OutputFormats, format) {
		return fmt.Errorf("invalid output format %q (valid: %s)", format, strings.Join(config.OutputFormats, ", "))
	}
	depth := cfg.MaxDepth
	if opts.maxDepth > 0 {
		depth = opts.maxDepth
	}

	renderer := view.NewRenderer(view.FormatJSON, opts.noColor)
	renderer.SetWriter(out)
	renderer.SetMessageWriter(errOut)

	src, closeSource, err := cmdutil.OpenSource(ctx, cfg, cmdutil.SourceOptions{Dir: opts.templatesDir, Offline: opts.offline})
	if err != nil {
		return err
	}
	defer func() { _ = closeSource() }()

	p := parsoid.New(
		parsoid.WithSource(src),
		parsoid.WithMaxDepth(depth),
		parsoid.WithLogger(cmdutil.NewLogger(errOut)),
		parsoid.WithTitle(opts.title),
	)

	if format == "tokens" {
		writeTokens(out, p.Tokens(text))
		return nil
	}

	doc, err := p.Parse(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to parse: %w", err)
	}
	html, err := doc.HTML()
	if err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}

	switch format {
	case "json":
		diags := doc.Diagnostics
		if diags == nil {
			diags = []diag.Diagnostic{}
		}
		return renderer.RenderJSON(result{Title: opts.title, HTML: html, Diagnostics: diags})
	case "markdown":
		md, err := doc.Markdown()
		if err != nil {
			return fmt.Errorf("failed to convert to markdown: %w", err)
		}
		renderer.RenderText(md)
	default:
		renderer.RenderText(strings.TrimSuffix(html, "\n"))
	}
	renderer.Diagnostics(doc.Diagnostics)
	return nil
}

func writeTokens(out io.Writer, toks []*token.Token) {
	for _, t := range toks {
		if r, ok := t.Range(); ok {
			fmt.Fprintf(out, "%d-%d\t%s\n", r.Start, r.End, t)
			continue
		}
		fmt.Fprintln(out, t)
	}
}
