package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/weft/internal/server"
)

var renderOutput string

var renderCmd = &cobra.Command{
	Use:     "render <template-path>",
	Aliases: []string{"r"},
	Short:   "Render a stored template once",
	Long: `Load a template through the store (validation, sanitization, cache),
process its directives against the configured mock state, and print the
resulting markup.

Examples:
  weft render /index.html
  weft render /cards/user.html -o out.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write output to file instead of stdout")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, newLogger())
	if err != nil {
		return err
	}
	defer srv.Shutdown(cmd.Context())

	out, err := srv.Render(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if renderOutput != "" {
		return os.WriteFile(renderOutput, []byte(out), 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
