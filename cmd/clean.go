package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/weft/internal/sanitize"
)

var cleanOutput string

var cleanCmd = &cobra.Command{
	Use:   "clean [file]",
	Short: "Sanitize a markup file",
	Long: `Run markup through the configured allow-list sanitizer and print the
result. Reads stdin when no file is given.

Examples:
  weft clean page.html
  cat snippet.html | weft clean`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "write output to file instead of stdout")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var raw []byte
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return err
	}

	san := sanitize.New(sanitize.NewPolicy(cfg.Security), newLogger())
	cleaned, err := san.CleanString(string(raw))
	if err != nil {
		return err
	}

	if cleanOutput != "" {
		return os.WriteFile(cleanOutput, []byte(cleaned), 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cleaned)
	return nil
}
