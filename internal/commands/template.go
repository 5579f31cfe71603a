package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/importer"
)

func newTemplateCommand() *cobra.Command {
	var kind kindFlag
	var outDir string
	var stdout bool

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a sample CSV to fill in for bulk import",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := kind.profile()
			if err != nil {
				return err
			}

			if stdout {
				return importer.WriteTemplate(cmd.OutOrStdout(), p)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", outDir, err)
			}
			path := filepath.Join(outDir, importer.TemplateName(p.Kind))
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating template: %w", err)
			}
			defer f.Close()

			if err := importer.WriteTemplate(f, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	kind.register(cmd)
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write the template to")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print the template instead of writing a file")

	return cmd
}
