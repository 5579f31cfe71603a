package commands

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/session"
)

type importOptions struct {
	kind    kindFlag
	sets    []string
	deletes []string
	adds    []string
	dryRun  bool
}

func newImportCommand(g *globalFlags) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <file.csv | inbox-dir>",
		Short: "Preview, fix and import a CSV of income or expenses",
		Long: `Import reads a CSV, validates every row and prints a preview. Rows can be
corrected in place before saving:

  --set row-1.category=Travel   replace one field of one row
  --delete row-3                drop a row
  --add name=Fuel,amount=40,category=Travel
                                append a new row

Nothing is saved unless every row is valid. Given a directory, each CSV in
it is imported in turn and moved to processed/ once saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.load(cmd)
			if err != nil {
				return err
			}
			p, err := opts.kind.profile()
			if err != nil {
				return err
			}

			var store *ledger.Store
			if !opts.dryRun {
				if err := e.requireUser(); err != nil {
					return err
				}
				store, err = e.openLedger()
				if err != nil {
					return err
				}
				defer store.Close()
			}

			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			if !info.IsDir() {
				return importFile(cmd.Context(), cmd.OutOrStdout(), e, p, store, args[0], opts)
			}
			return importDir(cmd.Context(), cmd.OutOrStdout(), e, p, store, args[0], opts)
		},
	}

	opts.kind.register(cmd)
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "set a field: row-ID.field=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.deletes, "delete", nil, "delete a row by ID (repeatable)")
	cmd.Flags().StringArrayVar(&opts.adds, "add", nil, "add a row: field=value,... quoting any assignment that holds a comma (repeatable)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "preview only, save nothing")

	return cmd
}

func importDir(ctx context.Context, out io.Writer, e *env, p categories.Profile, store *ledger.Store, dir string, opts *importOptions) error {
	files, err := importer.Scan(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No CSV files in %s\n", dir)
		return nil
	}

	var failed int
	for _, f := range files {
		if err := importFile(ctx, out, e, p, store, f.Path, opts); err != nil {
			fmt.Fprintf(out, "%s: %v\n", f.Name, err)
			failed++
			continue
		}
		if opts.dryRun {
			continue
		}
		if err := importer.MarkProcessed(dir, f.Name); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files were not imported", failed, len(files))
	}
	return nil
}

func importFile(ctx context.Context, out io.Writer, e *env, p categories.Profile, store *ledger.Store, path string, opts *importOptions) error {
	svc := importer.NewService(p, importer.Options{
		Logger:   e.logger,
		MaxBytes: e.cfg.Import.MaxBytes,
	})

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	parsed, err := svc.Load(name, mime.TypeByExtension(filepath.Ext(name)), f)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d rows\n", name, len(parsed.Rows))
	for _, d := range parsed.Dropped {
		fmt.Fprintf(out, "  skipped line %d: %s\n", d.Line, d.Reason)
	}

	if err := applyEdits(svc.Rows(), opts); err != nil {
		return err
	}

	reports := svc.Preview()
	printPreview(out, reports, p.Categories)

	if opts.dryRun {
		fmt.Fprintln(out, "Dry run: nothing saved.")
		return nil
	}

	n, err := svc.Commit(ctx, e.user, store)
	if err != nil {
		var ce *importer.CommitError
		if errors.As(err, &ce) {
			return fmt.Errorf("%w: nothing was saved", err)
		}
		return err
	}

	e.record(auditlog.Entry{
		Kind:    string(p.Kind),
		Action:  auditlog.ActionImport,
		Details: name,
		Count:   n,
	}, fmt.Sprintf("import: %d %s records from %s", n, p.Kind, name))

	total, err := store.List(ctx, p.CollectionPath(e.user.UserID))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d %s records (%d total).\n", n, p.Kind, len(total))
	return nil
}

// applyEdits runs --set, then --delete, then --add against the parsed rows.
func applyEdits(rows *session.Store, opts *importOptions) error {
	for _, s := range opts.sets {
		rowID, field, value, err := parseSet(s)
		if err != nil {
			return err
		}
		if !rows.SetField(rowID, field, value) {
			return fmt.Errorf("--set %s: no row %s", s, rowID)
		}
	}

	for _, rowID := range opts.deletes {
		if !rows.DeleteRow(rowID) {
			return fmt.Errorf("--delete: no row %s", rowID)
		}
	}

	for _, a := range opts.adds {
		values, err := parseAssignments(a)
		if err != nil {
			return fmt.Errorf("--add %s: %w", a, err)
		}
		rowID := rows.AddRow()
		for f, v := range values {
			rows.SetField(rowID, f, v)
		}
	}
	return nil
}

// parseSet splits "row-1.amount=12.50" into its row ID, field and value.
func parseSet(s string) (string, model.Field, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", "", fmt.Errorf("--set %s: want row-ID.field=value", s)
	}
	dot := strings.LastIndex(key, ".")
	if dot < 0 {
		return "", "", "", fmt.Errorf("--set %s: want row-ID.field=value", s)
	}
	field, ok := model.ParseField(key[dot+1:])
	if !ok {
		return "", "", "", fmt.Errorf("--set %s: unknown field %q", s, key[dot+1:])
	}
	return key[:dot], field, value, nil
}

// parseAssignments reads "field=value,..." as one CSV record, so an
// assignment wrapped in double quotes may contain commas.
func parseAssignments(s string) (map[model.Field]string, error) {
	r := csv.NewReader(strings.NewReader(s))
	r.FieldsPerRecord = -1
	parts, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("parsing assignments: %w", err)
	}
	values := make(map[model.Field]string)
	for _, part := range parts {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("want field=value, got %q", part)
		}
		f, ok := model.ParseField(strings.TrimSpace(k))
		if !ok {
			return nil, fmt.Errorf("unknown field %q", k)
		}
		values[f] = v
	}
	return values, nil
}

func printPreview(out io.Writer, reports []importer.RowReport, cats categories.Set) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tNAME\tAMOUNT\tCATEGORY\tDATE\tSTATUS\tERRORS")

	invalid := 0
	for _, r := range reports {
		errs := "-"
		if !r.Valid() {
			invalid++
			errs = strings.Join(r.Errors, "; ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Row.ID,
			r.Row.Value(model.FieldName),
			r.Row.Value(model.FieldAmount),
			r.Row.Value(model.FieldCategory),
			r.Row.Value(model.FieldDate),
			r.Row.Value(model.FieldStatus),
			errs,
		)
	}
	tw.Flush()

	for _, r := range reports {
		category := strings.TrimSpace(r.Row.Value(model.FieldCategory))
		if category == "" || cats.Contains(category) {
			continue
		}
		if best, ok := cats.Closest(category); ok {
			fmt.Fprintf(out, "  hint: %s category %q, did you mean %q? (--set %s.category=%s)\n",
				r.Row.ID, category, best, r.Row.ID, best)
		}
	}

	fmt.Fprintf(out, "%d valid, %d with errors\n", len(reports)-invalid, invalid)
}
