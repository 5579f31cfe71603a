package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/report"
)

func newAddCommand(g *globalFlags) *cobra.Command {
	var kind kindFlag
	values := make(map[model.Field]*string)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a single income or expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.load(cmd)
			if err != nil {
				return err
			}
			if err := e.requireUser(); err != nil {
				return err
			}
			p, err := kind.profile()
			if err != nil {
				return err
			}

			row := &model.EditableRow{ID: "manual", Fields: make(map[model.Field]string)}
			for f, v := range values {
				row.Fields[f] = *v
			}
			if errs := importer.ValidateRow(row, p.Categories); len(errs) > 0 {
				return errors.New(strings.Join(errs, "; "))
			}

			txn, err := importer.ToTransaction(row, p.Kind, time.Now())
			if err != nil {
				return err
			}

			store, err := e.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := store.Add(cmd.Context(), p.CollectionPath(e.user.UserID), txn)
			if err != nil {
				return err
			}

			e.record(auditlog.Entry{
				Kind:    string(p.Kind),
				Action:  auditlog.ActionAdd,
				Details: id,
				Count:   1,
			}, fmt.Sprintf("add: %s %s", p.Kind, txn.Name))

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", p.Kind, id)
			return nil
		},
	}

	kind.register(cmd)
	for _, f := range model.AllFields() {
		v := new(string)
		values[f] = v
		def := ""
		if f == model.FieldStatus {
			def = string(model.StatusCompleted)
		}
		cmd.Flags().StringVar(v, strings.ReplaceAll(string(f), "_", "-"), def, string(f))
	}
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newListCommand(g *globalFlags) *cobra.Command {
	var kind kindFlag
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, p, store, err := openForKind(cmd, g, &kind)
			if err != nil {
				return err
			}
			defer store.Close()

			txns, err := store.List(cmd.Context(), p.CollectionPath(e.user.UserID))
			if err != nil {
				return err
			}
			if limit > 0 && len(txns) > limit {
				txns = txns[:limit]
			}

			out := cmd.OutOrStdout()
			if len(txns) == 0 {
				fmt.Fprintf(out, "No %s records.\n", p.Kind)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIMESTAMP\tNAME\tAMOUNT\tCATEGORY\tSTATUS")
			for _, t := range txns {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Timestamp, t.Name, t.Amount.StringFixed(2), t.Category, t.Status)
			}
			return tw.Flush()
		},
	}

	kind.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many records (0 for all)")

	return cmd
}

func newDeleteCommand(g *globalFlags) *cobra.Command {
	var kind kindFlag

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, p, store, err := openForKind(cmd, g, &kind)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), p.CollectionPath(e.user.UserID), args[0]); err != nil {
				if errors.Is(err, ledger.ErrNotFound) {
					return fmt.Errorf("no %s record %s", p.Kind, args[0])
				}
				return err
			}

			e.record(auditlog.Entry{
				Kind:    string(p.Kind),
				Action:  auditlog.ActionDelete,
				Details: args[0],
				Count:   1,
			}, fmt.Sprintf("delete: %s %s", p.Kind, args[0]))

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	kind.register(cmd)
	return cmd
}

func newSummaryCommand(g *globalFlags) *cobra.Command {
	var kind kindFlag

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Totals by category and month, with unusual days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, p, store, err := openForKind(cmd, g, &kind)
			if err != nil {
				return err
			}
			defer store.Close()

			txns, err := store.List(cmd.Context(), p.CollectionPath(e.user.UserID))
			if err != nil {
				return err
			}
			s := report.Summarize(txns)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total %s: %s (%d records)\n", p.Kind, s.Total.StringFixed(2), s.Count)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "CATEGORY\tTOTAL\tCOUNT\tSHARE")
			for _, c := range s.Categories {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s%%\n", c.Category, c.Total.StringFixed(2), c.Count, c.Share.StringFixed(2))
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "MONTH\tTOTAL\tCOUNT\t")
			for _, m := range s.Months {
				fmt.Fprintf(tw, "%s\t%s\t%d\t\n", m.Month, m.Total.StringFixed(2), m.Count)
			}

			fmt.Fprintln(tw)
			anomalies := report.Anomalies(txns)
			if len(anomalies) == 0 {
				fmt.Fprintln(tw, "No anomalies.")
				return tw.Flush()
			}
			fmt.Fprintln(tw, "ANOMALY\tTOTAL\tCOUNT\tREASON")
			for _, a := range anomalies {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", a.Date, a.Amount.StringFixed(2), a.Count, a.Reason)
			}
			return tw.Flush()
		},
	}

	kind.register(cmd)
	return cmd
}

func newExportCommand(g *globalFlags) *cobra.Command {
	var kind kindFlag
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved records as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, p, store, err := openForKind(cmd, g, &kind)
			if err != nil {
				return err
			}
			defer store.Close()

			txns, err := store.List(cmd.Context(), p.CollectionPath(e.user.UserID))
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return report.WriteCSV(cmd.OutOrStdout(), txns)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			if err := report.WriteCSV(f, txns); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d %s records to %s\n", len(txns), p.Kind, output)
			return nil
		},
	}

	kind.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

func openForKind(cmd *cobra.Command, g *globalFlags, kind *kindFlag) (*env, categories.Profile, *ledger.Store, error) {
	e, err := g.load(cmd)
	if err != nil {
		return nil, categories.Profile{}, nil, err
	}
	if err := e.requireUser(); err != nil {
		return nil, categories.Profile{}, nil, err
	}
	p, err := kind.profile()
	if err != nil {
		return nil, categories.Profile{}, nil, err
	}
	store, err := e.openLedger()
	if err != nil {
		return nil, categories.Profile{}, nil, err
	}
	return e, p, store, nil
}
