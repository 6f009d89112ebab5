package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/export"
)

var (
	duplicatesColumn     string
	duplicatesNormalized bool
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates <in.csv> <out.csv>",
	Short: "Export all CSV rows whose title occurs more than once",
	Long: `Liest eine CSV, sucht Zeilen mit doppeltem Wert in --column und schreibt
sie sortiert nach diesem Wert in <out.csv>. Ohne Duplikate wird keine Datei angelegt.

Mit --normalized werden Titel nach Normalisierung verglichen (Groß-/Kleinschreibung,
Diakritika, Satzzeichen).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDuplicates(args[0], args[1], duplicatesColumn, duplicatesNormalized, cmd.OutOrStdout())
	},
}

func init() {
	duplicatesCmd.Flags().StringVar(&duplicatesColumn, "column", "Title", "column to check for duplicates")
	duplicatesCmd.Flags().BoolVar(&duplicatesNormalized, "normalized", false, "compare normalized titles")
	rootCmd.AddCommand(duplicatesCmd)
}

func runDuplicates(in, out, column string, normalized bool, w io.Writer) error {
	f, err := os.Open(in)
	if err != nil {
		return eris.Wrapf(err, "input file %s", in)
	}
	defer f.Close()

	set, err := export.FindDuplicateTitles(f, column, normalized)
	if err != nil {
		return err
	}
	if set.Empty() {
		fmt.Fprintf(w, "No duplicate values found in the %q column. No file created.\n", column)
		return nil
	}

	dst, err := os.Create(out)
	if err != nil {
		return eris.Wrapf(err, "output file %s", out)
	}
	if err := set.WriteCSV(dst); err != nil {
		dst.Close() //nolint:errcheck
		return err
	}
	if err := dst.Close(); err != nil {
		return eris.Wrapf(err, "close %s", out)
	}

	abs, _ := filepath.Abs(out)
	fmt.Fprintf(w, "Found %d rows across %d unique duplicated titles.\n", len(set.Rows), set.Groups)
	fmt.Fprintf(w, "The duplicate data has been saved to: %s\n", abs)
	return nil
}
