package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the export bundle from the stored records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		repo, store, err := openStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer repo.Close() //nolint:errcheck

		out := exportOut
		if out == "" {
			out = cfg.ExportDir
		}
		paths, err := export.WriteBundle(out, store)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d records exported:\n", store.Len())
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), "  "+p)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output directory (default EXPORT_DIR)")
	rootCmd.AddCommand(exportCmd)
}
