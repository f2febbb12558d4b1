package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/regharvest/fedresurs-cli/internal/checkpoint"
	"github.com/regharvest/fedresurs-cli/internal/export"
	"github.com/regharvest/fedresurs-cli/internal/flatten"
	"github.com/regharvest/fedresurs-cli/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Flatten all harvested buckets into one spreadsheet",
	Long: `Load every yearly bucket, flatten the records onto a single column
schema, and write the result as an XLSX file with clickable notice links.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := zap.L().With(zap.String("command", "export"))

		output, _ := cmd.Flags().GetString("output")
		sheet, _ := cmd.Flags().GetString("sheet")
		if output == "" {
			output = cfg.Export.Output
		}
		if sheet == "" {
			sheet = cfg.Export.Sheet
		}

		store := checkpoint.Open(cfg.Harvest.DataDir)
		ids, err := store.Buckets()
		if err != nil {
			return eris.Wrap(err, "export")
		}
		if len(ids) == 0 {
			return eris.Errorf("export: no bucket artifacts in %s; run harvest first", cfg.Harvest.DataDir)
		}

		buckets := make([]model.Bucket, 0, len(ids))
		records := 0
		for _, id := range ids {
			b := store.Load(id)
			records += len(b)
			buckets = append(buckets, b)
		}
		log.Info("buckets loaded", zap.Strings("buckets", ids), zap.Int("records", records))

		rows, columns := flatten.Flatten(buckets, flatten.Options{
			IdentityFields: cfg.Export.IdentityFields,
		})
		if err := export.WriteXLSX(output, sheet, columns, rows); err != nil {
			return err
		}

		log.Info("spreadsheet written",
			zap.String("output", output),
			zap.Int("rows", len(rows)),
			zap.Int("columns", len(columns)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("output", "", "spreadsheet path (default from config)")
	exportCmd.Flags().String("sheet", "", "sheet name (default from config)")
	rootCmd.AddCommand(exportCmd)
}
