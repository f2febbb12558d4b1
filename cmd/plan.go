package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/regharvest/fedresurs-cli/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate the monthly listing query URLs",
	Long: `Generate one registry listing URL per calendar month between the
configured start and end months and write them to the plan file consumed by
discover.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := zap.L().With(zap.String("command", "plan"))

		startStr, _ := cmd.Flags().GetString("start")
		endStr, _ := cmd.Flags().GetString("end")
		output, _ := cmd.Flags().GetString("output")
		if startStr == "" {
			startStr = cfg.Plan.StartMonth
		}
		if endStr == "" {
			endStr = cfg.Plan.EndMonth
		}
		if output == "" {
			output = cfg.Plan.Output
		}

		start, err := planner.ParseMonth(startStr)
		if err != nil {
			return err
		}
		end, err := planner.ParseMonth(endStr)
		if err != nil {
			return err
		}
		if end.Before(start) {
			return eris.Errorf("plan: end month %s precedes start month %s", endStr, startStr)
		}

		months := planner.MonthQueries(cfg.Plan.BaseURL, start, end)
		if err := writeMonths(output, months); err != nil {
			return eris.Wrap(err, "plan")
		}

		log.Info("plan written",
			zap.String("output", output),
			zap.Int("months", len(months)),
			zap.String("first", months[0].Month),
			zap.String("last", months[len(months)-1].Month),
		)
		return nil
	},
}

func init() {
	planCmd.Flags().String("start", "", "first month, YYYY-MM (default from config)")
	planCmd.Flags().String("end", "", "last month, YYYY-MM (default from config)")
	planCmd.Flags().String("output", "", "plan file path (default from config)")
	rootCmd.AddCommand(planCmd)
}
