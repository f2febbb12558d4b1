package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/regharvest/fedresurs-cli/internal/backoff"
	"github.com/regharvest/fedresurs-cli/internal/checkpoint"
	"github.com/regharvest/fedresurs-cli/internal/model"
	"github.com/regharvest/fedresurs-cli/internal/pipeline"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Fetch and extract every discovered notice page",
	Long: `Group the discovered notice URLs by year, then fetch and extract
each page sequentially. Results are checkpointed to per-year JSON artifacts
with timestamped backups; a rerun skips everything already extracted, so an
interrupted harvest picks up where it stopped.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "harvest"))

		links, _ := cmd.Flags().GetString("links")
		force, _ := cmd.Flags().GetBool("force")
		retryTransient, _ := cmd.Flags().GetBool("retry-transient")
		show, _ := cmd.Flags().GetBool("show")
		every, _ := cmd.Flags().GetInt("every")
		if links == "" {
			links = cfg.Harvest.Links
		}
		if every <= 0 {
			every = cfg.Harvest.CheckpointEvery
		}

		months, err := readMonths(links)
		if err != nil {
			return eris.Wrap(err, "harvest")
		}

		buckets, empty := groupByYear(months)
		if len(empty) > 0 {
			log.Warn("months without discovered notices are ignored",
				zap.Int("count", len(empty)), zap.Strings("months", empty))
		}
		if len(buckets) == 0 {
			return eris.New("harvest: no discovered notice URLs; run discover first")
		}

		store, err := checkpoint.New(cfg.Harvest.DataDir, cfg.Harvest.BackupDir)
		if err != nil {
			return eris.Wrap(err, "harvest")
		}
		log.Info("checkpoint store ready",
			zap.String("data_dir", cfg.Harvest.DataDir),
			zap.String("backup_dir", store.BackupDir()),
		)

		browser, err := newBrowser(show)
		if err != nil {
			return eris.Wrap(err, "harvest: start browser")
		}
		defer browser.Close()

		p := pipeline.New(browser, store,
			rate.NewLimiter(rate.Limit(cfg.Fetch.PagesPerSecond), 1),
			pipeline.Config{
				CheckpointEvery: every,
				ForceRefresh:    force,
				RetryTransient:  retryTransient,
				Retry:           backoff.Config{Attempts: cfg.Fetch.MaxAttempts},
			})

		if _, err := p.Run(ctx, buckets); err != nil {
			return eris.Wrap(err, "harvest")
		}
		return nil
	},
}

func init() {
	harvestCmd.Flags().String("links", "", "links file path (default from config)")
	harvestCmd.Flags().Bool("force", false, "re-fetch everything, superseding existing buckets")
	harvestCmd.Flags().Bool("retry-transient", false, "re-fetch pages whose last attempt timed out")
	harvestCmd.Flags().Bool("show", false, "show the browser window (disable headless mode)")
	harvestCmd.Flags().Int("every", 0, "checkpoint after every N new records (default from config)")
	rootCmd.AddCommand(harvestCmd)
}

// groupByYear partitions the discovered notice URLs into yearly buckets,
// preserving input order within each, and reports months with nothing
// discovered.
func groupByYear(months []model.MonthQuery) (map[string][]string, []string) {
	buckets := make(map[string][]string)
	var empty []string
	for _, m := range months {
		if len(m.NoticeURLs) == 0 {
			empty = append(empty, m.Month)
			continue
		}
		buckets[m.Year()] = append(buckets[m.Year()], m.NoticeURLs...)
	}
	return buckets, empty
}
