package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/regharvest/fedresurs-cli/internal/discovery"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Collect notice detail URLs for each planned month",
	Long: `Open each month's listing page in a headless browser, exhaust its
"load more" pagination, and collect the notice detail URLs. The links file
is rewritten after every month, so an interrupted discover resumes where it
stopped; months that already carry notice URLs are skipped unless --force.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "discover"))

		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		force, _ := cmd.Flags().GetBool("force")
		show, _ := cmd.Flags().GetBool("show")
		if input == "" {
			input = cfg.Plan.Output
		}
		if output == "" {
			output = cfg.Harvest.Links
		}

		months, err := readMonths(input)
		if err != nil {
			return eris.Wrap(err, "discover")
		}

		// Resume from a previous discover run when the output already holds
		// notice URLs for some months.
		if !force {
			if prev, err := readMonths(output); err == nil {
				byMonth := make(map[string][]string, len(prev))
				for _, m := range prev {
					byMonth[m.Month] = m.NoticeURLs
				}
				for i := range months {
					months[i].NoticeURLs = byMonth[months[i].Month]
				}
			} else if !os.IsNotExist(eris.Cause(err)) {
				log.Warn("unreadable links file, rediscovering all months", zap.Error(err))
			}
		}

		browser, err := newBrowser(show)
		if err != nil {
			return eris.Wrap(err, "discover: start browser")
		}
		defer browser.Close()

		limiter := rate.NewLimiter(rate.Limit(cfg.Fetch.PagesPerSecond), 1)

		var done, skipped, failed int
		for i := range months {
			if ctx.Err() != nil {
				break
			}
			m := &months[i]

			if len(m.NoticeURLs) > 0 && !force {
				skipped++
				log.Debug("month already discovered", zap.String("month", m.Month))
				continue
			}

			if err := limiter.Wait(ctx); err != nil {
				break
			}

			page, err := browser.Fetch(ctx, m.URL)
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				failed++
				log.Warn("listing fetch failed, month left for next run",
					zap.String("month", m.Month), zap.Error(err))
				continue
			}

			urls, err := discovery.NoticeURLs(page.HTML, m.URL)
			if err != nil {
				failed++
				log.Warn("listing parse failed", zap.String("month", m.Month), zap.Error(err))
				continue
			}

			m.NoticeURLs = urls
			done++
			log.Info("month discovered",
				zap.String("month", m.Month), zap.Int("notices", len(urls)))

			if err := writeMonths(output, months); err != nil {
				log.Warn("links checkpoint failed", zap.Error(err))
			}
		}

		if err := writeMonths(output, months); err != nil {
			return eris.Wrap(err, "discover: write links")
		}

		log.Info("discover complete",
			zap.Int("discovered", done),
			zap.Int("skipped", skipped),
			zap.Int("failed", failed),
		)
		return ctx.Err()
	},
}

func init() {
	discoverCmd.Flags().String("input", "", "plan file path (default from config)")
	discoverCmd.Flags().String("output", "", "links file path (default from config)")
	discoverCmd.Flags().Bool("force", false, "rediscover months that already have notice URLs")
	discoverCmd.Flags().Bool("show", false, "show the browser window (disable headless mode)")
	rootCmd.AddCommand(discoverCmd)
}
