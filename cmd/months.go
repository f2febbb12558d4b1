package main

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/regharvest/fedresurs-cli/internal/fetch"
	"github.com/regharvest/fedresurs-cli/internal/model"
)

// readMonths loads a month-query file written by plan or discover.
func readMonths(path string) ([]model.MonthQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	var months []model.MonthQuery
	if err := json.Unmarshal(data, &months); err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}
	return months, nil
}

// writeMonths persists a month-query file, UTF-8 and unescaped so the
// Cyrillic field content stays readable.
func writeMonths(path string, months []model.MonthQuery) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(months); err != nil {
		return eris.Wrapf(err, "encode %s", path)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

// newBrowser builds the chromedp fetcher from configuration. show forces a
// visible browser window regardless of config.
func newBrowser(show bool) (*fetch.Browser, error) {
	return fetch.NewBrowser(fetch.BrowserConfig{
		Headless:     cfg.Fetch.Headless && !show,
		UserAgent:    cfg.Fetch.UserAgent,
		NavTimeout:   time.Duration(cfg.Fetch.NavTimeoutSecs) * time.Second,
		LoadMoreWait: time.Duration(cfg.Fetch.LoadMoreWaitMS) * time.Millisecond,
		MaxLoadMore:  cfg.Fetch.MaxLoadMore,
		RecycleEvery: cfg.Fetch.RecycleEvery,
	})
}
