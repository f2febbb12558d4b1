// Package planner generates the ordered per-month listing URLs that seed
// discovery. The registry filters its listing by a JSON period parameter
// covering one calendar month in UTC.
package planner

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/regharvest/fedresurs-cli/internal/model"
)

// DefaultBaseURL is the leasing-encumbrance listing endpoint.
const DefaultBaseURL = "https://fedresurs.ru/encumbrances?group=Leasing&period="

// MonthQueries returns one MonthQuery per calendar month from start through
// end inclusive, in ascending order. Months are keyed YYYY-MM.
func MonthQueries(baseURL string, start, end time.Time) []model.MonthQuery {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var queries []model.MonthQuery
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	for !cur.After(last) {
		queries = append(queries, model.MonthQuery{
			Month: cur.Format("2006-01"),
			URL:   monthURL(baseURL, cur),
		})
		cur = cur.AddDate(0, 1, 0)
	}
	return queries
}

// ParseMonth parses a YYYY-MM bound from configuration.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "planner: parse month %q", s)
	}
	return t, nil
}

// monthURL builds the listing URL whose period spans the whole month: the
// first day at 00:00:00.000Z through the last day at 23:59:59.999Z.
func monthURL(baseURL string, first time.Time) string {
	lastDay := first.AddDate(0, 1, -1)

	period := fmt.Sprintf(`{"beginJsDate":"%sT00:00:00.000Z","endJsDate":"%sT23:59:59.999Z"}`,
		first.Format("2006-01-02"), lastDay.Format("2006-01-02"))

	return baseURL + url.QueryEscape(period) + "&limit=15&offset=0"
}
