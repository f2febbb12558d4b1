package planner

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestMonthQueries_Count(t *testing.T) {
	queries := MonthQueries("", month(2016, time.January), month(2025, time.June))
	assert.Len(t, queries, 114)
	assert.Equal(t, "2016-01", queries[0].Month)
	assert.Equal(t, "2025-06", queries[len(queries)-1].Month)
}

func TestMonthQueries_PeriodBounds(t *testing.T) {
	queries := MonthQueries("", month(2016, time.January), month(2016, time.January))
	require.Len(t, queries, 1)

	u := queries[0].URL
	assert.True(t, strings.HasPrefix(u, DefaultBaseURL))
	assert.Contains(t, u, "2016-01-01T00%3A00%3A00.000Z")
	assert.Contains(t, u, "2016-01-31T23%3A59%3A59.999Z")
	assert.True(t, strings.HasSuffix(u, "&limit=15&offset=0"))
}

func TestMonthQueries_FebruaryLeapYear(t *testing.T) {
	queries := MonthQueries("", month(2016, time.February), month(2016, time.February))
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0].URL, "2016-02-29T23%3A59%3A59.999Z")
}

func TestMonthQueries_DecemberRollover(t *testing.T) {
	queries := MonthQueries("", month(2016, time.December), month(2017, time.January))
	require.Len(t, queries, 2)
	assert.Equal(t, "2016-12", queries[0].Month)
	assert.Equal(t, "2017-01", queries[1].Month)
	assert.Contains(t, queries[0].URL, "2016-12-31T23%3A59%3A59.999Z")
}

func TestMonthQueries_CustomBase(t *testing.T) {
	queries := MonthQueries("https://example.com/list?period=", month(2020, time.May), month(2020, time.May))
	require.Len(t, queries, 1)
	assert.True(t, strings.HasPrefix(queries[0].URL, "https://example.com/list?period="))
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2021-07")
	require.NoError(t, err)
	assert.Equal(t, 2021, got.Year())
	assert.Equal(t, time.July, got.Month())

	_, err = ParseMonth("July 2021")
	assert.Error(t, err)
}
