// Package flatten projects the heterogeneous Record population onto one
// tabular schema: fixed priority columns first, then the lexicographically
// sorted union of every other field name seen across all rows. The transform
// is deterministic and idempotent; flattening the same population twice
// yields identical rows and column order.
package flatten

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/regharvest/fedresurs-cli/internal/extract"
	"github.com/regharvest/fedresurs-cli/internal/model"
)

// Column names of the fixed leading schema.
const (
	ColURL        = "url"
	ColTitle      = "Основной заголовок"
	ColSubtitle   = "Подзаголовок"
	ColINN        = "ИНН"
	ColOGRN       = "ОГРН"
	ColIdentifier = "Идентификатор"
	ColClassifier = "Классификатор"
	ColDetails    = "Описание"
	ColRelated    = "Связанные сообщения"
)

// SubjectField is the message sub-table exploded into the dedicated
// Идентификатор/Классификатор/Описание columns.
const SubjectField = "Предметы финансовой аренды (лизинга)"

// noData fills a subject-item cell whose field is absent, so the №-indexed
// lines of the three columns stay aligned row for row.
const noData = "нет данных"

const publisherSuffix = " (Публикатор)"

var fixedColumns = []string{
	ColURL, ColTitle, ColSubtitle, ColINN, ColOGRN,
	ColIdentifier, ColClassifier, ColDetails, ColRelated,
}

// FlatRow is the tabular projection of one Record.
type FlatRow map[string]string

// Options configures field-specific derivations.
type Options struct {
	// IdentityFields are the message fields searched, in order, for the
	// composite party-identity block the ИНН/ОГРН columns derive from.
	IdentityFields []string
}

func (o Options) withDefaults() Options {
	if len(o.IdentityFields) == 0 {
		o.IdentityFields = []string{"Лизингополучатели", "Лизингополучатель"}
	}
	return o
}

// Flatten converts the Bucket sequence into rows and the full column order.
// Buckets contribute rows in the given order, URLs sorted within each; every
// row carries exactly the returned columns, empty cells included.
func Flatten(buckets []model.Bucket, opts Options) ([]FlatRow, []string) {
	opts = opts.withDefaults()

	var rows []FlatRow
	for _, bucket := range buckets {
		for _, url := range bucket.URLs() {
			rows = append(rows, rowFor(bucket[url], opts))
		}
	}

	columns := ColumnOrder(rows)
	for _, row := range rows {
		for _, col := range columns {
			if _, ok := row[col]; !ok {
				row[col] = ""
			}
		}
	}
	return rows, columns
}

// ColumnOrder returns the fixed priority columns observed in the population,
// in their defined order, followed by all remaining field names sorted
// lexicographically.
func ColumnOrder(rows []FlatRow) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			seen[col] = true
		}
	}

	var columns []string
	for _, col := range fixedColumns {
		if seen[col] {
			columns = append(columns, col)
			delete(seen, col)
		}
	}

	rest := make([]string, 0, len(seen))
	for col := range seen {
		rest = append(rest, col)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

func rowFor(rec *model.Record, opts Options) FlatRow {
	row := FlatRow{ColURL: rec.URL}
	if rec.Failed() {
		return row
	}

	row[ColTitle] = rec.Header.Title
	row[ColSubtitle] = rec.Header.Subtitle

	if pub := rec.Publisher; pub != nil {
		row["name"+publisherSuffix] = pub.Name
		if pub.INN != nil {
			row[ColINN+publisherSuffix] = strconv.FormatInt(*pub.INN, 10)
		}
		if pub.OGRN != nil {
			row[ColOGRN+publisherSuffix] = strconv.FormatInt(*pub.OGRN, 10)
		}
	}

	for field, value := range rec.Message {
		switch {
		case field == SubjectField && value.Kind == model.KindRows:
			explodeSubjects(row, value.Rows)
		case field == extract.RelatedField && value.Kind == model.KindRefs:
			row[ColRelated] = serializeRefs(value.Refs)
		case value.Kind == model.KindRows:
			row[field] = serializeRows(value.Rows)
		case value.Kind == model.KindRefs:
			row[field] = serializeRefs(value.Refs)
		default:
			row[field] = value.Text
		}
	}

	deriveIdentityColumns(row, rec, opts)
	return row
}

// deriveIdentityColumns decomposes the first configured party field present
// into the ИНН/ОГРН columns. Absent labels or non-digit values leave the
// columns unset.
func deriveIdentityColumns(row FlatRow, rec *model.Record, opts Options) {
	for _, field := range opts.IdentityFields {
		value, ok := rec.Message[field]
		if !ok || value.Kind != model.KindText {
			continue
		}
		inn, ogrn := DeriveIdentity(value.Text)
		if inn != "" {
			row[ColINN] = inn
		}
		if ogrn != "" {
			row[ColOGRN] = ogrn
		}
		return
	}
}

// explodeSubjects renders the subject-items table into the three dedicated
// columns, one №-indexed line per row in document order.
func explodeSubjects(row FlatRow, items map[string]map[string]string) {
	labels := model.SortedLabels(items)

	var ids, classes, details []string
	for i, label := range labels {
		item := items[label]
		ids = append(ids, indexedLine(i, item[ColIdentifier]))
		classes = append(classes, indexedLine(i, item[ColClassifier]))
		details = append(details, indexedLine(i, item[ColDetails]))
	}

	row[ColIdentifier] = strings.Join(ids, "\n")
	row[ColClassifier] = strings.Join(classes, "\n")
	row[ColDetails] = strings.Join(details, "\n")
}

// serializeRows renders a generic sub-table as №-indexed lines with the
// row's fields sorted by name.
func serializeRows(rows map[string]map[string]string) string {
	labels := model.SortedLabels(rows)

	lines := make([]string, 0, len(labels))
	for i, label := range labels {
		fields := rows[label]
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		pairs := make([]string, 0, len(names))
		for _, name := range names {
			pairs = append(pairs, name+": "+fields[name])
		}
		lines = append(lines, indexedLine(i, strings.Join(pairs, "; ")))
	}
	return strings.Join(lines, "\n")
}

// serializeRefs renders a reference map as `id: "title"` lines.
func serializeRefs(refs map[string]string) string {
	ids := model.SortedLabels(refs)
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("%s: %q", id, refs[id]))
	}
	return strings.Join(lines, "\n")
}

func indexedLine(i int, value string) string {
	if value == "" {
		value = noData
	}
	return fmt.Sprintf("№%d. %s", i+1, value)
}
