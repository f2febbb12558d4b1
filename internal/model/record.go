// Package model defines the data types shared across the harvest pipeline:
// the extracted notice Record, the semi-structured Value union, and the
// per-year Bucket artifact.
package model

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
)

// FailureKind classifies why a notice page could not be fetched.
type FailureKind string

const (
	FailTimeout    FailureKind = "timeout"
	FailNavigation FailureKind = "navigation_error"
	FailUnexpected FailureKind = "unexpected_error"
)

// Failure marks a Record whose page could not be fetched at all. A Record
// carries either a Failure or extracted content, never both.
type Failure struct {
	Kind FailureKind `json:"kind"`
}

// Header holds the notice page headline block.
type Header struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Publisher identifies the organization that published the notice. INN and
// OGRN stay nil when the source text is not a pure digit run.
type Publisher struct {
	Name string `json:"name"`
	INN  *int64 `json:"inn"`
	OGRN *int64 `json:"ogrn"`
}

// Record is the extraction result for one notice page, keyed in its Bucket
// by URL. Missing sections are omitted rather than stored as nulls.
type Record struct {
	URL       string           `json:"url"`
	Header    Header           `json:"header"`
	Publisher *Publisher       `json:"publisher,omitempty"`
	Message   map[string]Value `json:"message,omitempty"`
	Error     *Failure         `json:"error,omitempty"`
}

// Failed reports whether the Record is error-tagged.
func (r *Record) Failed() bool { return r.Error != nil }

// ErrorRecord builds the Record persisted for a page that could not be
// fetched, so the URL counts as processed on later runs.
func ErrorRecord(url string, kind FailureKind) *Record {
	return &Record{URL: url, Error: &Failure{Kind: kind}}
}

// Bucket is one year's Records keyed by source URL. It is persisted as a
// single JSON artifact and grows monotonically across runs.
type Bucket map[string]*Record

// URLs returns the bucket keys in ascending order.
func (b Bucket) URLs() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MonthQuery links one calendar month to its registry listing URL and, after
// discovery, to the notice detail URLs found inside it.
type MonthQuery struct {
	Month      string   `json:"month"`
	URL        string   `json:"url"`
	NoticeURLs []string `json:"notice_urls,omitempty"`
}

// Year returns the YYYY bucket id for the month ("2016-03" -> "2016").
func (m MonthQuery) Year() string {
	if len(m.Month) < 4 {
		return m.Month
	}
	return m.Month[:4]
}

// ValueKind discriminates the semi-structured Value union.
type ValueKind int

const (
	// KindText is a scalar string field.
	KindText ValueKind = iota
	// KindRows is a named sub-table: row label -> field name -> field value.
	KindRows
	// KindRefs maps a related-notice id to its title.
	KindRefs
)

// Value is one field of a notice message. The registry renders fields as
// plain text, as small tables, or as lists of links to related notices; the
// union keeps all three without widening the persisted artifact shape.
type Value struct {
	Kind ValueKind
	Text string
	Rows map[string]map[string]string
	Refs map[string]string
}

// TextValue wraps a scalar string.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// RowsValue wraps a parsed sub-table.
func RowsValue(rows map[string]map[string]string) Value {
	return Value{Kind: KindRows, Rows: rows}
}

// RefsValue wraps a related-notice reference map.
func RefsValue(refs map[string]string) Value {
	return Value{Kind: KindRefs, Refs: refs}
}

// MarshalJSON renders the union in the artifact's natural shape: a string,
// an object of objects, or an object of strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindRows:
		return json.Marshal(v.Rows)
	case KindRefs:
		return json.Marshal(v.Refs)
	default:
		return json.Marshal(v.Text)
	}
}

// UnmarshalJSON infers the union arm from the JSON shape.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = TextValue(s)
		return nil
	}

	// An object of objects is a sub-table; an object of strings is a
	// reference map. Empty objects decode as empty references.
	var rows map[string]map[string]string
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
		*v = RowsValue(rows)
		return nil
	}

	var refs map[string]string
	if err := json.Unmarshal(data, &refs); err != nil {
		return eris.Wrap(err, "model: value is neither string, table nor reference map")
	}
	*v = RefsValue(refs)
	return nil
}

// SortedLabels orders sub-table row labels (or reference ids) numerically
// when they are digit runs, lexicographically otherwise. Row labels on the
// registry are 1-based positions, so numeric order restores document order.
func SortedLabels[V any](m map[string]V) []string {
	labels := make([]string, 0, len(m))
	for k := range m {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, aerr := strconv.Atoi(labels[i])
		b, berr := strconv.Atoi(labels[j])
		if aerr == nil && berr == nil {
			return a < b
		}
		if (aerr == nil) != (berr == nil) {
			return aerr == nil
		}
		return labels[i] < labels[j]
	})
	return labels
}
