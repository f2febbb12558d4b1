// Package extract turns one rendered notice page into a model.Record. Every
// sub-section is fault-isolated: a section the page lacks (or renders in a
// shape we cannot read) is omitted from the Record, never an error. Sections
// are located by heading text, not by position, so extra wrapper elements in
// the page markup do not break extraction.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/regharvest/fedresurs-cli/internal/model"
)

const (
	publisherHeading = "Публикатор"
	messageHeading   = "Сообщение"
	relatedHeading   = "Связанные сообщения"

	// RelatedField is the message-mapping key the related-notice reference
	// map is stored under.
	RelatedField = relatedHeading

	fallbackTableKey = "Таблица"
	maxTableKeyRunes = 36
)

// Extract parses a rendered notice page into a Record. It never fails: an
// unparseable document simply yields a Record with empty sections.
func Extract(url, pageHTML string) *model.Record {
	rec := &model.Record{URL: url}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		zap.L().Warn("unparseable page", zap.String("url", url), zap.Error(err))
		return rec
	}

	rec.Header = extractHeader(doc)
	rec.Publisher = extractPublisher(doc)

	msg := extractMessage(doc)
	if related := extractRelated(doc); len(related) > 0 {
		msg[RelatedField] = model.RefsValue(related)
	}
	if len(msg) > 0 {
		rec.Message = msg
	}

	return rec
}

func extractHeader(doc *goquery.Document) model.Header {
	return model.Header{
		Title:    textContent(doc.Find(".headertext").First()),
		Subtitle: textContent(doc.Find(".d-flex.align-items-center.header-item").First()),
	}
}

// extractPublisher reads the Публикатор block. All three sub-fields must
// resolve to non-empty text or the whole section is omitted; the numeric ids
// stay nil when the text is not a digit run.
func extractPublisher(doc *goquery.Document) *model.Publisher {
	section := doc.Find("information-page-item").FilterFunction(
		func(_ int, s *goquery.Selection) bool {
			return s.AttrOr("header", "") == publisherHeading
		}).First()
	if section.Length() == 0 {
		return nil
	}

	main := section.Find(".main").First()
	name := textContent(main.Find(".name span").First())
	inn := textContent(main.Find(".id-item.inn span").First())
	ogrn := textContent(main.Find(".id-item.ogrn span").First())

	if name == "" || inn == "" || ogrn == "" {
		return nil
	}

	return &model.Publisher{
		Name: name,
		INN:  parseID(inn),
		OGRN: parseID(ogrn),
	}
}

// extractMessage collects the key/value fields, sub-tables and repeated
// message components that follow the Сообщение heading. Later duplicates
// overwrite earlier ones, matching document order.
func extractMessage(doc *goquery.Document) map[string]model.Value {
	msg := make(map[string]model.Value)

	heading := findHeading(doc, func(text string) bool { return text == messageHeading })
	if heading == nil {
		return msg
	}

	heading.NextAll().Each(func(_ int, section *goquery.Selection) {
		collectInfoItems(section, func(key string, value string) {
			msg[key] = model.TextValue(value)
		})

		section.Find("table.message-table").Each(func(_ int, table *goquery.Selection) {
			rows := parseTable(table)
			if len(rows) == 0 {
				return
			}
			key := textContent(section.Find(".message-text-header").First())
			if key == "" {
				key = fallbackTableKey
			}
			msg[truncateRunes(key, maxTableKeyRunes)] = model.RowsValue(rows)
		})

		section.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.AttrOr("class", ""), "sfact-message")
		}).Each(func(_ int, component *goquery.Selection) {
			collectInfoItems(component, func(key string, value string) {
				msg[key] = model.TextValue(value)
			})
		})
	})

	return msg
}

// collectInfoItems emits the info-item key/value pairs under root. A pair is
// only emitted when both sides resolve to non-empty text.
func collectInfoItems(root *goquery.Selection, emit func(key, value string)) {
	root.Find("div.info-item").Each(func(_ int, item *goquery.Selection) {
		key := textContent(item.Find("div.info-item-name").First())
		value := textContent(item.Find("div.info-item-value").First())
		if key != "" && value != "" {
			emit(key, value)
		}
	})
}

// parseTable reads a message table row-wise, skipping the header row. The
// first cell labels the row; the second holds structured inner items; the
// third, when present, is a free-text description. Rows without any
// extractable data are dropped.
func parseTable(table *goquery.Selection) map[string]map[string]string {
	rows := make(map[string]map[string]string)

	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := textContent(cells.Eq(0))
		fields := make(map[string]string)

		cells.Eq(1).Find("div.td-inner-item").Each(func(_ int, item *goquery.Selection) {
			divs := item.ChildrenFiltered("div")
			if divs.Length() < 2 {
				return
			}
			name := textContent(divs.Eq(0))
			value := textContent(divs.Eq(1))
			if name != "" && value != "" {
				fields[name] = value
			}
		})

		if cells.Length() > 2 {
			if desc := textContent(cells.Eq(2)); desc != "" {
				fields["Описание"] = desc
			}
		}

		if label != "" && len(fields) > 0 {
			rows[label] = fields
		}
	})

	return rows
}

// extractRelated reads the Связанные сообщения paragraph into an id → title
// map. The id comes from the number/date column; the title from the link
// text, falling back to the current-message marker.
func extractRelated(doc *goquery.Document) map[string]string {
	heading := findHeading(doc, func(text string) bool { return strings.Contains(text, relatedHeading) })
	if heading == nil {
		return nil
	}

	block := heading.Closest("div.paragraph")
	if block.Length() == 0 {
		return nil
	}

	related := make(map[string]string)
	block.Find(".info-item").Each(func(_ int, item *goquery.Selection) {
		id := textContent(item.Find(".flex-shrink-0").First())
		title := textContent(item.Find("a").First())
		if title == "" {
			title = textContent(item.Find(".current-message").First())
		}
		if id != "" && title != "" {
			related[id] = title
		}
	})
	return related
}

// findHeading locates a paragraph-header whose trimmed text satisfies match,
// tolerating wrapper elements and stray whitespace.
func findHeading(doc *goquery.Document, match func(string) bool) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("div.paragraph-header").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if match(strings.TrimSpace(s.Text())) {
			found = s
			return false
		}
		return true
	})
	return found
}
