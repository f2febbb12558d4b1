// Package export renders flattened rows to a spreadsheet.
package export

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/regharvest/fedresurs-cli/internal/flatten"
)

// WriteXLSX writes a header row of columns followed by one row per FlatRow,
// in input order. Cells in the url column become clickable HYPERLINK
// formulas when the value is a well-formed absolute http(s) URL.
func WriteXLSX(path, sheetName string, columns []string, rows []flatten.FlatRow) error {
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %q", sheetName)
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().SetString(col)
	}

	for _, row := range rows {
		out := sheet.AddRow()
		for _, col := range columns {
			cell := out.AddCell()
			value := row[col]
			if col == flatten.ColURL && isAbsoluteHTTP(value) {
				cell.SetFormula(hyperlinkFormula(value))
			} else {
				cell.SetString(value)
			}
		}
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func isAbsoluteHTTP(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func hyperlinkFormula(target string) string {
	escaped := strings.ReplaceAll(target, `"`, `""`)
	return fmt.Sprintf(`HYPERLINK("%s","%s")`, escaped, escaped)
}
