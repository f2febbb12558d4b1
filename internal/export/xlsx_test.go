package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/regharvest/fedresurs-cli/internal/flatten"
)

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	columns := []string{flatten.ColURL, flatten.ColTitle, "Договор"}
	rows := []flatten.FlatRow{
		{
			flatten.ColURL:   "https://fedresurs.ru/sfactmessage/abc",
			flatten.ColTitle: "Сообщение о заключении договора",
			"Договор":        "№ 42",
		},
		{
			flatten.ColURL:   "не ссылка",
			flatten.ColTitle: "",
			"Договор":        "",
		},
	}

	require.NoError(t, WriteXLSX(path, "Сообщения", columns, rows))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := file.Sheet["Сообщения"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	header := sheet.Rows[0]
	require.Len(t, header.Cells, 3)
	assert.Equal(t, "url", header.Cells[0].String())
	assert.Equal(t, "Основной заголовок", header.Cells[1].String())
	assert.Equal(t, "Договор", header.Cells[2].String())

	linked := sheet.Rows[1].Cells[0]
	assert.Equal(t,
		`HYPERLINK("https://fedresurs.ru/sfactmessage/abc","https://fedresurs.ru/sfactmessage/abc")`,
		linked.Formula())

	assert.Equal(t, "Сообщение о заключении договора", sheet.Rows[1].Cells[1].String())

	plain := sheet.Rows[2].Cells[0]
	assert.Empty(t, plain.Formula())
	assert.Equal(t, "не ссылка", plain.String())
}

func TestWriteXLSX_DefaultSheetName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, "", []string{"url"}, nil))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	_, ok := file.Sheet["Sheet1"]
	assert.True(t, ok)
}

func TestIsAbsoluteHTTP(t *testing.T) {
	assert.True(t, isAbsoluteHTTP("https://fedresurs.ru/sfactmessage/abc"))
	assert.True(t, isAbsoluteHTTP("http://example.com/x"))
	assert.False(t, isAbsoluteHTTP("/sfactmessage/abc"))
	assert.False(t, isAbsoluteHTTP("ftp://example.com/x"))
	assert.False(t, isAbsoluteHTTP("просто текст"))
	assert.False(t, isAbsoluteHTTP(""))
}

func TestHyperlinkFormula_EscapesQuotes(t *testing.T) {
	assert.Equal(t, `HYPERLINK("https://x/a""b","https://x/a""b")`,
		hyperlinkFormula(`https://x/a"b`))
}
