package dataset

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var scoreRows = []string{
	"Redação,Entrevista,Total",
	"45,48,93",
	"42.5,40,82.5",
	"30,35,65",
	"20,22.5,42.5",
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadCSV(t *testing.T) {
	p := writeFile(t, "notas.csv", strings.Join(scoreRows, "\n"))
	tbl, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Name() != "notas.csv" {
		t.Fatalf("name = %q", tbl.Name())
	}
	if tbl.Len() != 4 {
		t.Fatalf("rows = %d, want 4", tbl.Len())
	}
	if got := tbl.Row(1); got[EssayCol] != 42.5 || got[InterviewCol] != 40 || got[TotalCol] != 82.5 {
		t.Fatalf("row 1 = %v", got)
	}
	cols := tbl.Columns()
	if cols[0] != "Redação" || cols[1] != "Entrevista" || cols[2] != "Total" {
		t.Fatalf("columns = %v", cols)
	}
}

func TestLoadCSVReordersColumnsAndNormalizesHeaders(t *testing.T) {
	// "Redação" spelled with a combining cedilla and tilde (NFD), mixed case.
	content := "TOTAL;Redac\u0327a\u0303o;entrevista\n" +
		"93;45;48\n" +
		"82,5;42,5;40\n"
	p := writeFile(t, "notas.csv", content)
	opt := DefaultOptions()
	opt.Delimiter = ';'
	tbl, err := Load(p, opt)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := tbl.Row(1); got[EssayCol] != 42.5 || got[InterviewCol] != 40 || got[TotalCol] != 82.5 {
		t.Fatalf("row 1 = %v", got)
	}
}

func TestLoadTSV(t *testing.T) {
	content := strings.ReplaceAll(strings.Join(scoreRows, "\n"), ",", "\t")
	p := writeFile(t, "notas.tsv", content)
	tbl, err := Load(p, DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 4 {
		t.Fatalf("rows = %d", tbl.Len())
	}
}

func TestLoadRejectsMalformedCells(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
		row     int
	}{
		{"non-numeric", "Redação,Entrevista,Total\n45,abc,93\n", ErrNonNumeric, 1},
		{"out of range", "Redação,Entrevista,Total\n45,48,93\n51,10,61\n", ErrOutOfRange, 2},
		{"negative", "Redação,Entrevista,Total\n-1,10,9\n", ErrOutOfRange, 1},
		{"blank", "Redação,Entrevista,Total\n45,,93\n", ErrBlankCell, 1},
		{"short row", "Redação,Entrevista,Total\n45,48\n", ErrBlankCell, 1},
		{"nan", "Redação,Entrevista,Total\nNaN,48,93\n", ErrNonNumeric, 1},
		{"missing column", "Redação,Total\n45,93\n", ErrMissingColumn, 0},
		{"extra column", "Nome,Redação,Entrevista,Total\nAna,45,48,93\n", ErrUnexpectedColumn, 0},
		{"duplicate column", "Redação,Redação,Entrevista,Total\n1,1,1,2\n", ErrUnexpectedColumn, 0},
		{"header only", "Redação,Entrevista,Total\n", ErrEmptyTable, 0},
		{"empty file", "", ErrEmptyTable, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := writeFile(t, "bad.csv", tc.content)
			tbl, err := Load(p, DefaultOptions())
			if err == nil {
				t.Fatalf("expected error, got table with %d rows", tbl.Len())
			}
			if tbl != nil {
				t.Fatalf("partial table returned alongside error")
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("err %T is not *LoadError", err)
			}
			if le.Row != tc.row {
				t.Fatalf("row = %d, want %d", le.Row, tc.row)
			}
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	p := writeFile(t, "notas.json", "{}")
	_, err := Load(p, DefaultOptions())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		in   string
		dec  rune
		want float64
		ok   bool
	}{
		{"7.5", 0, 7.5, true},
		{"7,5", 0, 7.5, true},
		{" 12 ", 0, 12, true},
		{"7,5", ',', 7.5, true},
		{"7.5", ',', 0, false},
		{"7,5", '.', 0, false},
		{"1,000.5", 0, 0, false},
		{"Inf", 0, 0, false},
		{"x", 0, 0, false},
	}
	for _, tc := range cases {
		got, ok := parseNumeric(tc.in, tc.dec)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("parseNumeric(%q, %q) = %v, %v; want %v, %v", tc.in, tc.dec, got, ok, tc.want, tc.ok)
		}
	}
}

// writeXLSX assembles a minimal workbook whose single sheet holds rows. The
// first row goes through the shared-strings table, the rest are numeric cells.
func writeXLSX(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()
	return writeWorkbook(t, `<sheet name="Resumo" sheetId="1" r:id="rId1"/><sheet name="`+sheetName+`" sheetId="2" r:id="rId2"/>`, rows)
}

// writeWorkbook is writeXLSX with the <sheets> entries supplied verbatim.
// rId1 is the one-cell summary sheet and rId2 holds rows.
func writeWorkbook(t *testing.T, sheetEntries string, rows [][]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "notas.xlsx")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create xlsx: %v", err)
	}
	zw := zip.NewWriter(f)
	put := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	put("xl/workbook.xml", `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets>`+sheetEntries+`</sheets></workbook>`)
	put("xl/_rels/workbook.xml.rels", `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Target="/xl/worksheets/sheet2.xml"/>
</Relationships>`)

	var sst, sheet strings.Builder
	sst.WriteString(`<?xml version="1.0" encoding="UTF-8"?><sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`)
	sheet.WriteString(`<?xml version="1.0" encoding="UTF-8"?><worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
	for i, row := range rows {
		sheet.WriteString(fmt.Sprintf(`<row r="%d">`, i+1))
		for j, v := range row {
			ref := fmt.Sprintf("%c%d", 'A'+j, i+1)
			if i == 0 {
				sheet.WriteString(fmt.Sprintf(`<c r="%s" t="s"><v>%d</v></c>`, ref, j))
				sst.WriteString("<si><t>" + v + "</t></si>")
				continue
			}
			sheet.WriteString(fmt.Sprintf(`<c r="%s"><v>%s</v></c>`, ref, v))
		}
		sheet.WriteString(`</row>`)
	}
	sheet.WriteString(`</sheetData></worksheet>`)
	sst.WriteString(`</sst>`)
	put("xl/sharedStrings.xml", sst.String())
	put("xl/worksheets/sheet1.xml", `<worksheet><sheetData><row r="1"><c r="A1" t="inlineStr"><is><t>resumo</t></is></c></row></sheetData></worksheet>`)
	put("xl/worksheets/sheet2.xml", sheet.String())
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
	return p
}

func TestLoadXLSXBySheetNameAndIndex(t *testing.T) {
	p := writeXLSX(t, "Notas", [][]string{
		{"Redação", "Entrevista", "Total"},
		{"45", "48", "93"},
		{"42.5", "40", "82.5"},
		{"30", "35", "65"},
	})

	opt := DefaultOptions()
	opt.SheetName = "notas"
	byName, err := Load(p, opt)
	if err != nil {
		t.Fatalf("Load by name: %v", err)
	}
	if byName.Len() != 3 {
		t.Fatalf("rows = %d, want 3", byName.Len())
	}
	if got := byName.Row(1); got[EssayCol] != 42.5 || got[TotalCol] != 82.5 {
		t.Fatalf("row 1 = %v", got)
	}

	opt = DefaultOptions()
	opt.SheetIndex = 2
	byIndex, err := Load(p, opt)
	if err != nil {
		t.Fatalf("Load by index: %v", err)
	}
	if byIndex.Len() != 3 {
		t.Fatalf("rows = %d, want 3", byIndex.Len())
	}

	// Sheet 1 holds a single text cell and must not pass as a score table.
	opt = DefaultOptions()
	if _, err := Load(p, opt); err == nil {
		t.Fatalf("expected schema error for sheet 1")
	}

	opt.SheetName = "Missing"
	if _, err := Load(p, opt); err == nil || !strings.Contains(err.Error(), "available sheets: Resumo, Notas") {
		t.Fatalf("err = %v, want available sheets listing", err)
	}
}

func TestSheets(t *testing.T) {
	p := writeXLSX(t, "Notas", [][]string{{"Redação", "Entrevista", "Total"}})
	got, err := Sheets(p)
	if err != nil {
		t.Fatalf("Sheets: %v", err)
	}
	if len(got) != 2 || got[0] != "Resumo" || got[1] != "Notas" {
		t.Fatalf("sheets = %v", got)
	}
	if _, err := Sheets(filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadXLSXSheetIndexFollowsWorkbookOrder(t *testing.T) {
	// The score sheet is listed first but carries a higher sheetId, as after
	// reordering tabs in a spreadsheet editor.
	p := writeWorkbook(t, `<sheet name="Notas" sheetId="7" r:id="rId2"/><sheet name="Resumo" sheetId="1" r:id="rId1"/>`, [][]string{
		{"Redação", "Entrevista", "Total"},
		{"45", "48", "93"},
		{"30", "35", "65"},
	})
	names, err := Sheets(p)
	if err != nil || len(names) != 2 || names[0] != "Notas" {
		t.Fatalf("Sheets = %v, %v", names, err)
	}

	opt := DefaultOptions()
	opt.SheetIndex = 1
	tbl, err := Load(p, opt)
	if err != nil {
		t.Fatalf("Load index 1: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d, want 2", tbl.Len())
	}

	opt.SheetIndex = 2
	if _, err := Load(p, opt); !errors.Is(err, ErrUnexpectedColumn) {
		t.Fatalf("index 2 err = %v, want the summary sheet's schema error", err)
	}

	opt.SheetIndex = 3
	if _, err := Load(p, opt); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("index 3 err = %v, want out of range", err)
	}
}

func TestSheetRowValues(t *testing.T) {
	data := []byte(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>1</v></c><c r="C1" t="inlineStr"><is><r><t>To</t></r><r><t>tal</t></r></is></c></row>
<row r="2"><c><v>4.5</v></c><c r="AB2" t="str"><v>x</v></c></row>
</sheetData></worksheet>`)
	var ws worksheet
	if err := xml.Unmarshal(data, &ws); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	shared := []string{"Redação", "Entrevista"}
	head := ws.Rows[0].values(shared)
	if len(head) != 3 || head[0] != "Entrevista" || head[1] != "" || head[2] != "Total" {
		t.Fatalf("header = %q", head)
	}
	second := ws.Rows[1].values(shared)
	if len(second) != 28 || second[0] != "4.5" || second[27] != "x" {
		t.Fatalf("row 2 = %q (len %d)", second, len(second))
	}

	for ref, want := range map[string]int{"A1": 0, "Z9": 25, "AA10": 26, "ab2": 27} {
		if got, ok := refColumn(ref); !ok || got != want {
			t.Errorf("refColumn(%q) = %d, %v; want %d", ref, got, ok, want)
		}
	}
	if _, ok := refColumn("12"); ok {
		t.Errorf("refColumn without letters should fail")
	}
}

func TestLoadXLSXRejectsOutOfRange(t *testing.T) {
	p := writeXLSX(t, "Notas", [][]string{
		{"Redação", "Entrevista", "Total"},
		{"45", "48", "93"},
		{"45", "55", "100"},
	})
	opt := DefaultOptions()
	opt.SheetIndex = 2
	_, err := Load(p, opt)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.input); got != tt.expected {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
