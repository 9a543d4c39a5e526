package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Load reads the selected sheet. SheetIndex is the 1-based position in
// workbook order, the numbering Sheets uses; <= 0 means the first sheet.
func (xlsxLoader) Load(path string, opt Options) (*Table, error) {
	name := filepath.Base(path)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("read xlsx: %w", err)}
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("open xlsx: %w", err)}
	}
	sheets := parseWorkbook(readZipFile(zr, "xl/workbook.xml"))
	rels := parseRelationships(readZipFile(zr, "xl/_rels/workbook.xml.rels"))
	target, err := resolveSheet(sheets, rels, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}
	sheetXML := readZipFile(zr, target)
	if sheetXML == nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("sheet part %s not found", target)}
	}
	shared := parseSharedStrings(readZipFile(zr, "xl/sharedStrings.xml"))

	var ws worksheet
	if err := xml.Unmarshal(sheetXML, &ws); err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("parse sheet %s: %w", target, err)}
	}
	if len(ws.Rows) == 0 {
		return nil, &LoadError{Path: name, Err: ErrEmptyTable}
	}
	// Cell values in the sheet XML always use '.'; shared strings may not.
	opt.DecimalSeparator = 0
	tb, err := newTableBuilder(name, ws.Rows[0].values(shared), opt)
	if err != nil {
		return nil, err
	}
	row := 0
	for _, r := range ws.Rows[1:] {
		rec := r.values(shared)
		// Formatted-but-empty rows are common in spreadsheets.
		if isBlankRecord(rec) {
			continue
		}
		row++
		if err := tb.add(row, rec); err != nil {
			return nil, err
		}
	}
	return tb.table()
}

// Sheets lists the sheet names of an XLSX workbook in workbook order.
func Sheets(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()
	sheets := parseWorkbook(readZipFile(&zr.Reader, "xl/workbook.xml"))
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	return names, nil
}

func resolveSheet(sheets []wbSheet, rels map[string]string, sheetName string, sheetIndex int) (string, error) {
	if sheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, sheetName) {
				if rel, ok := rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
				break
			}
		}
		available := make([]string, len(sheets))
		for i, s := range sheets {
			available[i] = s.Name
		}
		return "", fmt.Errorf("sheet '%s' not found; available sheets: %s", sheetName, strings.Join(available, ", "))
	}
	idx := sheetIndex
	if idx <= 0 {
		idx = 1
	}
	// The index is the sheet's position in the workbook, as Sheets lists it.
	if len(sheets) == 0 {
		return fmt.Sprintf("xl/worksheets/sheet%d.xml", idx), nil
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range; workbook has %d sheets", idx, len(sheets))
	}
	s := sheets[idx-1]
	rel, ok := rels[s.RID]
	if !ok {
		return "", fmt.Errorf("sheet '%s' has no worksheet part", s.Name)
	}
	return normalizeRelPath(rel), nil
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type wbSheet struct {
	Name string
	RID  string
}

// parseWorkbook extracts sheet entries with names and relationship ids.
func parseWorkbook(data []byte) []wbSheet {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var sheets []wbSheet
	for {
		tok, err := dec.Token()
		if err != nil {
			return sheets
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var s wbSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "id":
				s.RID = a.Value // r: namespace
			}
		}
		sheets = append(sheets, s)
	}
}

// parseRelationships returns map[r:id]Target.
func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	}
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

// worksheet is the part of a sheet XML the loader reads. Element names are
// matched without namespace.
type worksheet struct {
	Rows []sheetRow `xml:"sheetData>row"`
}

type sheetRow struct {
	Cells []sheetCell `xml:"c"`
}

type sheetCell struct {
	Ref    string   `xml:"r,attr"`
	Type   string   `xml:"t,attr"`
	V      string   `xml:"v"`
	Inline string   `xml:"is>t"`
	Runs   []string `xml:"is>r>t"`
}

// text resolves the displayed string of a cell.
func (c sheetCell) text(shared []string) string {
	switch c.Type {
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(c.V))
		if err != nil || i < 0 || i >= len(shared) {
			return ""
		}
		return shared[i]
	case "inlineStr":
		if len(c.Runs) > 0 {
			return strings.Join(c.Runs, "")
		}
		return c.Inline
	}
	return c.V
}

// values lays the row's cells out by column letter. Cells without a
// reference take the next free column; skipped columns stay empty.
func (r sheetRow) values(shared []string) []string {
	var out []string
	for _, c := range r.Cells {
		col, ok := refColumn(c.Ref)
		if !ok {
			col = len(out)
		}
		for len(out) <= col {
			out = append(out, "")
		}
		out[col] = c.text(shared)
	}
	return out
}

// refColumn returns the 0-based column of an A1-style reference ("AB7" -> 27).
func refColumn(ref string) (int, bool) {
	letters := strings.ToUpper(ref)
	if i := strings.IndexFunc(letters, func(r rune) bool { return r < 'A' || r > 'Z' }); i >= 0 {
		letters = letters[:i]
	}
	if letters == "" {
		return 0, false
	}
	col := 0
	for _, r := range letters {
		col = col*26 + int(r-'A') + 1
	}
	return col - 1, true
}

// normalizeRelPath converts relationship Target paths to ZIP entry names.
// Targets may carry a leading slash ("/xl/worksheets/sheet1.xml"); ZIP
// entries never do.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}
