package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "r.md")
	if err := SafeWriteFile(path, []byte("hello")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "hello" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.csv", "a.csv", "c.xlsx"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got, err := ExpandInputs([]string{filepath.Join(dir, "*.csv"), filepath.Join(dir, "a.csv"), filepath.Join(dir, "c.xlsx")})
	if err != nil {
		t.Fatalf("ExpandInputs: %v", err)
	}
	if len(got) != 3 || filepath.Base(got[0]) != "a.csv" || filepath.Base(got[2]) != "c.xlsx" {
		t.Fatalf("got %v", got)
	}
	if _, err := ExpandInputs([]string{filepath.Join(dir, "*.tsv")}); err == nil {
		t.Fatalf("expected no-match error")
	}
}

func TestReportNameAvoidsOverwrite(t *testing.T) {
	dir := t.TempDir()
	first := ReportName(dir, "/data/notas.xlsx", "Turma A", ".md")
	if filepath.Base(first) != "notas__sheet-turma-a.report.md" {
		t.Fatalf("first = %s", first)
	}
	if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	second := ReportName(dir, "/data/notas.xlsx", "Turma A", ".md")
	if !strings.HasSuffix(second, "notas__sheet-turma-a__2.report.md") {
		t.Fatalf("second = %s", second)
	}
	if got := filepath.Base(ReportName(dir, "notas.csv", "", ".json")); got != "notas.report.json" {
		t.Fatalf("plain = %s", got)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"k": 2})
	if err != nil {
		t.Fatalf("PrettyJSON: %v", err)
	}
	if string(b) != "{\n  \"k\": 2\n}" {
		t.Fatalf("got %q", b)
	}
}
