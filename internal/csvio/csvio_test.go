package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/snowyegret23/godot-translation-file-tool/internal/translation"
)

func sampleTable(t *testing.T) *translation.Table {
	t.Helper()
	tbl := translation.NewTable("en")
	rows := [][2]string{
		{"0:100", "plain text"},
		{"0:101", "comma, separated, value"},
		{"0:102", "a \"quoted\" word"},
		{"0:103", "first line\nsecond line"},
		{"0:104", "日本語テキスト"},
		{"0:105", ""},
	}
	for _, r := range rows {
		if err := tbl.Add(r[0], r[1]); err != nil {
			t.Fatalf("Add(%q): %v", r[0], err)
		}
	}
	return tbl
}

func TestExportImportRoundTrip(t *testing.T) {
	tbl := sampleTable(t)

	var buf bytes.Buffer
	if err := Export(tbl, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	rows, err := Import(&buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(rows) != tbl.Len() {
		t.Fatalf("imported %d rows, want %d", len(rows), tbl.Len())
	}
	for i, e := range tbl.Entries() {
		if rows[i].Key != e.Key || rows[i].Value != e.Value {
			t.Errorf("row %d = %q/%q, want %q/%q", i, rows[i].Key, rows[i].Value, e.Key, e.Value)
		}
	}
}

func TestExportHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(translation.NewTable("en"), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got := buf.String(); got != "key,value\n" {
		t.Errorf("empty table exported %q, want header only", got)
	}
}

func TestImportToleratesBOM(t *testing.T) {
	rows, err := Import(strings.NewReader("\uFEFFkey,value\n0:1,hello\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(rows) != 1 || rows[0].Key != "0:1" || rows[0].Value != "hello" {
		t.Errorf("rows = %v", rows)
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty file":        "",
		"wrong header":      "index,original,translated\n0,a,b\n",
		"wrong field count": "key,value\nonlyonefield\n",
		"broken quoting":    "key,value\n0:1,\"unterminated\n",
	}
	for name, in := range cases {
		if _, err := Import(strings.NewReader(in)); err == nil {
			t.Errorf("%s: Import accepted %q", name, in)
		}
	}
}
