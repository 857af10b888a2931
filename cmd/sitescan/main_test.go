package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"siteintel/internal/models"
)

func TestReadDomains(t *testing.T) {
	in := "# customers\nacme.io\n\n  shop.io  # main store\n#skip.io\nhttps://blog.acme.io/\n"
	got, err := readDomains(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := "acme.io,shop.io,https://blog.acme.io/"
	if strings.Join(got, ",") != want {
		t.Errorf("got %v, want %s", got, want)
	}
}

func TestSplitPatterns(t *testing.T) {
	if got := splitPatterns(" sales@, ,@gmail.com "); strings.Join(got, "|") != "sales@|@gmail.com" {
		t.Errorf("got %v", got)
	}
	if got := splitPatterns(""); got != nil {
		t.Errorf("empty flag should yield nil, got %v", got)
	}
}

func TestEncodeFormats(t *testing.T) {
	results := []models.AnalysisResult{models.NewResult("acme.io")}

	var js bytes.Buffer
	if err := encode(&js, "out.json", results); err != nil {
		t.Fatal(err)
	}
	var decoded []models.AnalysisResult
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil || len(decoded) != 1 {
		t.Errorf("json output = %s", js.String())
	}

	var xl bytes.Buffer
	if err := encode(&xl, "Report.XLSX", results); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(xl.Bytes(), []byte("PK")) {
		t.Error("expected a zip-based workbook")
	}
}
