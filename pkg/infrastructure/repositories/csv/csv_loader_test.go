package csv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/cmrp/pkg/domain/entities"
)

func TestDecodeUpload(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain utf-8", []byte("Project Name\nFeeder\n"), "Project Name\nFeeder\n"},
		{"byte order mark", append([]byte{0xEF, 0xBB, 0xBF}, []byte("Client\nAcme")...), "Client\nAcme"},
		{"latin-1 fallback", []byte("Client\nNi\xf1o Corp"), "Client\nNiño Corp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeUpload(bytes.NewReader(tt.input))
			if err != nil {
				t.Fatalf("DecodeUpload: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReadRecords(t *testing.T) {
	input := "Project #,Project Name,Amount\n101,Feeder Line,\"1,000\"\n102,Short\n"

	records, err := ReadRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["Amount"] != "1,000" {
		t.Errorf("expected quoted amount kept intact, got %v", records[0]["Amount"])
	}
	if _, ok := records[1]["Amount"]; ok {
		t.Errorf("expected missing column to be absent, got %v", records[1]["Amount"])
	}
}

func TestReadRecords_NoHeader(t *testing.T) {
	for _, input := range []string{"", ",,\n"} {
		if _, err := ReadRecords(strings.NewReader(input)); !errors.Is(err, ErrNoHeader) {
			t.Errorf("input %q: expected ErrNoHeader, got %v", input, err)
		}
	}
}

func TestLoader_LoadProjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.csv")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFProject Name,Status (%)\nSubstation,45\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	records, err := NewLoader().LoadProjects(path)
	if err != nil {
		t.Fatalf("LoadProjects: %v", err)
	}
	if len(records) != 1 || records[0]["Project Name"] != "Substation" {
		t.Errorf("unexpected records %v", records)
	}

	if _, err := NewLoader().LoadProjects(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteProjects(t *testing.T) {
	p, err := entities.NewProject("Feeder, Phase 2", entities.NewAmount(decimal.NewFromInt(2000)), 25)
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}
	p.ProjectNo = "101"
	p.PODate = entities.NewDate(2024, 1, 8)
	weeks := 3

	var buf bytes.Buffer
	err = WriteProjects(&buf, []ProjectRecord{{Project: p, RunningWeeks: &weeks, LatestUpdate: "poles delivered"}})
	if err != nil {
		t.Fatalf("WriteProjects: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "DS,Year,Project #") {
		t.Errorf("unexpected header %q", lines[0])
	}
	want := `,,101,,"Feeder, Phase 2",2000,25,1500,3,2024-01-08,,,,,poles delivered`
	if lines[1] != want {
		t.Errorf("expected row\n%s\ngot\n%s", want, lines[1])
	}
}
