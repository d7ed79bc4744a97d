package dataset

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

const sampleCSV = `text,label,extra
"good movie",pos,1
"bad movie",neg,2
"fine movie",pos,3
`

func TestFromCSV(t *testing.T) {
	tab, err := FromCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tab.NumRows(); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
	cols := tab.Columns()
	if len(cols) != 3 || cols[0] != "text" || cols[1] != "label" || cols[2] != "extra" {
		t.Fatalf("unexpected columns: %v", cols)
	}
	labels, err := tab.Column("label")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if labels[0] != "pos" || labels[1] != "neg" || labels[2] != "pos" {
		t.Fatalf("unexpected label values: %v", labels)
	}
}

func TestFromCSVEmptyInput(t *testing.T) {
	if _, err := FromCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestFromCSVRaggedRow(t *testing.T) {
	if _, err := FromCSV(strings.NewReader("a,b\n1,2\n3\n")); err == nil {
		t.Fatal("expected error for ragged row")
	}
}

func TestAddAndDropColumns(t *testing.T) {
	tab, err := FromCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	texts, _ := tab.Column("text")
	if err := tab.AddColumn("autotrain_text", texts); err != nil {
		t.Fatalf("add column: %v", err)
	}
	if err := tab.DropColumns("text", "extra"); err != nil {
		t.Fatalf("drop columns: %v", err)
	}
	cols := tab.Columns()
	if len(cols) != 2 || cols[0] != "label" || cols[1] != "autotrain_text" {
		t.Fatalf("unexpected columns after drop: %v", cols)
	}
	got, err := tab.Column("autotrain_text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[2] != "fine movie" {
		t.Fatalf("column values shifted after drop: %v", got)
	}
}

func TestAddColumnRejectsDuplicateAndBadLength(t *testing.T) {
	tab, _ := FromCSV(strings.NewReader(sampleCSV))
	if err := tab.AddColumn("label", []string{"a", "b", "c"}); err == nil {
		t.Fatal("expected error for duplicate column")
	}
	if err := tab.AddColumn("fresh", []string{"a"}); err == nil {
		t.Fatal("expected error for value count mismatch")
	}
}

func TestDropUnknownColumn(t *testing.T) {
	tab, _ := FromCSV(strings.NewReader(sampleCSV))
	if err := tab.DropColumns("nope"); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tab, _ := FromCSV(strings.NewReader(sampleCSV))
	cp := tab.Clone()
	if err := cp.DropColumns("extra"); err != nil {
		t.Fatalf("drop on clone: %v", err)
	}
	if !tab.HasColumn("extra") {
		t.Fatal("dropping a column on the clone mutated the original")
	}
}

func TestToJSONL(t *testing.T) {
	tab, _ := FromCSV(strings.NewReader(sampleCSV))
	var buf bytes.Buffer
	if err := tab.ToJSONL(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 jsonl lines, got %d", len(lines))
	}
	var obj map[string]string
	if err := json.Unmarshal([]byte(lines[1]), &obj); err != nil {
		t.Fatalf("line 2 is not valid json: %v", err)
	}
	if obj["text"] != "bad movie" || obj["label"] != "neg" {
		t.Fatalf("unexpected object on line 2: %v", obj)
	}
}
