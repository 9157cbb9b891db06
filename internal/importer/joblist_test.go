package importer

import (
	"strings"
	"testing"
)

func TestImportJobListWithHeader(t *testing.T) {
	csvData := `Name,Operation,Width,Height,Depth,Qty
Bracket,outline,120,80,6,2
Slot plate,pocket,60,40,3,1
`
	res := ImportJobListCSVFromReader(strings.NewReader(csvData), ',')
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(res.Jobs))
	}

	j := res.Jobs[0]
	if j.Label != "Bracket" || j.Operation != JobOutline || j.Width != 120 || j.Height != 80 || j.Depth != 6 || j.Quantity != 2 {
		t.Errorf("job 0: %+v", j)
	}
	if res.Jobs[1].Operation != JobPocket {
		t.Errorf("job 1 operation: %+v", res.Jobs[1])
	}
}

func TestImportJobListPositional(t *testing.T) {
	csvData := `Panel,outline,100,50,3,1
`
	res := ImportJobListCSVFromReader(strings.NewReader(csvData), ',')
	if len(res.Jobs) != 1 {
		t.Fatalf("expected 1 job, errors: %v", res.Errors)
	}
	if res.Jobs[0].Width != 100 || res.Jobs[0].Height != 50 {
		t.Errorf("positional mapping: %+v", res.Jobs[0])
	}
}

func TestImportJobListBadRows(t *testing.T) {
	csvData := `Name,Width,Height
good,10,20
missing-height,10,
bad-width,abc,20
`
	res := ImportJobListCSVFromReader(strings.NewReader(csvData), ',')
	if len(res.Jobs) != 1 {
		t.Errorf("expected 1 good job, got %d", len(res.Jobs))
	}
	if len(res.Errors) != 2 {
		t.Errorf("expected 2 row errors, got %v", res.Errors)
	}
}

func TestImportJobListUnknownOperationWarns(t *testing.T) {
	csvData := `Name,Operation,Width,Height
widget,sandblast,10,20
`
	res := ImportJobListCSVFromReader(strings.NewReader(csvData), ',')
	if len(res.Jobs) != 1 {
		t.Fatalf("row should still import, errors: %v", res.Errors)
	}
	if res.Jobs[0].Operation != JobOutline {
		t.Error("unknown operation defaults to outline")
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "sandblast") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning naming the unknown operation, got %v", res.Warnings)
	}
}

func TestDetectCSVDelimiter(t *testing.T) {
	cases := map[string]rune{
		"a,b,c\n1,2,3\n":   ',',
		"a;b;c\n1;2;3\n":   ';',
		"a\tb\tc\n1\t2\t3": '\t',
		"a|b|c\n1|2|3\n":   '|',
	}
	for data, want := range cases {
		if got := DetectCSVDelimiter([]byte(data)); got != want {
			t.Errorf("DetectCSVDelimiter(%q) = %q, want %q", data, got, want)
		}
	}
}

func TestQuantityDefaultsToOne(t *testing.T) {
	csvData := `Name,Width,Height
thing,30,30
`
	res := ImportJobListCSVFromReader(strings.NewReader(csvData), ',')
	if len(res.Jobs) != 1 || res.Jobs[0].Quantity != 1 {
		t.Errorf("quantity should default to 1: %+v", res.Jobs)
	}
}

func TestNegativeDepthNormalized(t *testing.T) {
	csvData := `Name,Operation,Width,Height,Depth
thing,outline,30,30,-5
`
	res := ImportJobListCSVFromReader(strings.NewReader(csvData), ',')
	if len(res.Jobs) != 1 || res.Jobs[0].Depth != 5 {
		t.Errorf("depth sign should be normalized: %+v", res.Jobs)
	}
}
