package formatter

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableBasicOutput(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "ID", "SKILL", "SCORE")
	tbl.AddRow("skill-a", "use-context", "0.50")
	tbl.AddRow("skill-b", "validate-input", "0.70")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ID", "SKILL", "SCORE", "skill-a", "skill-b", "--"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Header, separator, two data rows.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
}

func TestTableEmptyRendersNothing(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "A", "B")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty table, got:\n%s", buf.String())
	}
}

func TestTableMaxWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		value    string
		want     string
		dontWant string
	}{
		{"truncates with ellipsis", 8, "abcdefghijklmnop", "abcde...", "abcdefghijklmnop"},
		{"tiny width slices raw", 2, "abcdef", "ab", "..."},
		{"exactly at width untouched", 5, "abcde", "abcde", "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tbl := NewTable(&buf, "ID", "VALUE")
			tbl.SetMaxWidth(0, tt.width)
			tbl.AddRow(tt.value, "ok")
			if err := tbl.Render(); err != nil {
				t.Fatalf("Render: %v", err)
			}

			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in output:\n%s", tt.want, out)
			}
			if tt.dontWant != "" && strings.Contains(out, tt.dontWant) {
				t.Errorf("did not expect %q in output:\n%s", tt.dontWant, out)
			}
		})
	}
}

func TestTableMissingValuesFilled(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "A", "B", "C")
	tbl.AddRow("only-one")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "only-one") {
		t.Errorf("expected value in output:\n%s", buf.String())
	}
}

func TestTableSeparatorMatchesHeaderLength(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "SHORT", "LONGHEADER")
	tbl.AddRow("x", "y")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected at least 2 lines, got %d", len(lines))
	}
	sepFields := strings.Fields(lines[1])
	if len(sepFields) != 2 || sepFields[0] != "-----" || sepFields[1] != "----------" {
		t.Errorf("separator fields = %v, want dashes matching header lengths", sepFields)
	}
}

func BenchmarkTableRender(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		tbl := NewTable(&buf, "ID", "SKILL", "SCORE")
		tbl.SetMaxWidth(1, 20)
		for j := 0; j < 10; j++ {
			tbl.AddRow("skill-20260824120000", "use-prepared-statements", "0.50")
		}
		_ = tbl.Render()
	}
}
