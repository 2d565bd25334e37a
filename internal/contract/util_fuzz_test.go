package contract

import (
	"testing"

	"github.com/huangsam/repometrics/schema"
)

// FuzzParseMetricList fuzzes ParseMetricList with random column lists.
func FuzzParseMetricList(f *testing.F) {
	seeds := []string{
		"stars,loc",
		" cbo , dit ,lcom",
		"",
		",,,",
		"stars,stars",
		"full_name",
		"STARS",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		out, err := ParseMetricList(s, schema.DefaultProcessMetrics)
		if err != nil {
			return
		}
		seen := map[string]bool{}
		for _, name := range out {
			if !schema.IsNumericColumn(name) {
				t.Fatalf("non-numeric column %q accepted", name)
			}
			if seen[name] {
				t.Fatalf("duplicate column %q", name)
			}
			seen[name] = true
		}
	})
}

// FuzzTruncateName fuzzes TruncateName with random names and widths.
func FuzzTruncateName(f *testing.F) {
	f.Add("spring-projects/spring-boot", 10)
	f.Add("", 0)
	f.Add("日本語/リポジトリ", 5)

	f.Fuzz(func(t *testing.T, name string, width int) {
		out := TruncateName(name, width)
		if width > 3 && len([]rune(out)) > width {
			t.Fatalf("TruncateName(%q, %d) = %q is too wide", name, width, out)
		}
	})
}
