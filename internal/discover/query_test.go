package discover

import (
	"testing"
	"time"

	"github.com/justyntemme/dirstat/internal/tree"
)

func TestParse_Empty(t *testing.T) {
	q := Parse("   ")
	if !q.IsEmpty() {
		t.Errorf("expected empty query, got %d directives", len(q.Directives))
	}
}

func TestParse_Directives(t *testing.T) {
	testCases := []struct {
		input    string
		typ      DirectiveType
		value    string
		operator Operator
	}{
		{"report.pdf", DirFilename, "report.pdf", OpNone},
		{"name:core", DirFilename, "core", OpNone},
		{"path:/var/log", DirPath, "/var/log", OpNone},
		{"in:cache", DirPath, "cache", OpNone},
		{"ext:iso", DirExt, ".iso", OpNone},
		{"extension:.ISO", DirExt, ".iso", OpNone},
		{"size:>1GB", DirSize, ">1GB", OpGreater},
		{"size:<=10k", DirSize, "<=10k", OpLessEq},
		{"modified:<2020-01-01", DirModified, "<2020-01-01", OpLess},
		{"kind:DIR", DirKind, "dir", OpNone},
		{`name:"my file"`, DirFilename, "my file", OpNone},
	}

	for _, tc := range testCases {
		q := Parse(tc.input)
		if len(q.Directives) != 1 {
			t.Fatalf("input %q: expected 1 directive, got %d", tc.input, len(q.Directives))
		}
		d := q.Directives[0]
		if d.Type != tc.typ || d.Value != tc.value || d.Operator != tc.operator {
			t.Errorf("input %q: got type=%d value=%q op=%d", tc.input, d.Type, d.Value, d.Operator)
		}
	}
}

func TestParse_MultipleDirectives(t *testing.T) {
	q := Parse(`ext:log size:>1MB "old logs"`)
	if len(q.Directives) != 3 {
		t.Fatalf("expected 3 directives, got %d", len(q.Directives))
	}
	if q.Directives[2].Value != "old logs" {
		t.Errorf("quoted value: got %q", q.Directives[2].Value)
	}
}

func TestParseSize(t *testing.T) {
	testCases := []struct {
		input    string
		expected int64
	}{
		{"500", 500},
		{"1KB", 1000},
		{"1KiB", 1024},
		{"10mb", 10 * 1000 * 1000},
		{"2MiB", 2 * 1024 * 1024},
		{"1.5GB", 1500 * 1000 * 1000},
		{"", 0},
		{"lots", 0},
	}

	for _, tc := range testCases {
		if got := parseSize(tc.input); got != tc.expected {
			t.Errorf("parseSize(%q): expected %d, got %d", tc.input, tc.expected, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	testCases := []struct {
		input    string
		expected time.Time
	}{
		{"today", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"yesterday", time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)},
		{"week", time.Date(2025, 6, 8, 14, 30, 0, 0, time.UTC)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2019", time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"someday", time.Time{}},
	}

	for _, tc := range testCases {
		if got := parseDate(tc.input, now); !got.Equal(tc.expected) {
			t.Errorf("parseDate(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestMatchGlob(t *testing.T) {
	testCases := []struct {
		name, pattern string
		expected      bool
	}{
		{"readme.md", "readme", true},
		{"readme.md", "*.md", true},
		{"readme.md", "read*", true},
		{"readme.md", "r*d*e.md", true},
		{"readme.md", "*.txt", false},
		{"aba", "ab*ba", false},
		{"abba", "ab*ba", true},
	}

	for _, tc := range testCases {
		if got := matchGlob(tc.name, tc.pattern); got != tc.expected {
			t.Errorf("matchGlob(%q, %q): expected %v, got %v", tc.name, tc.pattern, tc.expected, got)
		}
	}
}

func TestCompareTime(t *testing.T) {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	later := base.Add(2 * time.Hour)

	if !compareTime(later, base, OpGreater) {
		t.Error("later > base")
	}
	if !compareTime(base, base, OpGreaterEq) || !compareTime(base, base, OpLessEq) {
		t.Error("base >= base and base <= base")
	}
	if !compareTime(later, base, OpEquals) {
		t.Error("equality compares the calendar day")
	}
}

func TestQuery_Match(t *testing.T) {
	mtime := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	file := &tree.Node{Name: "Backup.ISO", Path: "/srv/images/Backup.ISO", Size: 3 << 30, ModTime: mtime}
	dir := &tree.Node{Name: "images", Path: "/srv/images", IsDir: true}
	pseudo := &tree.Node{Name: tree.DotEntryName, Path: "/srv/images/<Files>", IsDir: true, Pseudo: true}

	testCases := []struct {
		query    string
		node     *tree.Node
		expected bool
	}{
		{"backup", file, true},
		{"ext:iso", file, true},
		{"ext:iso", dir, false},
		{"size:>1GB", file, true},
		{"size:<1GB", file, false},
		{"modified:<2024-01-01", file, true},
		{"modified:2023-05-01", file, true},
		{"path:/srv kind:file", file, true},
		{"kind:dir", dir, true},
		{"kind:dir", file, false},
		{"ext:iso backup size:>1GB", file, true},
		{"", file, true},
		{"files", pseudo, false},
	}

	for _, tc := range testCases {
		if got := Parse(tc.query).Match(tc.node); got != tc.expected {
			t.Errorf("Parse(%q).Match(%s): expected %v, got %v", tc.query, tc.node.Path, tc.expected, got)
		}
	}
}
