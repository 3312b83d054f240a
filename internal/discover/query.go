package discover

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/justyntemme/dirstat/internal/tree"
)

// Directive types
type DirectiveType int

const (
	DirFilename DirectiveType = iota
	DirPath
	DirExt
	DirSize
	DirModified
	DirKind
)

// Comparison operators for size/date
type Operator int

const (
	OpNone Operator = iota
	OpGreater
	OpLess
	OpGreaterEq
	OpLessEq
	OpEquals
)

// Directive is a single locate directive
type Directive struct {
	Type     DirectiveType
	Value    string
	Operator Operator
	NumValue int64     // parsed size in bytes
	TimeVal  time.Time // parsed date
}

// Query holds parsed locate directives
type Query struct {
	Directives []Directive
	Raw        string
}

// Parse parses a locate string into directives.
// Examples:
//   - "foo" -> name contains foo
//   - "path:/var/log" -> path contains /var/log
//   - "ext:iso" -> files with .iso extension
//   - "size:>1GB" -> files larger than 1 GB
//   - "modified:<2020-01-01" -> files last modified before 2020
//   - "kind:dir" -> directories only
func Parse(input string) *Query {
	q := &Query{Raw: input}
	input = strings.TrimSpace(input)
	if input == "" {
		return q
	}
	for _, part := range splitRespectingQuotes(input) {
		q.Directives = append(q.Directives, parseDirective(part))
	}
	return q
}

func splitRespectingQuotes(s string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := rune(0)

	for _, r := range s {
		switch {
		case (r == '"' || r == '\'') && !inQuotes:
			inQuotes = true
			quoteChar = r
		case r == quoteChar && inQuotes:
			inQuotes = false
			quoteChar = 0
		case r == ' ' && !inQuotes:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func parseDirective(s string) Directive {
	if idx := strings.Index(s, ":"); idx > 0 {
		directive := strings.ToLower(s[:idx])
		value := strings.Trim(s[idx+1:], "\"'")

		switch directive {
		case "filename", "name", "file":
			return Directive{Type: DirFilename, Value: value}

		case "path", "dir", "in":
			return Directive{Type: DirPath, Value: value}

		case "ext", "extension":
			if !strings.HasPrefix(value, ".") {
				value = "." + value
			}
			return Directive{Type: DirExt, Value: strings.ToLower(value)}

		case "size":
			op, numStr := parseOperator(value)
			return Directive{Type: DirSize, Value: value, Operator: op, NumValue: parseSize(numStr)}

		case "modified", "date", "mtime":
			op, dateStr := parseOperator(value)
			return Directive{Type: DirModified, Value: value, Operator: op, TimeVal: parseDate(dateStr, time.Now())}

		case "kind", "is":
			return Directive{Type: DirKind, Value: strings.ToLower(value)}
		}
	}
	return Directive{Type: DirFilename, Value: s}
}

func parseOperator(s string) (Operator, string) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, ">="):
		return OpGreaterEq, strings.TrimSpace(s[2:])
	case strings.HasPrefix(s, "<="):
		return OpLessEq, strings.TrimSpace(s[2:])
	case strings.HasPrefix(s, ">"):
		return OpGreater, strings.TrimSpace(s[1:])
	case strings.HasPrefix(s, "<"):
		return OpLess, strings.TrimSpace(s[1:])
	case strings.HasPrefix(s, "="):
		return OpEquals, strings.TrimSpace(s[1:])
	default:
		return OpEquals, s
	}
}

// parseSize converts "1KB", "10MiB", "1.5G" to bytes. Unparsable sizes are 0.
func parseSize(s string) int64 {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return int64(n)
}

// parseDate parses "2024-01-01", "2024-01", "2024", "today", "yesterday",
// "week", "month" and "year" relative to now.
func parseDate(s string, now time.Time) time.Time {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case "yesterday":
		y, m, d := now.AddDate(0, 0, -1).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	case "year":
		return now.AddDate(-1, 0, 0)
	}

	formats := []string{
		"2006-01-02",
		"2006-01",
		"2006",
		"2006/01/02",
		"01/02/2006",
		"Jan 2, 2006",
	}
	for _, layout := range formats {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Match reports whether n matches all directives of q. Pseudo directories
// never match.
func (q *Query) Match(n *tree.Node) bool {
	if n == nil || n.Pseudo {
		return false
	}
	for _, d := range q.Directives {
		if !matchDirective(d, n) {
			return false
		}
	}
	return true
}

func matchDirective(d Directive, n *tree.Node) bool {
	switch d.Type {
	case DirFilename:
		return matchGlob(strings.ToLower(n.Name), strings.ToLower(d.Value))

	case DirPath:
		return strings.Contains(strings.ToLower(n.Path), strings.ToLower(d.Value))

	case DirExt:
		return !n.IsDir && strings.ToLower(filepath.Ext(n.Name)) == d.Value

	case DirSize:
		size := n.Size
		if n.IsDir {
			size = n.TotalSize()
		}
		return compareInt(size, d.NumValue, d.Operator)

	case DirModified:
		if d.TimeVal.IsZero() {
			return true
		}
		return compareTime(n.ModTime, d.TimeVal, d.Operator)

	case DirKind:
		switch d.Value {
		case "dir", "directory", "d":
			return n.IsDir
		case "file", "f":
			return !n.IsDir
		case "symlink", "link", "l":
			return n.IsSymlink
		case "mount", "mountpoint":
			return n.MountPoint
		}
		return false
	}
	return true
}

// matchGlob does simple glob matching with * wildcards
func matchGlob(name, pattern string) bool {
	// without wildcards the pattern is a substring
	if !strings.Contains(pattern, "*") {
		return strings.Contains(name, pattern)
	}

	parts := strings.Split(pattern, "*")
	if parts[0] != "" && !strings.HasPrefix(name, parts[0]) {
		return false
	}
	last := parts[len(parts)-1]
	if last != "" && !strings.HasSuffix(name, last) {
		return false
	}

	pos := len(parts[0])
	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(name[pos:], part)
		if idx < 0 {
			return false
		}
		pos += idx + len(part)
	}
	return len(name)-len(last) >= pos
}

func compareInt(val, target int64, op Operator) bool {
	switch op {
	case OpGreater:
		return val > target
	case OpLess:
		return val < target
	case OpGreaterEq:
		return val >= target
	case OpLessEq:
		return val <= target
	default:
		return val == target
	}
}

func compareTime(val, target time.Time, op Operator) bool {
	switch op {
	case OpGreater:
		return val.After(target)
	case OpLess:
		return val.Before(target)
	case OpGreaterEq:
		return !val.Before(target)
	case OpLessEq:
		return !val.After(target)
	default:
		// equality compares the calendar day
		vy, vm, vd := val.Date()
		ty, tm, td := target.Date()
		return vy == ty && vm == tm && vd == td
	}
}

// IsEmpty returns true if query has no directives
func (q *Query) IsEmpty() bool {
	return len(q.Directives) == 0
}
