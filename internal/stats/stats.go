// Package stats computes the file size, file type and file age statistics
// shown in the report panels.
package stats

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/justyntemme/dirstat/internal/tree"
)

// Walker is the part of a tree the statistics need.
type Walker interface {
	Walk(n *tree.Node, fn func(*tree.Node) bool)
}

func eachFile(w Walker, root *tree.Node, fn func(*tree.Node)) {
	w.Walk(root, func(n *tree.Node) bool {
		if !n.IsDir && !n.IsSymlink {
			fn(n)
		}
		return true
	})
}

// Bucket counts the files within a size range. Max is inclusive; the last
// bucket has Max -1.
type Bucket struct {
	Min, Max int64
	Count    int
	Total    int64
}

func (b Bucket) Label() string {
	if b.Max < 0 {
		return "> " + humanize.IBytes(uint64(b.Min-1))
	}
	if b.Max == 0 {
		return "0 B"
	}
	return "≤ " + humanize.IBytes(uint64(b.Max))
}

var bucketLimits = []int64{0, 1 << 10, 10 << 10, 100 << 10, 1 << 20, 10 << 20, 100 << 20, 1 << 30, 10 << 30}

// SizeReport describes the distribution of file sizes below a directory.
type SizeReport struct {
	Path        string
	Count       int
	Total       int64
	Percentiles []int64 // P0, P10, ... P100
	Buckets     []Bucket
}

// FileSizes collects a SizeReport for root.
func FileSizes(w Walker, root *tree.Node) SizeReport {
	var sizes []int64
	eachFile(w, root, func(n *tree.Node) { sizes = append(sizes, n.Size) })
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })

	r := SizeReport{Path: root.Path, Count: len(sizes)}
	prev := int64(-1)
	for _, lim := range bucketLimits {
		r.Buckets = append(r.Buckets, Bucket{Min: prev + 1, Max: lim})
		prev = lim
	}
	r.Buckets = append(r.Buckets, Bucket{Min: prev + 1, Max: -1})

	b := 0
	for _, s := range sizes {
		r.Total += s
		for r.Buckets[b].Max >= 0 && s > r.Buckets[b].Max {
			b++
		}
		r.Buckets[b].Count++
		r.Buckets[b].Total += s
	}
	if len(sizes) > 0 {
		for p := 0; p <= 100; p += 10 {
			r.Percentiles = append(r.Percentiles, percentile(sizes, p))
		}
	}
	return r
}

// percentile uses the nearest-rank method on sorted values.
func percentile(sorted []int64, p int) int64 {
	if p <= 0 {
		return sorted[0]
	}
	rank := int(math.Ceil(float64(p) / 100 * float64(len(sorted))))
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// Median returns P50, or 0 without files.
func (r SizeReport) Median() int64 {
	if len(r.Percentiles) < 6 {
		return 0
	}
	return r.Percentiles[5]
}

func (r SizeReport) Lines() []string {
	lines := []string{
		fmt.Sprintf("File size statistics for %s", r.Path),
		fmt.Sprintf("%s files, %s total, median %s", humanize.Comma(int64(r.Count)),
			humanize.IBytes(uint64(r.Total)), humanize.IBytes(uint64(r.Median()))),
	}
	for i, v := range r.Percentiles {
		lines = append(lines, fmt.Sprintf("P%-3d %12s", i*10, humanize.IBytes(uint64(v))))
	}
	for _, b := range r.Buckets {
		if b.Count == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-12s %8s files %12s", b.Label(),
			humanize.Comma(int64(b.Count)), humanize.IBytes(uint64(b.Total))))
	}
	return lines
}

// NoExtension groups files without a suffix in a TypeReport.
const NoExtension = "(none)"

// TypeRow is one suffix in a TypeReport.
type TypeRow struct {
	Ext     string
	Count   int
	Total   int64
	Percent float64 // of the total size
}

// TypeReport lists file suffixes by the space their files take.
type TypeReport struct {
	Path  string
	Total int64
	Rows  []TypeRow
}

// FileTypes collects a TypeReport for root. Suffixes are compared case
// insensitively.
func FileTypes(w Walker, root *tree.Node) TypeReport {
	rows := map[string]*TypeRow{}
	r := TypeReport{Path: root.Path}
	eachFile(w, root, func(n *tree.Node) {
		ext := strings.ToLower(filepath.Ext(n.Name))
		if ext == "" || ext == n.Name {
			ext = NoExtension
		}
		row := rows[ext]
		if row == nil {
			row = &TypeRow{Ext: ext}
			rows[ext] = row
		}
		row.Count++
		row.Total += n.Size
		r.Total += n.Size
	})
	for _, row := range rows {
		if r.Total > 0 {
			row.Percent = 100 * float64(row.Total) / float64(r.Total)
		}
		r.Rows = append(r.Rows, *row)
	}
	sort.Slice(r.Rows, func(i, j int) bool {
		if r.Rows[i].Total != r.Rows[j].Total {
			return r.Rows[i].Total > r.Rows[j].Total
		}
		return r.Rows[i].Ext < r.Rows[j].Ext
	})
	return r
}

func (r TypeReport) Lines() []string {
	lines := []string{fmt.Sprintf("File types in %s", r.Path)}
	for _, row := range r.Rows {
		lines = append(lines, fmt.Sprintf("%-12s %8s files %12s %5.1f%%", row.Ext,
			humanize.Comma(int64(row.Count)), humanize.IBytes(uint64(row.Total)), row.Percent))
	}
	return lines
}

// YearRow is one year in an AgeReport.
type YearRow struct {
	Year         int
	Count        int
	Total        int64
	FilesPercent float64
	SizePercent  float64
}

// AgeReport groups files by the year of their last modification, newest
// year first.
type AgeReport struct {
	Path  string
	Count int
	Total int64
	Rows  []YearRow
}

// FileAges collects an AgeReport for root. Files without a modification
// time are left out.
func FileAges(w Walker, root *tree.Node) AgeReport {
	years := map[int]*YearRow{}
	r := AgeReport{Path: root.Path}
	eachFile(w, root, func(n *tree.Node) {
		if n.ModTime.IsZero() {
			return
		}
		y := n.ModTime.Year()
		row := years[y]
		if row == nil {
			row = &YearRow{Year: y}
			years[y] = row
		}
		row.Count++
		row.Total += n.Size
		r.Count++
		r.Total += n.Size
	})
	for _, row := range years {
		if r.Count > 0 {
			row.FilesPercent = 100 * float64(row.Count) / float64(r.Count)
		}
		if r.Total > 0 {
			row.SizePercent = 100 * float64(row.Total) / float64(r.Total)
		}
		r.Rows = append(r.Rows, *row)
	}
	sort.Slice(r.Rows, func(i, j int) bool { return r.Rows[i].Year > r.Rows[j].Year })
	return r
}

func (r AgeReport) Lines() []string {
	lines := []string{fmt.Sprintf("File age statistics for %s", r.Path)}
	for _, row := range r.Rows {
		lines = append(lines, fmt.Sprintf("%d %8s files %5.1f%% %12s %5.1f%%", row.Year,
			humanize.Comma(int64(row.Count)), row.FilesPercent,
			humanize.IBytes(uint64(row.Total)), row.SizePercent))
	}
	return lines
}
