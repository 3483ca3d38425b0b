package source

import (
	"regexp"
	"strings"

	"github.com/letmecheque/letmecheque/internal/model"
)

// unitMarker matches a trailing currency or unit marker such as "_(€)",
// " (EUR)" or the empty "_()" left by a lost encoding.
var unitMarker = regexp.MustCompile(`[\s_]*\([^()]{0,4}\)$`)

var spaces = regexp.MustCompile(`\s+`)

// NormalizeColumn turns a raw header cell into a display name.
//
//	"Food_(€)"                   -> "Food"
//	"Avg_Spending_Per_User (€)"  -> "Avg Spending Per User"
//	"Student_ID"                 -> "Student ID"
func NormalizeColumn(raw string) string {
	s := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	s = unitMarker.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "_", " ")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// header indexes normalized column names.
type header struct {
	names []string
	index map[string]int
}

func newHeader(raw []string) header {
	h := header{names: make([]string, len(raw)), index: make(map[string]int, len(raw))}
	for i, r := range raw {
		name := NormalizeColumn(r)
		h.names[i] = name
		key := strings.ToLower(name)
		if _, dup := h.index[key]; !dup && key != "" {
			h.index[key] = i
		}
	}
	return h
}

// find returns the column index of name, or -1.
func (h header) find(name string) int {
	if name == "" {
		return -1
	}
	if i, ok := h.index[strings.ToLower(NormalizeColumn(name))]; ok {
		return i
	}
	return -1
}

// DiscoverCategories returns every normalized column that is not the
// period, entity or total column, in column order. A column named like the
// Total pseudo-category is never a category, even when the configured
// total column has another name.
func DiscoverCategories(rawHeader []string, cols Columns) []string {
	h := newHeader(rawHeader)
	return h.categories(cols)
}

func (h header) categories(cols Columns) []string {
	skip := map[int]bool{}
	for _, name := range []string{cols.Period, cols.Entity, cols.Total} {
		if i := h.find(name); i >= 0 {
			skip[i] = true
		}
	}
	seen := map[string]bool{}
	var out []string
	for i, name := range h.names {
		if skip[i] || name == "" || seen[strings.ToLower(name)] || strings.EqualFold(name, model.TotalCategory) {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, name)
	}
	return out
}
