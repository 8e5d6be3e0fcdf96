package exporter

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat renders a nullable value, keeping at least one decimal so
// whole numbers read back as floats ("4.0", not "4")
func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// formatInt renders a nullable integer
func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// parseInt accepts "2020" and the float form "2020.0"
func parseInt(cell string) *int {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	if i, err := strconv.Atoi(cell); err == nil {
		return &i
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(f) || math.Abs(f) > math.MaxInt32 || f != math.Trunc(f) {
		return nil
	}
	i := int(f)
	return &i
}

// cellValue unwraps nullable values for spreadsheet cells
func cellValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
