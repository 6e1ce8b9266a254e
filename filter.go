package compositor

import (
	"fmt"
	"strings"
)

// FilterKind identifies a filter operation.
type FilterKind uint8

// Filter operations. Only their presence matters to the draw properties
// pass; debug rendering applies the color filters.
const (
	FilterGrayscale FilterKind = iota
	FilterSepia
	FilterInvert
	FilterOpacity
	FilterBrightness
	FilterContrast
	FilterBlur
	FilterDropShadow
)

var filterNames = [...]string{
	FilterGrayscale:  "grayscale",
	FilterSepia:      "sepia",
	FilterInvert:     "invert",
	FilterOpacity:    "opacity",
	FilterBrightness: "brightness",
	FilterContrast:   "contrast",
	FilterBlur:       "blur",
	FilterDropShadow: "drop-shadow",
}

// String returns the CSS function name of k.
func (k FilterKind) String() string {
	if int(k) < len(filterNames) {
		return filterNames[k]
	}
	return fmt.Sprintf("FilterKind(%d)", k)
}

// ParseFilterKind returns the kind named by s.
func ParseFilterKind(s string) (FilterKind, bool) {
	for k, name := range filterNames {
		if name == s {
			return FilterKind(k), true
		}
	}
	return 0, false
}

// Filter is one filter operation with its amount.
type Filter struct {
	Kind   FilterKind
	Amount float64
}

// String formats f like a CSS filter function.
func (f Filter) String() string {
	return fmt.Sprintf("%s(%g)", f.Kind, f.Amount)
}

// Filters is an ordered list of filter operations.
type Filters []Filter

// String formats fs like a CSS filter property value.
func (fs Filters) String() string {
	if len(fs) == 0 {
		return "none"
	}
	var sb strings.Builder
	for i, f := range fs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.String())
	}
	return sb.String()
}
