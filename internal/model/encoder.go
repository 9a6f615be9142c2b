package model

import "strings"

// LabelEncoder maps trained categorical string values (emotions) to their
// numeric codes. Transform is index-in-classes, matching how the encoder was
// fit.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// NewLabelEncoder builds an encoder over the trained class list.
func NewLabelEncoder(classes []string) *LabelEncoder {
	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		idx[normalizeClass(c)] = i
	}
	return &LabelEncoder{classes: classes, index: idx}
}

// Classes returns the trained class list in fit order.
func (e *LabelEncoder) Classes() []string {
	return e.classes
}

// Transform encodes a raw value. Unrecognized values fall back to the
// trained "unknown" class when present, else 0.0, so malformed client input
// degrades instead of failing.
func (e *LabelEncoder) Transform(raw string) float64 {
	key := normalizeClass(raw)
	if key == "" {
		key = "unknown"
	}
	if i, ok := e.index[key]; ok {
		return float64(i)
	}
	if i, ok := e.index["unknown"]; ok {
		return float64(i)
	}
	return 0.0
}

func normalizeClass(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
