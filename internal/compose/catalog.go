// Package compose assembles one square raster from N source rasters using a
// closed catalog of spatial patterns.
package compose

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidConfiguration reports a source count, size or pattern the
// compositor cannot honour.
var ErrInvalidConfiguration = errors.New("invalid composition configuration")

// Kind identifies a pattern in the catalog.
type Kind int

const (
	HorizontalSplit Kind = iota
	VerticalSplit
	Checkerboard
	PerBend
	Cross
	Chevron
	InvertedChevron
	StripesHorizontal
	StripesVertical
	Border
	Diamond

	SplitNHorizontal
	SplitNVertical
	CheckerboardN
	StripesHorizontalN
	StripesVerticalN
	GradientN
	BorderCycleN
	DiamondCycleN
)

type kindInfo struct {
	name string
	slug string
	// reverse is listed in the catalog for this kind.
	reverse bool
}

var kinds = map[Kind]kindInfo{
	HorizontalSplit:    {"Horizontal Split", "horizontal-split", true},
	VerticalSplit:      {"Vertical Split", "vertical-split", true},
	Checkerboard:       {"Checkerboard", "checkerboard", true},
	PerBend:            {"Per Bend", "per-bend", true},
	Cross:              {"Cross", "cross", true},
	Chevron:            {"Chevron", "chevron", true},
	InvertedChevron:    {"Inverted Chevron", "inverted-chevron", true},
	StripesHorizontal:  {"Stripes Horizontal", "stripes-horizontal", false},
	StripesVertical:    {"Stripes Vertical", "stripes-vertical", false},
	Border:             {"Border", "border", true},
	Diamond:            {"Diamond", "diamond", true},
	SplitNHorizontal:   {"Split %d Horizontal", "split-horizontal", false},
	SplitNVertical:     {"Split %d Vertical", "split-vertical", false},
	CheckerboardN:      {"Checkerboard %d", "checkerboard-n", false},
	StripesHorizontalN: {"Stripes Horizontal %d", "stripes-horizontal-n", false},
	StripesVerticalN:   {"Stripes Vertical %d", "stripes-vertical-n", false},
	GradientN:          {"Gradient %d", "gradient", false},
	BorderCycleN:       {"Border Cycle %d", "border-cycle", false},
	DiamondCycleN:      {"Diamond Cycle %d", "diamond-cycle", false},
}

var (
	twoSourceOrder = []Kind{
		HorizontalSplit, VerticalSplit, Checkerboard, PerBend, Cross, Chevron,
		InvertedChevron, StripesHorizontal, StripesVertical, Border, Diamond,
	}
	multiSourceOrder = []Kind{
		SplitNHorizontal, SplitNVertical, CheckerboardN, StripesHorizontalN,
		StripesVerticalN, GradientN, BorderCycleN, DiamondCycleN,
	}
)

// MultiSource reports whether k is defined for three or more sources.
func (k Kind) MultiSource() bool { return k >= SplitNHorizontal }

func (k Kind) String() string {
	info, ok := kinds[k]
	if !ok {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	fields := strings.Fields(info.name)
	kept := fields[:0]
	for _, f := range fields {
		if f != "%d" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// Slug returns the command line form of k.
func (k Kind) Slug() string { return kinds[k].slug }

// Pattern selects a catalog entry. Reverse swaps source 0 and source 1 and is
// only meaningful for two-source kinds.
type Pattern struct {
	Kind    Kind
	Reverse bool
}

// Name renders the pattern the way Catalog lists it for n sources.
func (p Pattern) Name(n int) string {
	info, ok := kinds[p.Kind]
	if !ok {
		return p.Kind.String()
	}
	if p.Kind.MultiSource() {
		return fmt.Sprintf(info.name, n)
	}
	if p.Reverse {
		return info.name + " (Reverse)"
	}
	return info.name
}

// Catalog lists the display names offered for n sources.
func Catalog(n int) []string {
	var out []string
	switch {
	case n == 2:
		for _, k := range twoSourceOrder {
			out = append(out, Pattern{Kind: k}.Name(n))
			if kinds[k].reverse {
				out = append(out, Pattern{Kind: k, Reverse: true}.Name(n))
			}
		}
	case n >= 3:
		for _, k := range multiSourceOrder {
			out = append(out, Pattern{Kind: k}.Name(n))
		}
	}
	return out
}

// Default returns the first catalog entry for n sources.
func Default(n int) Pattern {
	if n >= 3 {
		return Pattern{Kind: SplitNHorizontal}
	}
	return Pattern{Kind: HorizontalSplit}
}

// ParsePattern resolves a display name or slug for n sources. Matching is
// case-insensitive; "(Reverse)" and a "-reverse" suffix select the reversed
// variant.
func ParsePattern(id string, n int) (Pattern, error) {
	key := normalize(id)
	if key == "" {
		return Pattern{}, fmt.Errorf("%w: empty pattern", ErrInvalidConfiguration)
	}
	reverse := false
	if base, ok := strings.CutSuffix(key, "-reverse"); ok {
		key, reverse = base, true
	}
	for k, info := range kinds {
		names := []string{info.slug, normalize(info.name)}
		if k.MultiSource() {
			names = append(names, normalize(fmt.Sprintf(info.name, n)))
		}
		for _, name := range names {
			if name != key {
				continue
			}
			if reverse && !info.reverse {
				return Pattern{}, fmt.Errorf("%w: %q has no reverse variant", ErrInvalidConfiguration, id)
			}
			return Pattern{Kind: k, Reverse: reverse}, nil
		}
	}
	return Pattern{}, fmt.Errorf("%w: unknown pattern %q", ErrInvalidConfiguration, id)
}

// normalize lower-cases id and folds spaces, underscores and parentheses
// into single dashes.
func normalize(id string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(id)) {
		switch {
		case r == ' ' || r == '_' || r == '-' || r == '(' || r == ')':
			dash = b.Len() > 0
		default:
			if dash {
				b.WriteByte('-')
				dash = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
