package valueobjects

import (
	"fmt"

	pkgerrors "archintel/pkg/errors"
)

// Layer is an architecture abstraction tier
type Layer string

const (
	LayerStrategy       Layer = "strategy"
	LayerBusiness       Layer = "business"
	LayerApplication    Layer = "application"
	LayerTechnology     Layer = "technology"
	LayerPhysical       Layer = "physical"
	LayerImplementation Layer = "implementation"
	LayerMotivation     Layer = "motivation"
)

var fixedLayers = []Layer{
	LayerStrategy,
	LayerBusiness,
	LayerApplication,
	LayerTechnology,
	LayerPhysical,
	LayerImplementation,
}

// FixedLayers returns the six core layers in canonical order.
// Motivation is cross-cutting and not part of this set.
func FixedLayers() []Layer {
	out := make([]Layer, len(fixedLayers))
	copy(out, fixedLayers)
	return out
}

// AllLayers returns every layer including motivation, in canonical order
func AllLayers() []Layer {
	return append(FixedLayers(), LayerMotivation)
}

// ParseLayer converts a string to a Layer
func ParseLayer(s string) (Layer, error) {
	l := Layer(s)
	if !l.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown layer: %q", s))
	}
	return l, nil
}

// IsValid reports whether the layer is one of the known layers
func (l Layer) IsValid() bool {
	for _, known := range AllLayers() {
		if l == known {
			return true
		}
	}
	return false
}

// Title returns a display name for the layer
func (l Layer) Title() string {
	switch l {
	case LayerStrategy:
		return "Strategy"
	case LayerBusiness:
		return "Business"
	case LayerApplication:
		return "Application"
	case LayerTechnology:
		return "Technology"
	case LayerPhysical:
		return "Physical"
	case LayerImplementation:
		return "Implementation"
	case LayerMotivation:
		return "Motivation"
	default:
		return string(l)
	}
}

// Order returns the canonical position of the layer, or -1 if unknown
func (l Layer) Order() int {
	for i, known := range AllLayers() {
		if l == known {
			return i
		}
	}
	return -1
}

// SortLayers returns the distinct layers of the input in canonical order
func SortLayers(layers []Layer) []Layer {
	seen := make(map[Layer]bool, len(layers))
	for _, l := range layers {
		seen[l] = true
	}
	out := make([]Layer, 0, len(seen))
	for _, l := range AllLayers() {
		if seen[l] {
			out = append(out, l)
		}
	}
	return out
}
