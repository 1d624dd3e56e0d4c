package vegetation

import "math"

// epsilon keeps index denominators away from zero.
const epsilon = 0.001

type indexFunc func(r, g, b float64) float64

// indexFormulas maps each domain to its formula. Nursery stock is green
// foliage and shares the standard formula.
var indexFormulas = [numDomains]indexFunc{
	DomainStandard:   standardIndex,
	DomainPurple:     purpleIndex,
	DomainVariegated: variegatedIndex,
	DomainSucculent:  succulentIndex,
	DomainFlowering:  floweringIndex,
	DomainNursery:    standardIndex,
}

func standardIndex(r, g, b float64) float64 {
	return (g - r) / (g + r - b + epsilon)
}

func purpleIndex(r, g, b float64) float64 {
	return (r - g) / (r + g - b + epsilon)
}

func variegatedIndex(r, g, b float64) float64 {
	variance := math.Abs(g-r) + math.Abs(g-b) + math.Abs(r-b)
	return standardIndex(r, g, b) * (1 - 0.2*variance)
}

func succulentIndex(r, g, b float64) float64 {
	return (g - 0.8*r) / (g + r - 1.2*b + epsilon)
}

// floweringIndex reads saturated pixels as neutral so blooms that slip past
// the flower screen do not drag the score either way.
func floweringIndex(r, g, b float64) float64 {
	if max(r, g, b)-min(r, g, b) > 0.5 {
		return 0
	}
	return standardIndex(r, g, b)
}

// Index computes the vegetation index of a normalized pixel for a domain.
// Non-finite results are replaced with 0.
func Index(r, g, b float64, d Domain) float64 {
	f := indexFormulas[DomainStandard]
	if d >= 0 && d < numDomains {
		f = indexFormulas[d]
	}
	v := f(r, g, b)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
