package analyze

import (
	"sort"

	"github.com/ccfoodbank/pantrycast/loader"
)

// Category labels a census tract's food access problem.
type Category string

const (
	// Desert tracts have no food retailers at all.
	Desert Category = "FOOD DESERT (No stores)"
	// Scarce tracts have fewer than three retailers.
	Scarce Category = "SCARCE RESOURCES (Few stores)"
	// Swamp tracts have retailers, but almost none classified healthy.
	Swamp Category = "FOOD SWAMP (Unhealthy Access)"
	// HealthyAccess tracts need no intervention.
	HealthyAccess Category = "Healthy Access"
)

// classification cutoffs, fixed by the analysts
const (
	scarceStoreCutoff = 3
	swampScoreCutoff  = 10
)

// Classify derives a category from a tract's retailer count and access
// score. Pure function of the current values.
func Classify(total, score float64) Category {
	switch {
	case total == 0:
		return Desert
	case total < scarceStoreCutoff:
		return Scarce
	case score < swampScoreCutoff:
		return Swamp
	default:
		return HealthyAccess
	}
}

// Action maps a category to the recommended operational response.
func Action(c Category) string {
	switch c {
	case Desert:
		return "Deploy Mobile Pantry (Primary Target)"
	case Scarce:
		return "Deploy Mobile Pantry (Secondary Target)"
	case Swamp:
		return "Partner/Educate Corner Stores"
	default:
		return "No intervention needed"
	}
}

// HealthyRatio is the share of retailers classified healthy. Zero
// retailers yields zero rather than dividing by zero.
func HealthyRatio(healthy, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return healthy / total
}

// GapAssessment pairs a tract with its diagnosis.
type GapAssessment struct {
	Tract    loader.Tract
	Category Category
	Action   string
	Ratio    float64
}

// AssessGaps classifies every tract and returns the n lowest-scoring
// ones first, the priority list for mobile pantry routing.
func AssessGaps(tracts []loader.Tract, n int) []GapAssessment {
	ranked := make([]loader.Tract, len(tracts))
	copy(ranked, tracts)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}

	out := make([]GapAssessment, 0, len(ranked))
	for _, t := range ranked {
		c := Classify(t.Total, t.Score)
		out = append(out, GapAssessment{
			Tract:    t,
			Category: c,
			Action:   Action(c),
			Ratio:    HealthyRatio(t.Healthy, t.Total),
		})
	}
	return out
}

// swamp/oasis screening cutoffs from the advanced visuals pass
const (
	swampMinStores = 10
	swampMaxRatio  = 0.15
	oasisMinStores = 3
	oasisMinRatio  = 0.4
)

// SwampExamples returns tracts with many retailers but almost no
// healthy ones, densest first.
func SwampExamples(tracts []loader.Tract) []loader.Tract {
	var out []loader.Tract
	for _, t := range tracts {
		if t.Total > swampMinStores && HealthyRatio(t.Healthy, t.Total) < swampMaxRatio {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// OasisExamples returns tracts with a high share of healthy retailers,
// healthiest first.
func OasisExamples(tracts []loader.Tract) []loader.Tract {
	var out []loader.Tract
	for _, t := range tracts {
		if t.Total > oasisMinStores && HealthyRatio(t.Healthy, t.Total) > oasisMinRatio {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return HealthyRatio(out[i].Healthy, out[i].Total) > HealthyRatio(out[j].Healthy, out[j].Total)
	})
	return out
}
