package analyze

import (
	"testing"

	"github.com/ccfoodbank/pantrycast/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testData := map[string]struct {
		total    float64
		score    float64
		expected Category
	}{
		"no stores":            {total: 0, score: 0, expected: Desert},
		"two stores":           {total: 2, score: 50, expected: Scarce},
		"many unhealthy":       {total: 15, score: 5, expected: Swamp},
		"healthy":              {total: 8, score: 40, expected: HealthyAccess},
		"store cutoff is open": {total: 3, score: 10, expected: HealthyAccess},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			c := Classify(td.total, td.score)
			assert.Equal(t, td.expected, c)
			assert.NotEmpty(t, Action(c))
		})
	}
}

func TestHealthyRatio(t *testing.T) {
	assert.Equal(t, 0.0, HealthyRatio(0, 0))
	assert.Equal(t, 0.25, HealthyRatio(1, 4))
}

func TestAssessGaps(t *testing.T) {
	tracts := []loader.Tract{
		{Name: "Census Tract 3551.12", Healthy: 4, Total: 8, Score: 30},
		{Name: "Census Tract 3010.00", Healthy: 0, Total: 0, Score: 0},
		{Name: "Census Tract 3020.05", Healthy: 1, Total: 12, Score: 5},
	}

	gaps := AssessGaps(tracts, 2)
	require.Len(t, gaps, 2)

	// lowest score first
	assert.Equal(t, "Census Tract 3010.00", gaps[0].Tract.Name)
	assert.Equal(t, Desert, gaps[0].Category)
	assert.Equal(t, "Deploy Mobile Pantry (Primary Target)", gaps[0].Action)
	assert.Equal(t, 0.0, gaps[0].Ratio)

	assert.Equal(t, Swamp, gaps[1].Category)
	assert.InDelta(t, 1.0/12.0, gaps[1].Ratio, 1e-12)
}

func TestSwampAndOasisExamples(t *testing.T) {
	tracts := []loader.Tract{
		{Name: "dense swamp", Healthy: 1, Total: 20, Score: 5},
		{Name: "denser swamp", Healthy: 2, Total: 30, Score: 7},
		{Name: "oasis", Healthy: 5, Total: 8, Score: 62},
		{Name: "small", Healthy: 1, Total: 2, Score: 50},
		{Name: "middling", Healthy: 3, Total: 12, Score: 25},
	}

	swamps := SwampExamples(tracts)
	require.Len(t, swamps, 2)
	assert.Equal(t, "denser swamp", swamps[0].Name)
	assert.Equal(t, "dense swamp", swamps[1].Name)

	oases := OasisExamples(tracts)
	require.Len(t, oases, 1)
	assert.Equal(t, "oasis", oases[0].Name)
}
