package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ra-risk-server/internal/domain"
)

func TestComputeFlags_Scenario(t *testing.T) {
	flags := ComputeFlags(domain.BiomarkerPanel{
		Age: 45, Gender: domain.GenderFemale, ESR: 25, CRP: 8, RF: 16, AntiCCP: 10,
	})

	assert.Equal(t, domain.BiomarkerFlags{
		ESR:     domain.FlagBorderline,
		CRP:     domain.FlagBorderline,
		RF:      domain.FlagBorderline,
		AntiCCP: domain.FlagNormal,
	}, flags)
}

func TestComputeFlags_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		panel    domain.BiomarkerPanel
		expected domain.BiomarkerFlags
	}{
		{
			name:     "pediatric ESR upper edge is borderline",
			panel:    domain.BiomarkerPanel{Age: 10, ESR: 20},
			expected: domain.BiomarkerFlags{ESR: 1},
		},
		{
			name:     "pediatric ESR lower edge is borderline",
			panel:    domain.BiomarkerPanel{Age: 10, ESR: 10, CRP: 10.01},
			expected: domain.BiomarkerFlags{ESR: 1, CRP: 2},
		},
		{
			name:     "age 18 uses adult female ESR",
			panel:    domain.BiomarkerPanel{Age: 18, Gender: domain.GenderFemale, ESR: 19.9},
			expected: domain.BiomarkerFlags{ESR: 0},
		},
		{
			name:     "age 18 uses adult male ESR",
			panel:    domain.BiomarkerPanel{Age: 18, Gender: domain.GenderMale, ESR: 19.9},
			expected: domain.BiomarkerFlags{ESR: 1},
		},
		{
			name:     "age 60 is still adult",
			panel:    domain.BiomarkerPanel{Age: 60, Gender: domain.GenderMale, ESR: 31, CRP: 20, RF: 14},
			expected: domain.BiomarkerFlags{ESR: 2, CRP: 1, RF: 1},
		},
		{
			name:     "senior ignores gender for ESR",
			panel:    domain.BiomarkerPanel{Age: 61, Gender: domain.GenderMale, ESR: 50, CRP: 9.9, RF: 41},
			expected: domain.BiomarkerFlags{ESR: 1, CRP: 0, RF: 2},
		},
		{
			name:     "anti-CCP 40 is elevated at any age",
			panel:    domain.BiomarkerPanel{Age: 5, AntiCCP: 40},
			expected: domain.BiomarkerFlags{AntiCCP: 2},
		},
		{
			name:     "anti-CCP 20 is borderline",
			panel:    domain.BiomarkerPanel{Age: 70, AntiCCP: 20},
			expected: domain.BiomarkerFlags{AntiCCP: 1},
		},
		{
			name:     "negative values are normal",
			panel:    domain.BiomarkerPanel{Age: 30, ESR: -5, CRP: -1, RF: -2, AntiCCP: -3},
			expected: domain.BiomarkerFlags{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeFlags(tt.panel))
		})
	}
}

func TestComputeFlags_Monotonic(t *testing.T) {
	for _, age := range []float64{5, 18, 35, 60, 75} {
		for _, gender := range []domain.Gender{domain.GenderMale, domain.GenderFemale} {
			prev := domain.BiomarkerFlags{}
			for v := 0.0; v <= 80; v += 0.5 {
				flags := ComputeFlags(domain.BiomarkerPanel{Age: age, Gender: gender, ESR: v, CRP: v, RF: v, AntiCCP: v})
				assert.GreaterOrEqual(t, flags.ESR, prev.ESR, "ESR age=%v v=%v", age, v)
				assert.GreaterOrEqual(t, flags.CRP, prev.CRP, "CRP age=%v v=%v", age, v)
				assert.GreaterOrEqual(t, flags.RF, prev.RF, "RF age=%v v=%v", age, v)
				assert.GreaterOrEqual(t, flags.AntiCCP, prev.AntiCCP, "AntiCCP age=%v v=%v", age, v)
				prev = flags
			}
		}
	}
}

func TestFeatureVector_Order(t *testing.T) {
	panel := domain.BiomarkerPanel{Age: 52, Gender: domain.GenderMale, ESR: 1, CRP: 2, RF: 3, AntiCCP: 4}
	flags := domain.BiomarkerFlags{ESR: 0, CRP: 1, RF: 2, AntiCCP: 0}

	assert.Equal(t, domain.FeatureVector{52, 1, 1, 2, 3, 4, 0, 1, 2, 0}, FeatureVector(panel, flags))
}

func TestReferenceBands(t *testing.T) {
	bands := ReferenceBands()
	require.Len(t, bands, 13)

	adultFemaleESR := bands[5]
	assert.Equal(t, "ESR", adultFemaleESR.Marker)
	assert.Equal(t, "adult", adultFemaleESR.Bracket)
	assert.Equal(t, "Female", adultFemaleESR.Sex)
	assert.Equal(t, 20.0, adultFemaleESR.BorderlineLow)
	assert.Equal(t, 40.0, adultFemaleESR.BorderlineHigh)

	antiCCP := bands[len(bands)-1]
	assert.False(t, antiCCP.HighInclusive)
	assert.Equal(t, 40.0, antiCCP.BorderlineHigh)
}
