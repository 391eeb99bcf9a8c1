package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinicore/claimgen/internal/domain/entities"
)

func TestBuildClaimFeatures(t *testing.T) {
	state := &entities.PipelineState{
		Context: entities.EncounterContext{
			Duration:       "25 minutes",
			PlaceOfService: "11",
		},
		Bundle: entities.CodeBundle{
			CPT:        "99213",
			ICD:        []string{"I10", "E11.9"},
			Modifiers:  []string{"25"},
			Procedures: []string{"ECG"},
		},
	}

	features := BuildClaimFeatures(state, "Aetna")

	assert.Equal(t, "99213", features.CPT)
	assert.Equal(t, "Aetna", features.Payer)
	assert.Equal(t, "11", features.POS)
	assert.Equal(t, 25, features.Duration)
	assert.Equal(t, 2, features.ICDCount)
	assert.Equal(t, 1, features.ModifierCount)
	assert.Equal(t, 1, features.HasModifier25)
	assert.Equal(t, 1, features.ProceduresCount)
	assert.Equal(t, "I10", features.PrimaryICD)
}

func TestBuildClaimFeaturesDegradedState(t *testing.T) {
	features := BuildClaimFeatures(&entities.PipelineState{}, "Aetna")

	assert.Equal(t, "", features.CPT)
	assert.Equal(t, 0, features.Duration)
	assert.Equal(t, 0, features.ICDCount)
	assert.Equal(t, 0, features.HasModifier25)
	assert.Equal(t, "", features.PrimaryICD)
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"25 minutes", 25},
		{"approx 40 min", 40},
		{"half an hour", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := parseDurationMinutes(tt.text); got != tt.want {
			t.Errorf("parseDurationMinutes(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
