package services

import (
	"regexp"
	"strconv"

	"github.com/clinicore/claimgen/internal/domain/entities"
)

var leadingMinutesPattern = regexp.MustCompile(`\d+`)

// BuildClaimFeatures flattens a terminal pipeline state into the record
// the denial-risk predictor consumes. Missing inputs degrade to zero
// values; the predictor tolerates sparse records.
func BuildClaimFeatures(state *entities.PipelineState, payer string) entities.ClaimFeatures {
	features := entities.ClaimFeatures{
		CPT:             state.Bundle.CPT,
		Payer:           payer,
		POS:             state.Context.PlaceOfService,
		Duration:        parseDurationMinutes(state.Context.Duration),
		ICDCount:        len(state.Bundle.ICD),
		ModifierCount:   len(state.Bundle.Modifiers),
		ProceduresCount: len(state.Bundle.Procedures),
	}

	if state.Bundle.HasModifier("25") {
		features.HasModifier25 = 1
	}
	if len(state.Bundle.ICD) > 0 {
		features.PrimaryICD = state.Bundle.ICD[0]
	}

	return features
}

// parseDurationMinutes pulls the first integer out of free-text duration
// like "25 minutes". Anything unparsable reads as zero.
func parseDurationMinutes(text string) int {
	match := leadingMinutesPattern.FindString(text)
	if match == "" {
		return 0
	}
	minutes, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return minutes
}
