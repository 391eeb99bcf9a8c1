package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clinicore/claimgen/internal/domain/entities"
	apperrors "github.com/clinicore/claimgen/pkg/errors"
)

// FormatterStage renders the final bundle and context into the
// fixed-segment 837P transaction. Pure template substitution: no
// retrieval, no completion, no branching beyond interpolation.
//
// Only the first diagnosis code is embedded; the template carries no
// segments for the rest. Modifiers are colon-joined in whatever order the
// bundle's set currently holds.
type FormatterStage struct {
	clock func() time.Time
}

// NewFormatterStage creates the claim formatting stage.
func NewFormatterStage(clock func() time.Time) *FormatterStage {
	if clock == nil {
		clock = time.Now
	}
	return &FormatterStage{clock: clock}
}

// Name returns the stage name.
func (s *FormatterStage) Name() string { return "format" }

// Run populates state.EDI. A claim cannot be emitted without a primary
// procedure code and a non-blank first diagnosis code; those are the only
// terminal content errors of a run. Every other blank value is
// substituted as-is.
func (s *FormatterStage) Run(ctx context.Context, state *entities.PipelineState) error {
	if state.Bundle.CPT == "" {
		return apperrors.NewValidationError("cannot format claim: missing primary procedure code")
	}
	if len(state.Bundle.ICD) == 0 || state.Bundle.ICD[0] == "" {
		return apperrors.NewValidationError("cannot format claim: missing primary diagnosis code")
	}

	now := s.clock()
	state.EDI = fmt.Sprintf(`ISA*00*...*GS*HC*SUBMITTER*PAYER*%s*%s*X*005010X222A1~
NM1*85*2*%s*****XX*1234567890~
HL*1**20*1~
NM1*IL*1*DOE*JANE****MI*123456789~
SV1*HC:%s:%s*...
HI*ABK:%s~
...~
SE*23*0001~GE*1*1~IEA*1*000000905~`,
		now.Format("20060102"),
		now.Format("1504"),
		state.Context.Provider,
		state.Bundle.CPT,
		strings.Join(state.Bundle.Modifiers, ":"),
		state.Bundle.ICD[0],
	)
	return nil
}
