package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/repositories"
	apperrors "github.com/clinicore/claimgen/pkg/errors"
)

// ClaimService is the application-service surface the handler depends on
type ClaimService interface {
	Generate(ctx context.Context, note string) (*entities.ClaimRecord, error)
	GetByID(ctx context.Context, id string) (*entities.ClaimRecord, error)
	List(ctx context.Context, filter repositories.ClaimFilter) ([]*entities.ClaimRecord, error)
}

// ClaimHandler handles claim-related HTTP requests
type ClaimHandler struct {
	claimService ClaimService
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler(claimService ClaimService) *ClaimHandler {
	return &ClaimHandler{
		claimService: claimService,
	}
}

// GenerateClaimRequest is the claim generation request body
type GenerateClaimRequest struct {
	Note string `json:"note"`
}

// GenerateClaim handles POST /api/claims/generate
func (h *ClaimHandler) GenerateClaim(w http.ResponseWriter, r *http.Request) {
	var req GenerateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Note) == "" {
		respondWithError(w, http.StatusBadRequest, "note is required")
		return
	}

	record, err := h.claimService.Generate(r.Context(), req.Note)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// GetClaim handles GET /api/claims/{id}
func (h *ClaimHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	claimID := r.PathValue("id")
	if claimID == "" {
		respondWithError(w, http.StatusBadRequest, "claim ID is required")
		return
	}

	record, err := h.claimService.GetByID(r.Context(), claimID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// ListClaims handles GET /api/claims
func (h *ClaimHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ClaimFilter{
		Limit:  50,
		Offset: 0,
	}

	query := r.URL.Query()
	if v := query.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if v := query.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if v := query.Get("requires_modifier"); v != "" {
		if requires, err := strconv.ParseBool(v); err == nil {
			filter.RequiresModifier = &requires
		}
	}

	records, err := h.claimService.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"claims": records,
		"count":  len(records),
	})
}

// respondWithAppError maps the error taxonomy onto HTTP statuses. A
// validation error here is a claim the pipeline could not complete, not
// a malformed request, hence 422 rather than 400.
func respondWithAppError(w http.ResponseWriter, err error) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, err.Error())
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case apperrors.ErrorTypeExternal:
		respondWithError(w, http.StatusBadGateway, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
