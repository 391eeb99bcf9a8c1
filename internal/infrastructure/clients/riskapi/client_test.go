package riskapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/pkg/config"
)

func TestScore_PostsFeaturesAndDecodesScore(t *testing.T) {
	var received entities.ClaimFeatures
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"risk_score": 0.8123,
			"predicted":  1,
			"icd_ccs_id": "CIR007",
		})
	}))
	defer server.Close()

	client, err := NewClient(&config.RiskAPIConfig{BaseURL: server.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	features := entities.ClaimFeatures{
		CPT: "99213", Payer: "Aetna", POS: "office", Duration: 25,
		ICDCount: 1, ModifierCount: 1, HasModifier25: 1, PrimaryICD: "I10",
	}
	score, err := client.Score(context.Background(), features)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received.CPT != "99213" || received.HasModifier25 != 1 {
		t.Errorf("request carried wrong features: %+v", received)
	}
	if score.RiskScore != 0.8123 || score.Predicted != 1 || score.ICDCCSID != "CIR007" {
		t.Errorf("wrong score: %+v", score)
	}
}

func TestScore_NonOKStatus_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := NewClient(&config.RiskAPIConfig{BaseURL: server.URL})
	_, err := client.Score(context.Background(), entities.ClaimFeatures{})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(&config.RiskAPIConfig{}); err == nil {
		t.Fatal("expected error for missing base url")
	}
}
