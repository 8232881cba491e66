package negotiation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/marketloop/negotiator/internal/config"
	listingModel "github.com/marketloop/negotiator/internal/model/listing"
	negotiationService "github.com/marketloop/negotiator/internal/service/negotiation"
	"github.com/marketloop/negotiator/internal/service/transcript"
)

func setupRouter() (*chi.Mux, *negotiationService.Service) {
	generator := negotiationService.NewScripted(
		[]string{"My offer is $450.", "ACCEPT $480"},
		[]string{"COUNTER: $480"},
	)
	store := transcript.NewMemoryStore()
	engine := negotiationService.NewEngine(generator, nil, store, 0)
	svc := negotiationService.NewService(engine, store)

	listings := listingModel.NewMemoryStore(listingModel.Seed())
	handler := New(svc, listings, config.NegotiationConfig{MaxRounds: 5})

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, svc
}

func TestStartNegotiationWithCatalogListing(t *testing.T) {
	r, _ := setupRouter()
	body := map[string]any{
		"listingId":      "vintage-camera",
		"buyerMaxBudget": 490,
		"sellerMinPrice": 400,
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/negotiations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var result negotiationService.Result
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.Outcome.Agreed {
		t.Fatalf("expected agreement, got %+v", result.Outcome)
	}
	if result.Outcome.FinalPrice == nil || *result.Outcome.FinalPrice != 480 {
		t.Fatalf("unexpected final price: %v", result.Outcome.FinalPrice)
	}
	if len(result.Transcript) == 0 {
		t.Fatal("expected transcript turns in response")
	}
}

func TestStartNegotiationUnknownListing(t *testing.T) {
	r, _ := setupRouter()
	body := map[string]any{
		"listingId":      "no-such-listing",
		"buyerMaxBudget": 490,
		"sellerMinPrice": 400,
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/negotiations", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStartNegotiationMissingBounds(t *testing.T) {
	r, _ := setupRouter()
	payload := []byte(`{"listingId":"vintage-camera"}`)

	req := httptest.NewRequest(http.MethodPost, "/negotiations", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetTranscriptAfterRun(t *testing.T) {
	r, _ := setupRouter()
	body := map[string]any{
		"listingId":      "vintage-camera",
		"buyerMaxBudget": 490,
		"sellerMinPrice": 400,
	}
	payload, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/negotiations", bytes.NewReader(payload))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var result negotiationService.Result
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/negotiations/"+result.Session.ID+"/transcript", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestGetTranscriptUnknownSession(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/negotiations/missing/transcript", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
