package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pmcell/catalog-backend/internal/cart"
	"github.com/pmcell/catalog-backend/internal/journey"
	"github.com/pmcell/catalog-backend/internal/liberation"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

type stubLiberation struct {
	got liberation.Input
	err error
}

func (s *stubLiberation) Liberate(_ context.Context, input liberation.Input) (string, error) {
	s.got = input
	if s.err != nil {
		return "", s.err
	}
	return "11999998888", nil
}

type stubJourney struct {
	calls []journey.TrackInput
	err   error
}

func (s *stubJourney) Track(_ context.Context, input journey.TrackInput) (string, error) {
	s.calls = append(s.calls, input)
	if s.err != nil {
		return "", s.err
	}
	return "session-1", nil
}

type stubCart struct {
	entries []cart.Entry
}

func (s *stubCart) Hydrate(_ context.Context, entries []cart.Entry) ([]cart.Item, error) {
	s.entries = entries
	return nil, nil
}

func postJSON(handler http.HandlerFunc, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestLiberatePricesPassesInput(t *testing.T) {
	svc := &stubLiberation{}
	rec := postJSON(LiberatePrices(svc, logger.Nop()),
		`{"whatsapp":"(11) 99999-8888","timestamp":"2026-03-14T10:00:00Z","sessao_id":"abc"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.got.WhatsApp != "(11) 99999-8888" || svc.got.SessionID != "abc" {
		t.Fatalf("unexpected input %+v", svc.got)
	}
	if decodeBody(t, rec)["success"] != true {
		t.Fatalf("expected success true, got %s", rec.Body.String())
	}
}

func TestLiberatePricesReportsValidationMessage(t *testing.T) {
	svc := &stubLiberation{err: pkgerrors.New(pkgerrors.CodeValidation, "WhatsApp inválido")}
	rec := postJSON(LiberatePrices(svc, logger.Nop()), `{"whatsapp":"1"}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "WhatsApp inválido" {
		t.Fatalf("unexpected error message %v", got)
	}
}

func TestLiberatePricesHidesInternalErrors(t *testing.T) {
	svc := &stubLiberation{err: pkgerrors.New(pkgerrors.CodeDependency, "redis down")}
	rec := postJSON(LiberatePrices(svc, logger.Nop()), `{"whatsapp":"11999998888"}`, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Erro interno do servidor" {
		t.Fatalf("unexpected error message %v", got)
	}
}

func TestAddToCartTracksOnlyIdentifiedVisitors(t *testing.T) {
	svc := &stubJourney{}
	handler := AddToCart(svc, logger.Nop())

	rec := postJSON(handler, `{"productId":1}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("expected no journey event without cookie, got %d", len(svc.calls))
	}

	rec = postJSON(handler, `{"productId":1}`, &http.Cookie{Name: whatsappCookie, Value: "11999998888"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.calls) != 1 || svc.calls[0].Event != "item_adicionado" {
		t.Fatalf("expected one item_adicionado event, got %+v", svc.calls)
	}
}

func TestAddToCartIgnoresTrackingFailure(t *testing.T) {
	svc := &stubJourney{err: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	rec := postJSON(AddToCart(svc, logger.Nop()), `not json`, &http.Cookie{Name: whatsappCookie, Value: "11999998888"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGetCartItemsDefaultsQuantity(t *testing.T) {
	svc := &stubCart{}
	rec := postJSON(GetCartItems(svc, logger.Nop()),
		`{"cart":[{"productId":2,"productType":"normal"},{"productId":true},{"productId":1,"productType":"capa_pelicula","modelId":3,"quantity":4}]}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", svc.entries)
	}
	if svc.entries[0].Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", svc.entries[0].Quantity)
	}
	if svc.entries[1].ModelID == nil || *svc.entries[1].ModelID != 3 || svc.entries[1].Quantity != 4 {
		t.Fatalf("unexpected variant entry %+v", svc.entries[1])
	}
	items, ok := decodeBody(t, rec)["items"].([]any)
	if !ok || len(items) != 0 {
		t.Fatalf("expected an empty items array, got %s", rec.Body.String())
	}
}

func TestTrackJourneyFallsBackToCookie(t *testing.T) {
	svc := &stubJourney{}
	rec := postJSON(TrackJourney(svc, logger.Nop()), `{"evento":"entrada"}`,
		&http.Cookie{Name: whatsappCookie, Value: "11%2099999-8888"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.calls) != 1 || svc.calls[0].WhatsApp != "11 99999-8888" {
		t.Fatalf("expected cookie number, got %+v", svc.calls)
	}
	if got := decodeBody(t, rec)["sessao_id"]; got != "session-1" {
		t.Fatalf("unexpected session id %v", got)
	}
}
