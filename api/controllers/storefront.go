package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pmcell/catalog-backend/api/responses"
	"github.com/pmcell/catalog-backend/api/validators"
	"github.com/pmcell/catalog-backend/internal/abandonedcart"
	"github.com/pmcell/catalog-backend/internal/cart"
	"github.com/pmcell/catalog-backend/internal/journey"
	"github.com/pmcell/catalog-backend/internal/liberation"
	"github.com/pmcell/catalog-backend/pkg/enums"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

// journeyTracker is the slice of journey.Service the storefront handlers use.
type journeyTracker interface {
	Track(ctx context.Context, input journey.TrackInput) (string, error)
}

type successResponse struct {
	Success bool `json:"success"`
}

type liberatePricesRequest struct {
	WhatsApp  string `json:"whatsapp"`
	Timestamp string `json:"timestamp"`
	SessionID string `json:"sessao_id"`
}

// LiberatePrices unlocks prices for a WhatsApp contact.
func LiberatePrices(svc liberation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req liberatePricesRequest
		if err := validators.DecodeLenientBody(w, r, &req); err != nil {
			responses.WriteStorefrontMessage(r.Context(), logg, w, err)
			return
		}
		if _, err := svc.Liberate(r.Context(), liberation.Input{
			WhatsApp:  req.WhatsApp,
			Timestamp: req.Timestamp,
			SessionID: req.SessionID,
		}); err != nil {
			responses.WriteStorefrontMessage(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// AddToCart is tracking only: the cart itself lives in the browser. An
// event is appended when the visitor has identified themselves.
func AddToCart(svc journeyTracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := validators.DecodeLenientBody(w, r, &payload); err != nil {
			payload = nil
		}
		if number := cookieWhatsApp(r); number != "" {
			if _, err := svc.Track(r.Context(), journey.TrackInput{
				Event:    string(enums.JourneyEventItemAdicionado),
				Payload:  payload,
				WhatsApp: number,
			}); err != nil && logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "cart.track_failed")
			}
		}
		responses.WriteJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

type cartItemsRequest struct {
	Cart []json.RawMessage `json:"cart"`
}

// cartEntries decodes each entry on its own so one malformed line does not
// reject the whole cart. A missing quantity means one unit.
func cartEntries(raw []json.RawMessage) []cart.Entry {
	entries := make([]cart.Entry, 0, len(raw))
	for _, item := range raw {
		entry := cart.Entry{Quantity: 1}
		if err := json.Unmarshal(item, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

type cartItemsResponse struct {
	Success bool        `json:"success"`
	Items   []cart.Item `json:"items"`
}

// GetCartItems hydrates the browser cart with current names and prices.
func GetCartItems(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartItemsRequest
		if err := validators.DecodeLenientBody(w, r, &req); err != nil {
			responses.WriteStorefrontMessage(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Hydrate(r.Context(), cartEntries(req.Cart))
		if err != nil {
			responses.WriteStorefrontMessage(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []cart.Item{}
		}
		responses.WriteJSON(w, http.StatusOK, cartItemsResponse{Success: true, Items: items})
	}
}

type trackJourneyRequest struct {
	Event     string         `json:"evento"`
	Data      map[string]any `json:"dados"`
	SessionID string         `json:"sessao_id"`
	WhatsApp  string         `json:"whatsapp"`
}

type trackJourneyResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessao_id"`
}

func TrackJourney(svc journeyTracker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req trackJourneyRequest
		if err := validators.DecodeLenientBody(w, r, &req); err != nil {
			responses.WriteStorefrontMessage(r.Context(), logg, w, err)
			return
		}
		number := strings.TrimSpace(req.WhatsApp)
		if number == "" {
			number = cookieWhatsApp(r)
		}
		sessionID, err := svc.Track(r.Context(), journey.TrackInput{
			Event:     req.Event,
			Payload:   req.Data,
			SessionID: req.SessionID,
			WhatsApp:  number,
		})
		if err != nil {
			responses.WriteStorefrontMessage(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, trackJourneyResponse{Success: true, SessionID: sessionID})
	}
}

type abandonedCartRequest struct {
	WhatsApp       string          `json:"whatsapp"`
	CartData       json.RawMessage `json:"cart_data"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	SessionID      string          `json:"sessao_id"`
}

func TrackAbandonedCart(svc abandonedcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req abandonedCartRequest
		if err := validators.DecodeLenientBody(w, r, &req); err != nil {
			responses.WriteStorefrontMessage(r.Context(), logg, w, err)
			return
		}
		number := strings.TrimSpace(req.WhatsApp)
		if number == "" {
			number = cookieWhatsApp(r)
		}
		ctx := logg.WithWhatsApp(r.Context(), number)
		if _, err := svc.Track(ctx, abandonedcart.TrackInput{
			WhatsApp:       number,
			CartData:       req.CartData,
			EstimatedValue: req.EstimatedValue,
			SessionID:      req.SessionID,
		}); err != nil {
			responses.WriteStorefrontMessage(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, successResponse{Success: true})
	}
}
