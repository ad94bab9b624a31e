package controllers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/pmcell/catalog-backend/api/responses"
	"github.com/pmcell/catalog-backend/api/validators"
	"github.com/pmcell/catalog-backend/internal/orders"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

const (
	maxCustomerNameLen = 200
	maxNotesLen        = 2000
	successPath        = "/checkout/success/"
)

type checkoutService interface {
	PlaceOrder(ctx context.Context, input orders.PlaceOrderInput) (*orders.OrderDTO, error)
	GetByCode(ctx context.Context, code string) (*orders.OrderDTO, error)
}

// checkoutLine is a cart entry as the storefront posts it. Any client price
// or total is ignored.
type checkoutLine struct {
	ProductID   uint   `json:"productId"`
	ProductType string `json:"productType"`
	ModelID     *uint  `json:"modelId"`
	Quantity    int    `json:"quantity"`
}

type checkoutRequest struct {
	CustomerName string            `json:"nome_cliente"`
	WhatsApp     string            `json:"whatsapp"`
	CartItems    []json.RawMessage `json:"cart_items"`
	Notes        string            `json:"observacoes"`
	SessionID    string            `json:"sessao_id"`
}

type checkoutResponse struct {
	Success     bool   `json:"success"`
	OrderCode   string `json:"order_code"`
	RedirectURL string `json:"redirect_url"`
}

// Checkout places an order from a JSON or form submission.
func Checkout(svc checkoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeCheckout(w, r)
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), orders.PlaceOrderInput{
			CustomerName: validators.SanitizeString(req.CustomerName, maxCustomerNameLen),
			WhatsApp:     strings.TrimSpace(req.WhatsApp),
			Items:        checkoutLines(req.CartItems),
			Notes:        validators.SanitizeString(req.Notes, maxNotesLen),
			SessionID:    strings.TrimSpace(req.SessionID),
		})
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, checkoutResponse{
			Success:     true,
			OrderCode:   order.Code,
			RedirectURL: successPath + "?order=" + url.QueryEscape(order.Code),
		})
	}
}

func decodeCheckout(w http.ResponseWriter, r *http.Request) (checkoutRequest, error) {
	var req checkoutRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := validators.DecodeLenientBody(w, r, &req)
		return req, err
	}

	if err := r.ParseForm(); err != nil {
		return req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	req.CustomerName = r.PostForm.Get("nome_cliente")
	req.WhatsApp = r.PostForm.Get("whatsapp")
	req.Notes = r.PostForm.Get("observacoes")
	req.SessionID = r.PostForm.Get("sessao_id")
	if raw := strings.TrimSpace(r.PostForm.Get("cart_items")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.CartItems); err != nil {
			return req, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart_items")
		}
	}
	return req, nil
}

func checkoutLines(raw []json.RawMessage) []orders.LineInput {
	lines := make([]orders.LineInput, 0, len(raw))
	for _, item := range raw {
		line := checkoutLine{Quantity: 1}
		if err := json.Unmarshal(item, &line); err != nil {
			continue
		}
		lines = append(lines, orders.LineInput{
			ProductID:   line.ProductID,
			ProductType: line.ProductType,
			ModelID:     line.ModelID,
			Quantity:    line.Quantity,
		})
	}
	return lines
}

type checkoutSuccessResponse struct {
	OrderCode string           `json:"order_code"`
	Order     *orders.OrderDTO `json:"order"`
}

// CheckoutSuccess shows the order summary. An unknown code is not an error
// on this page: the order is simply null.
func CheckoutSuccess(svc checkoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(r.URL.Query().Get("order"))
		resp := checkoutSuccessResponse{OrderCode: code}
		if code != "" {
			order, err := svc.GetByCode(r.Context(), code)
			switch {
			case err == nil:
				resp.Order = order
			case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
			default:
				responses.WriteStorefrontError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteJSON(w, http.StatusOK, resp)
	}
}
