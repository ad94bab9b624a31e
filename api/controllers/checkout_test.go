package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pmcell/catalog-backend/internal/orders"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
)

type stubCheckout struct {
	placed   orders.PlaceOrderInput
	placeErr error
	byCode   map[string]*orders.OrderDTO
	getErr   error
}

func (s *stubCheckout) PlaceOrder(_ context.Context, input orders.PlaceOrderInput) (*orders.OrderDTO, error) {
	s.placed = input
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return &orders.OrderDTO{Code: "PM20260314ABC123"}, nil
}

func (s *stubCheckout) GetByCode(_ context.Context, code string) (*orders.OrderDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if order, ok := s.byCode[code]; ok {
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Pedido não encontrado")
}

func TestCheckoutJSON(t *testing.T) {
	svc := &stubCheckout{}
	rec := postJSON(Checkout(svc, logger.Nop()),
		`{"nome_cliente":"  Ana  ","whatsapp":"11999998888","observacoes":"<b>sem pressa</b>","cart_items":[{"productId":1,"productType":"normal","price":0.01},{"productId":"bad"}]}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["order_code"] != "PM20260314ABC123" {
		t.Fatalf("unexpected order code %v", body["order_code"])
	}
	if body["redirect_url"] != "/checkout/success/?order=PM20260314ABC123" {
		t.Fatalf("unexpected redirect %v", body["redirect_url"])
	}
	if svc.placed.CustomerName != "Ana" {
		t.Fatalf("expected trimmed name, got %q", svc.placed.CustomerName)
	}
	if len(svc.placed.Items) != 1 || svc.placed.Items[0].Quantity != 1 {
		t.Fatalf("expected one line with default quantity, got %+v", svc.placed.Items)
	}
}

func TestCheckoutForm(t *testing.T) {
	svc := &stubCheckout{}
	form := url.Values{
		"nome_cliente": {"Bia"},
		"whatsapp":     {"11988887777"},
		"sessao_id":    {"s-1"},
		"cart_items":   {`[{"productId":1,"productType":"capa_pelicula","modelId":2,"quantity":3}]`},
	}
	req := httptest.NewRequest(http.MethodPost, "/checkout/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	Checkout(svc, logger.Nop())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.placed.SessionID != "s-1" || len(svc.placed.Items) != 1 {
		t.Fatalf("unexpected input %+v", svc.placed)
	}
	line := svc.placed.Items[0]
	if line.ModelID == nil || *line.ModelID != 2 || line.Quantity != 3 {
		t.Fatalf("unexpected line %+v", line)
	}
}

func TestCheckoutRejectsMalformedFormCart(t *testing.T) {
	svc := &stubCheckout{}
	form := url.Values{"whatsapp": {"11988887777"}, "cart_items": {"{oops"}}
	req := httptest.NewRequest(http.MethodPost, "/checkout/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	Checkout(svc, logger.Nop())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if decodeBody(t, rec)["success"] != false {
		t.Fatalf("expected success false, got %s", rec.Body.String())
	}
}

func TestCheckoutServiceError(t *testing.T) {
	svc := &stubCheckout{placeErr: pkgerrors.New(pkgerrors.CodeValidation, "Carrinho vazio")}
	rec := postJSON(Checkout(svc, logger.Nop()), `{"whatsapp":"11999998888","cart_items":[]}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Carrinho vazio" {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestCheckoutOrderCodeCollisionIsGeneric500(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: orders.code")
	svc := &stubCheckout{placeErr: pkgerrors.Wrap(pkgerrors.CodeInternal, cause, "order code already taken")}
	rec := postJSON(Checkout(svc, logger.Nop()), `{"whatsapp":"11999998888","cart_items":[{"productId":1,"productType":"normal","quantity":1}]}`, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Erro interno do servidor" {
		t.Fatalf("unexpected error %v", got)
	}
}

func TestCheckoutSuccess(t *testing.T) {
	svc := &stubCheckout{byCode: map[string]*orders.OrderDTO{
		"PM1": {Code: "PM1", CustomerName: "Ana"},
	}}
	handler := CheckoutSuccess(svc, logger.Nop())

	cases := []struct {
		name      string
		query     string
		wantOrder bool
	}{
		{name: "known", query: "?order=PM1", wantOrder: true},
		{name: "unknown", query: "?order=PM2"},
		{name: "missing", query: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/checkout/success/"+tc.query, nil)
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			order := decodeBody(t, rec)["order"]
			if tc.wantOrder == (order == nil) {
				t.Fatalf("unexpected order %v", order)
			}
		})
	}
}

func TestCheckoutSuccessStoreFailure(t *testing.T) {
	svc := &stubCheckout{getErr: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	req := httptest.NewRequest(http.MethodGet, "/checkout/success/?order=PM1", nil)
	rec := httptest.NewRecorder()
	CheckoutSuccess(svc, logger.Nop())(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
