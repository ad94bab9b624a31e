// Package orders turns checkout submissions into priced orders and lets the
// admin move them through their lifecycle.
package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pmcell/catalog-backend/internal/catalog"
	"github.com/pmcell/catalog-backend/internal/journey"
	"github.com/pmcell/catalog-backend/internal/notifications"
	"github.com/pmcell/catalog-backend/pkg/db"
	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/logger"
	"github.com/pmcell/catalog-backend/pkg/pagination"
	"github.com/pmcell/catalog-backend/pkg/phone"
	"github.com/pmcell/catalog-backend/pkg/pricing"
)

const (
	// PageSize is the admin listing page size.
	PageSize = 20

	defaultCustomerName = "Cliente não informado"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type journeyTracker interface {
	Track(ctx context.Context, input journey.TrackInput) (string, error)
}

type purchaseRecorder interface {
	RecordPurchase(ctx context.Context, whatsapp, name string, total decimal.Decimal, at time.Time) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, event enums.WebhookEvent, payload map[string]any, onDelivered notifications.DeliveredFunc)
}

// Service defines order placement and the admin order operations.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error)
	GetByCode(ctx context.Context, code string) (*OrderDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	UpdateStatus(ctx context.Context, code, status string) (*OrderDTO, error)
}

// ServiceParams groups the order dependencies. Journey, Customers and
// Dispatcher are optional.
type ServiceParams struct {
	Repo       Repository
	Catalog    *catalog.Repository
	Tx         txRunner
	Journey    journeyTracker
	Customers  purchaseRecorder
	Dispatcher dispatcher
	Logger     *logger.Logger
	Now        func() time.Time
	NewID      func() string
}

type service struct {
	repo       Repository
	catalog    *catalog.Repository
	tx         txRunner
	journey    journeyTracker
	customers  purchaseRecorder
	dispatcher dispatcher
	logg       *logger.Logger
	now        func() time.Time
	newID      func() string
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.NewID == nil {
		params.NewID = uuid.NewString
	}
	return &service{
		repo:       params.Repo,
		catalog:    params.Catalog,
		tx:         params.Tx,
		journey:    params.Journey,
		customers:  params.Customers,
		dispatcher: params.Dispatcher,
		logg:       params.Logger,
		now:        params.Now,
		newID:      params.NewID,
	}, nil
}

// orderCode renders PM + YYYYMMDD + six upper-case hex characters.
func (s *service) orderCode(at time.Time) string {
	hex := strings.ToUpper(strings.ReplaceAll(s.newID(), "-", ""))
	if len(hex) > 6 {
		hex = hex[:6]
	}
	return "PM" + at.Format("20060102") + hex
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	number, ok := phone.Normalize(input.WhatsApp)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "WhatsApp inválido")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Carrinho vazio")
	}

	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		name = defaultCustomerName
	}
	now := s.now().UTC()
	order := &models.Order{
		Code:         s.orderCode(now),
		WhatsApp:     number,
		CustomerName: name,
		Status:       enums.OrderStatusPending,
		Notes:        strings.TrimSpace(input.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_code": order.Code,
		"whatsapp":   phone.Mask(number),
	})

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		products := s.catalog.WithTx(tx)
		lines := make([]models.OrderLine, 0, len(input.Items))
		total := decimal.Zero
		for i, item := range input.Items {
			line, reason, err := resolveLine(ctx, products, item)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve order line")
			}
			if line == nil {
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
					"line":         i,
					"product_id":   item.ProductID,
					"product_type": item.ProductType,
					"reason":       reason,
				}), "orders.line.skipped")
				continue
			}
			total = total.Add(line.LineTotal)
			lines = append(lines, *line)
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "Nenhum item disponível")
		}

		order.Lines = lines
		order.Total = total.Round(2)
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order code already taken")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"total": order.Total.StringFixed(2),
		"lines": len(order.Lines),
	}), "orders.placed")
	s.afterPlaced(ctx, order, input.SessionID)

	dto := ToDTO(order)
	return &dto, nil
}

// resolveLine prices one cart entry against the current catalog. A nil line
// with a reason means the entry is skipped.
func resolveLine(ctx context.Context, products *catalog.Repository, item LineInput) (*models.OrderLine, string, error) {
	kind, err := enums.ParseProductType(item.ProductType)
	if err != nil {
		return nil, "invalid product type", nil
	}
	if item.Quantity < 1 {
		return nil, "invalid quantity", nil
	}

	if kind == enums.ProductTypeNormal {
		product, err := products.FindSimple(ctx, item.ProductID)
		if db.IsNotFound(err) {
			return nil, "product unavailable", nil
		}
		if err != nil {
			return nil, "", err
		}
		unit, err := product.Tier().UnitPrice(item.Quantity)
		if err != nil {
			return nil, err.Error(), nil
		}
		return &models.OrderLine{
			ProductType: kind,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   unit,
			LineTotal:   pricing.LineTotal(unit, item.Quantity),
		}, "", nil
	}

	if item.ModelID == nil || *item.ModelID == 0 {
		return nil, "model required", nil
	}
	product, err := products.FindVariant(ctx, item.ProductID)
	if db.IsNotFound(err) {
		return nil, "product unavailable", nil
	}
	if err != nil {
		return nil, "", err
	}
	price, err := products.FindModelPrice(ctx, product.ID, *item.ModelID)
	if db.IsNotFound(err) {
		return nil, "model price unavailable", nil
	}
	if err != nil {
		return nil, "", err
	}
	unit, err := product.Tier(price).UnitPrice(item.Quantity)
	if err != nil {
		return nil, err.Error(), nil
	}
	modelID := price.ModelID
	return &models.OrderLine{
		ProductType: kind,
		ProductID:   product.ID,
		ModelID:     &modelID,
		ProductName: product.Name,
		ModelName:   price.Model.DisplayName(),
		Quantity:    item.Quantity,
		UnitPrice:   unit,
		LineTotal:   pricing.LineTotal(unit, item.Quantity),
	}, "", nil
}

// afterPlaced runs the post-commit side effects. None of them can fail the
// order; failures are logged.
func (s *service) afterPlaced(ctx context.Context, order *models.Order, sessionID string) {
	total, _ := order.Total.Float64()

	if s.journey != nil {
		_, err := s.journey.Track(ctx, journey.TrackInput{
			Event: string(enums.JourneyEventPedidoFinalizado),
			Payload: map[string]any{
				"codigo_pedido": order.Code,
				"valor_total":   total,
				"items_count":   len(order.Lines),
				"nome_cliente":  order.CustomerName,
			},
			SessionID: sessionID,
			WhatsApp:  order.WhatsApp,
		})
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "orders.journey_failed")
		}
	}

	if s.customers != nil {
		if err := s.customers.RecordPurchase(ctx, order.WhatsApp, order.CustomerName, order.Total, order.CreatedAt); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "orders.customer_stats_failed")
		}
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, enums.WebhookEventPedidoFinalizado, notifications.OrderCompleted(order), nil)
	}
}

func (s *service) GetByCode(ctx context.Context, code string) (*OrderDTO, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order code is required")
	}
	order, err := s.repo.FindByCode(ctx, code)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Pedido não encontrado")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto := ToDTO(order)
	return &dto, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	var status *enums.OrderStatus
	if raw := strings.TrimSpace(input.Status); raw != "" {
		parsed, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
				WithDetails(map[string]any{"status": raw})
		}
		status = &parsed
	}

	total, err := s.repo.Count(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	page := pagination.Resolve(input.Page, PageSize, int(total))
	rows, err := s.repo.List(ctx, status, page.Offset(), page.Size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &ListResult{Orders: make([]OrderDTO, 0, len(rows)), Page: page}
	for i := range rows {
		result.Orders = append(result.Orders, ToDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) UpdateStatus(ctx context.Context, code, status string) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": status})
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByCode(ctx, code)
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Pedido não encontrado")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		conflict := pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
			WithDetails(map[string]any{"from": order.Status, "to": next})
		if !order.Status.CanTransitionTo(next) {
			return conflict
		}
		moved, err := repo.UpdateStatus(ctx, order.ID, order.Status, next)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			return conflict
		}

		updated, err = repo.FindByCode(ctx, code)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_code": updated.Code,
		"status":     string(updated.Status),
	}), "orders.status_changed")
	dto := ToDTO(updated)
	return &dto, nil
}
