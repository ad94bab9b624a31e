package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
	"github.com/pmcell/catalog-backend/pkg/pagination"
)

// LineInput is one cart entry submitted at checkout. Prices are always
// resolved server side.
type LineInput struct {
	ProductID   uint
	ProductType string
	ModelID     *uint
	Quantity    int
}

// PlaceOrderInput carries a checkout submission.
type PlaceOrderInput struct {
	CustomerName string
	WhatsApp     string
	Items        []LineInput
	Notes        string
	SessionID    string
}

// ListInput filters the admin order listing.
type ListInput struct {
	Status string
	Page   int
}

// LineDTO is a frozen order line.
type LineDTO struct {
	ProductType enums.ProductType `json:"type"`
	ProductID   uint              `json:"product_id"`
	ProductName string            `json:"product_name"`
	ModelID     *uint             `json:"model_id,omitempty"`
	ModelName   string            `json:"model_name,omitempty"`
	Quantity    int               `json:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	LineTotal   decimal.Decimal   `json:"total_price"`
}

// OrderDTO is the order as shown on the success page and in the admin.
type OrderDTO struct {
	Code         string            `json:"code"`
	WhatsApp     string            `json:"whatsapp"`
	CustomerName string            `json:"customer_name"`
	Status       enums.OrderStatus `json:"status"`
	Total        decimal.Decimal   `json:"total"`
	Notes        string            `json:"notes,omitempty"`
	ItemsCount   int               `json:"items_count"`
	Lines        []LineDTO         `json:"items"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ListResult is one page of orders.
type ListResult struct {
	Orders []OrderDTO `json:"orders"`
	pagination.Page
}

// ToDTO maps an order with loaded lines.
func ToDTO(order *models.Order) OrderDTO {
	out := OrderDTO{
		Code:         order.Code,
		WhatsApp:     order.WhatsApp,
		CustomerName: order.CustomerName,
		Status:       order.Status,
		Total:        order.Total,
		Notes:        order.Notes,
		ItemsCount:   len(order.Lines),
		Lines:        make([]LineDTO, 0, len(order.Lines)),
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
	for _, line := range order.Lines {
		out.Lines = append(out.Lines, LineDTO{
			ProductType: line.ProductType,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			ModelID:     line.ModelID,
			ModelName:   line.ModelName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		})
	}
	return out
}
