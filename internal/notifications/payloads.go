package notifications

import (
	"encoding/json"
	"time"

	"github.com/pmcell/catalog-backend/pkg/db/models"
)

// PriceLiberation builds the liberacao_preco payload.
func PriceLiberation(whatsapp string, at time.Time) map[string]any {
	return map[string]any{
		"whatsapp":             whatsapp,
		"liberation_timestamp": at.Format(time.RFC3339),
	}
}

// AbandonedCart builds the carrinho_abandonado payload from the stored cart.
func AbandonedCart(cart *models.AbandonedCart) map[string]any {
	var data any
	if !cart.CartData.IsNull() {
		_ = cart.CartData.Decode(&data)
	}
	value, _ := cart.EstimatedValue.Float64()
	return map[string]any{
		"whatsapp":         cart.WhatsApp,
		"cart_data":        data,
		"estimated_value":  value,
		"abandonment_time": cart.AbandonedAt.Format(time.RFC3339),
		"items_count":      countItems(cart.CartData),
	}
}

// countItems counts array elements or object keys.
func countItems(raw []byte) int {
	if len(raw) == 0 {
		return 0
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return len(list)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		return len(obj)
	}
	return 0
}

// OrderCompleted builds the pedido_finalizado payload. Lines must be loaded.
func OrderCompleted(order *models.Order) map[string]any {
	items := make([]map[string]any, 0, len(order.Lines))
	for _, line := range order.Lines {
		unit, _ := line.UnitPrice.Float64()
		total, _ := line.LineTotal.Float64()
		item := map[string]any{
			"type":         string(line.ProductType),
			"product_id":   line.ProductID,
			"product_name": line.ProductName,
			"quantity":     line.Quantity,
			"unit_price":   unit,
			"total_price":  total,
		}
		if line.ModelID != nil {
			item["model_id"] = *line.ModelID
			item["model_name"] = line.ModelName
		}
		items = append(items, item)
	}
	total, _ := order.Total.Float64()
	return map[string]any{
		"order": map[string]any{
			"codigo":       order.Code,
			"whatsapp":     order.WhatsApp,
			"nome_cliente": order.CustomerName,
			"valor_total":  total,
			"status":       string(order.Status),
			"created_at":   order.CreatedAt.Format(time.RFC3339),
			"items":        items,
			"items_count":  len(items),
		},
	}
}
