package enums

import "fmt"

// WebhookEvent names the business events that can be pushed to merchant URLs.
type WebhookEvent string

const (
	WebhookEventLiberacaoPreco     WebhookEvent = "liberacao_preco"
	WebhookEventCarrinhoAbandonado WebhookEvent = "carrinho_abandonado"
	WebhookEventPedidoFinalizado   WebhookEvent = "pedido_finalizado"
)

var validWebhookEvents = []WebhookEvent{
	WebhookEventLiberacaoPreco,
	WebhookEventCarrinhoAbandonado,
	WebhookEventPedidoFinalizado,
}

func (w WebhookEvent) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WebhookEvent.
func (w WebhookEvent) IsValid() bool {
	for _, candidate := range validWebhookEvents {
		if candidate == w {
			return true
		}
	}
	return false
}

// WebhookEvents returns every known event in declaration order.
func WebhookEvents() []WebhookEvent {
	return append([]WebhookEvent(nil), validWebhookEvents...)
}

// ParseWebhookEvent converts raw input into a WebhookEvent.
func ParseWebhookEvent(value string) (WebhookEvent, error) {
	for _, candidate := range validWebhookEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid webhook event %q", value)
}
