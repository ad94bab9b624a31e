package enums

import "fmt"

// JourneyEventType enumerates customer funnel actions.
type JourneyEventType string

const (
	JourneyEventEntrada            JourneyEventType = "entrada"
	JourneyEventLiberacaoPreco     JourneyEventType = "liberacao_preco"
	JourneyEventCategoriaVisitada  JourneyEventType = "categoria_visitada"
	JourneyEventPesquisa           JourneyEventType = "pesquisa"
	JourneyEventProdutoVisualizado JourneyEventType = "produto_visualizado"
	JourneyEventItemAdicionado     JourneyEventType = "item_adicionado"
	JourneyEventItemRemovido       JourneyEventType = "item_removido"
	JourneyEventCheckoutIniciado   JourneyEventType = "checkout_iniciado"
	JourneyEventPedidoFinalizado   JourneyEventType = "pedido_finalizado"
	JourneyEventSaida              JourneyEventType = "saida"
	JourneyEventCarrinhoAbandonado JourneyEventType = "carrinho_abandonado"
)

var validJourneyEventTypes = []JourneyEventType{
	JourneyEventEntrada,
	JourneyEventLiberacaoPreco,
	JourneyEventCategoriaVisitada,
	JourneyEventPesquisa,
	JourneyEventProdutoVisualizado,
	JourneyEventItemAdicionado,
	JourneyEventItemRemovido,
	JourneyEventCheckoutIniciado,
	JourneyEventPedidoFinalizado,
	JourneyEventSaida,
	JourneyEventCarrinhoAbandonado,
}

func (e JourneyEventType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known JourneyEventType.
func (e JourneyEventType) IsValid() bool {
	for _, candidate := range validJourneyEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseJourneyEventType converts raw input into a JourneyEventType.
func ParseJourneyEventType(value string) (JourneyEventType, error) {
	for _, candidate := range validJourneyEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid journey event %q", value)
}
