package enums

// SuggestionType labels a search suggestion entry.
type SuggestionType string

const (
	SuggestionTypeCategoria SuggestionType = "categoria"
	SuggestionTypeMarca     SuggestionType = "marca"
	SuggestionTypeProduto   SuggestionType = "produto"
)
