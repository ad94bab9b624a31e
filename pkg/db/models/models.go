package models

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Category{},
		&PhoneBrand{},
		&PhoneModel{},
		&SimpleProduct{},
		&VariantProduct{},
		&ModelPrice{},
		&ProductImage{},
		&Order{},
		&OrderLine{},
		&JourneyEvent{},
		&AbandonedCart{},
		&WebhookConfig{},
		&Customer{},
		&Setting{},
	}
}
