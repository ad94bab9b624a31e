// Package customers keeps the per-contact price gate flag and purchase
// statistics.
package customers

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pmcell/catalog-backend/pkg/db"
	"github.com/pmcell/catalog-backend/pkg/db/models"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
	"github.com/pmcell/catalog-backend/pkg/phone"
)

type Service interface {
	RecordPriceLiberation(ctx context.Context, whatsapp string, at time.Time) error
	RecordPurchase(ctx context.Context, whatsapp, name string, total decimal.Decimal, at time.Time) error
	Get(ctx context.Context, whatsapp string) (*models.Customer, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customers repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordPriceLiberation(ctx context.Context, whatsapp string, at time.Time) error {
	number, ok := phone.Normalize(whatsapp)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "WhatsApp inválido")
	}
	if err := s.repo.UpsertPriceLiberation(ctx, number, at.UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record price liberation")
	}
	return nil
}

func (s *service) RecordPurchase(ctx context.Context, whatsapp, name string, total decimal.Decimal, at time.Time) error {
	number, ok := phone.Normalize(whatsapp)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "WhatsApp inválido")
	}
	if err := s.repo.UpsertPurchase(ctx, number, strings.TrimSpace(name), total.Round(2), at.UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record purchase")
	}
	return nil
}

func (s *service) Get(ctx context.Context, whatsapp string) (*models.Customer, error) {
	customer, err := s.repo.FindByWhatsApp(ctx, phone.Digits(whatsapp))
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cliente não encontrado")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}
