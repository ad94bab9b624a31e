package notifications_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmcell/catalog-backend/internal/notifications"
	"github.com/pmcell/catalog-backend/pkg/db/dbtest"
	"github.com/pmcell/catalog-backend/pkg/db/models"
	"github.com/pmcell/catalog-backend/pkg/enums"
	pkgerrors "github.com/pmcell/catalog-backend/pkg/errors"
)

func TestUpsertAndFindActive(t *testing.T) {
	conn := dbtest.Open(t).DB()
	repo := notifications.NewRepository(conn)
	svc, err := notifications.NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	cfg, err := svc.Upsert(ctx, notifications.UpsertInput{
		Event:        "pedido_finalizado",
		URL:          "https://hooks.example.com/orders",
		Active:       true,
		RetryEnabled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.TimeoutSeconds)

	active, err := repo.FindActive(ctx, enums.WebhookEventPedidoFinalizado)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "https://hooks.example.com/orders", active.URL)

	_, err = svc.Upsert(ctx, notifications.UpsertInput{
		Event:          "pedido_finalizado",
		URL:            "https://hooks.example.com/orders",
		Active:         false,
		TimeoutSeconds: 10,
	})
	require.NoError(t, err)

	active, err = repo.FindActive(ctx, enums.WebhookEventPedidoFinalizado)
	require.NoError(t, err)
	assert.Nil(t, active)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 10, all[0].TimeoutSeconds)
	assert.False(t, all[0].RetryEnabled)
}

func TestUpsertValidation(t *testing.T) {
	svc, err := notifications.NewService(notifications.NewRepository(dbtest.Open(t).DB()))
	require.NoError(t, err)
	ctx := context.Background()

	cases := []notifications.UpsertInput{
		{Event: "unknown", URL: "https://x.example.com"},
		{Event: "liberacao_preco", URL: "ftp://x.example.com"},
		{Event: "liberacao_preco", Active: true},
		{Event: "liberacao_preco", URL: "https://x.example.com", TimeoutSeconds: 500},
	}
	for _, in := range cases {
		_, err := svc.Upsert(ctx, in)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "%+v", in)
	}
}

func TestSettingLookup(t *testing.T) {
	conn := dbtest.Open(t).DB()
	repo := notifications.NewRepository(conn)
	ctx := context.Background()

	value, err := repo.Setting(ctx, models.SettingStoreName)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, conn.Create(&models.Setting{Key: models.SettingStoreName, Value: "PMCELL"}).Error)
	value, err = repo.Setting(ctx, models.SettingStoreName)
	require.NoError(t, err)
	assert.Equal(t, "PMCELL", value)
}
