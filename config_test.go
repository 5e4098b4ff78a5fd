package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("HASURA_ENDPOINT", "http://hasura:8080/v1/graphql")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("POSTGRES_USER", "shoptube")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_DB", "payments")
	t.Setenv("CHAPA_SECRET_KEY", "CHASECK_TEST")
	t.Setenv("AWS_USE_SECRETS", "")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BASE_URL", "https://shoptube.et/")
	t.Setenv("RECONCILE_INTERVAL", "")
	t.Setenv("PAYMENT_GATEWAY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://shoptube.et", cfg.BaseURL)
	assert.Equal(t, "chapa", cfg.PaymentGateway)
	assert.Equal(t, "ETB", cfg.PaymentCurrency)
	assert.Equal(t, 5*time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, 24*time.Hour, cfg.PaymentExpiry)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_RequiresGatewaySecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAYMENT_GATEWAY", "stripe")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := LoadConfig()
	assert.EqualError(t, err, "STRIPE_SECRET_KEY is required")
}

func TestLoadConfig_RejectsUnknownGateway(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAYMENT_GATEWAY", "paypal")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_RequiresHasura(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HASURA_ENDPOINT", "")

	_, err := LoadConfig()
	assert.EqualError(t, err, "HASURA_ENDPOINT is required")
}

type fakeSecrets struct {
	values map[string]string
	maps   map[string]map[string]string
}

func (f fakeSecrets) GetSecret(ctx context.Context, name string) (string, error) {
	if v, ok := f.values[name]; ok {
		return v, nil
	}
	return "", errors.New("secret not found")
}

func (f fakeSecrets) GetSecretMap(ctx context.Context, name string) (map[string]string, error) {
	if m, ok := f.maps[name]; ok {
		return m, nil
	}
	return nil, errors.New("secret not found")
}

func TestApplySecrets_OverridesOnlyPresentValues(t *testing.T) {
	cfg := &Config{JWTSecret: "env-jwt", ChapaSecretKey: "env-chapa"}
	cfg.Postgres.User = "env-user"
	cfg.Postgres.Host = "env-host"

	applySecrets(context.Background(), cfg, fakeSecrets{
		values: map[string]string{"shoptube/JWT_SECRET": "sm-jwt"},
		maps: map[string]map[string]string{
			"shoptube/DB_CREDENTIALS": {"POSTGRES_USER": "sm-user", "POSTGRES_HOST": ""},
		},
	})

	assert.Equal(t, "sm-jwt", cfg.JWTSecret)
	assert.Equal(t, "env-chapa", cfg.ChapaSecretKey)
	assert.Equal(t, "sm-user", cfg.Postgres.User)
	assert.Equal(t, "env-host", cfg.Postgres.Host)
}
