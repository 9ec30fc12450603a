package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTokenExchanger struct {
	mock.Mock
}

func (m *MockTokenExchanger) ExchangeCode(ctx context.Context, code string) (Credential, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(Credential), args.Error(1)
}

func (m *MockTokenExchanger) Upgrade(ctx context.Context, shortLived Credential) (Credential, error) {
	args := m.Called(ctx, shortLived)
	return args.Get(0).(Credential), args.Error(1)
}

func (m *MockTokenExchanger) Refresh(ctx context.Context, longLived Credential) (Credential, error) {
	args := m.Called(ctx, longLived)
	return args.Get(0).(Credential), args.Error(1)
}

func TestExchangeAndUpgrade_Success(t *testing.T) {
	ctx := context.Background()
	ex := new(MockTokenExchanger)
	expires := time.Now().Add(60 * 24 * time.Hour)
	ex.On("ExchangeCode", ctx, "code-1").Return(Credential{Token: "short"}, nil)
	ex.On("Upgrade", ctx, Credential{Token: "short"}).Return(Credential{Token: "long", ExpiresAt: &expires}, nil)

	res, err := ExchangeAndUpgrade(ctx, ex, "code-1")

	require.NoError(t, err)
	assert.Equal(t, "long", res.Credential.Token)
	assert.False(t, res.Credential.Degraded)
	assert.NoError(t, res.UpgradeErr)
	ex.AssertExpectations(t)
}

func TestExchangeAndUpgrade_UpgradeFailureDegrades(t *testing.T) {
	ctx := context.Background()
	ex := new(MockTokenExchanger)
	ex.On("ExchangeCode", ctx, "code-1").Return(Credential{Token: "short"}, nil)
	ex.On("Upgrade", ctx, mock.Anything).Return(Credential{}, ErrUpgradeFailed)

	res, err := ExchangeAndUpgrade(ctx, ex, "code-1")

	require.NoError(t, err)
	assert.Equal(t, "short", res.Credential.Token)
	assert.True(t, res.Credential.Degraded)
	assert.ErrorIs(t, res.UpgradeErr, ErrUpgradeFailed)
}

func TestExchangeAndUpgrade_EmptyUpgradeDegrades(t *testing.T) {
	ctx := context.Background()
	ex := new(MockTokenExchanger)
	ex.On("ExchangeCode", ctx, "c").Return(Credential{Token: "short"}, nil)
	ex.On("Upgrade", ctx, mock.Anything).Return(Credential{}, nil)

	res, err := ExchangeAndUpgrade(ctx, ex, "c")

	require.NoError(t, err)
	assert.True(t, res.Credential.Degraded)
	assert.ErrorIs(t, res.UpgradeErr, ErrUpgradeFailed)
}

func TestExchangeAndUpgrade_ExchangeFailureAborts(t *testing.T) {
	ctx := context.Background()
	ex := new(MockTokenExchanger)
	ex.On("ExchangeCode", ctx, "bad").Return(Credential{}, errors.Join(ErrExchangeFailed, errors.New("invalid code")))

	_, err := ExchangeAndUpgrade(ctx, ex, "bad")

	assert.ErrorIs(t, err, ErrExchangeFailed)
	ex.AssertNotCalled(t, "Upgrade", mock.Anything, mock.Anything)
}

func TestExchangeAndUpgrade_EmptyShortToken(t *testing.T) {
	ctx := context.Background()
	ex := new(MockTokenExchanger)
	ex.On("ExchangeCode", ctx, "c").Return(Credential{}, nil)

	_, err := ExchangeAndUpgrade(ctx, ex, "c")

	assert.ErrorIs(t, err, ErrExchangeFailed)
}
