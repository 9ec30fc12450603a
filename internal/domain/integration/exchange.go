package integration

import (
	"context"
	"fmt"
)

// ExchangeResult is the outcome of the exchange-then-upgrade chain.
// UpgradeErr is non-nil only when Credential.Degraded is true.
type ExchangeResult struct {
	Credential Credential
	UpgradeErr error
}

// ExchangeAndUpgrade trades code for a credential and attempts the long-lived upgrade.
// An exchange failure is returned as an error. An upgrade failure is not: the
// short-lived credential is kept and tagged Degraded.
func ExchangeAndUpgrade(ctx context.Context, ex TokenExchanger, code string) (ExchangeResult, error) {
	short, err := ex.ExchangeCode(ctx, code)
	if err != nil {
		return ExchangeResult{}, err
	}
	if short.IsZero() {
		return ExchangeResult{}, fmt.Errorf("%w: response has no access token", ErrExchangeFailed)
	}

	long, err := ex.Upgrade(ctx, short)
	if err != nil || long.IsZero() {
		if err == nil {
			err = fmt.Errorf("%w: response has no access token", ErrUpgradeFailed)
		}
		short.Degraded = true
		return ExchangeResult{Credential: short, UpgradeErr: err}, nil
	}

	long.Degraded = false
	return ExchangeResult{Credential: long}, nil
}
