// Package settlement computes the profit distribution of a tour group:
// administrative cost, profit tax, team bonus, personal bonuses and the
// profit the company keeps.
package settlement

import (
	"tourledger/internal/core/apperror"
	"tourledger/internal/core/types"
)

// Config holds the tunables of a settlement run.
type Config struct {
	// MaxGroupSize caps the rows of one printed payee group.
	MaxGroupSize int

	// AdministrativeCostFallback is the per-traveller rate used when a group
	// has no ADMINISTRATIVE_EXPENSES rule.
	AdministrativeCostFallback types.Money

	// ReportPlaces is the number of decimals report values are rounded to.
	ReportPlaces int32
}

// DefaultConfig returns the defaults used by the back office.
func DefaultConfig() Config {
	return Config{
		MaxGroupSize:               5,
		AdministrativeCostFallback: types.NewMoneyFromInt(10),
		ReportPlaces:               2,
	}
}

// Validate rejects values the engine cannot work with.
func (c Config) Validate() error {
	if c.MaxGroupSize <= 0 {
		return apperror.NewInvalidConfiguration("maxGroupSize", c.MaxGroupSize)
	}
	if c.AdministrativeCostFallback.IsNegative() {
		return apperror.NewInvalidConfiguration("administrativeCostFallback", c.AdministrativeCostFallback.String())
	}
	if c.ReportPlaces < 0 {
		return apperror.NewInvalidConfiguration("reportPlaces", c.ReportPlaces)
	}
	return nil
}
