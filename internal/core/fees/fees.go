// Package fees holds the pure money math of the marketplace. Percentages
// are configured outside the core and passed in explicitly so nothing here
// reads global state.
package fees

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Deposit computes the up-front deposit for a service rate, rounded to
// 2 decimal places with half-up rounding on the minor unit.
func Deposit(rate decimal.Decimal, depositPercentage decimal.Decimal) decimal.Decimal {
	return rate.Mul(depositPercentage).Div(hundred).Round(2)
}

// ReferralFee computes the commission owed on a verified deposit, rounded
// the same way as Deposit.
func ReferralFee(depositAmount decimal.Decimal, referralPercentage decimal.Decimal) decimal.Decimal {
	return depositAmount.Mul(referralPercentage).Div(hundred).Round(2)
}

// Resolve picks the effective referral amount: the admin override when it
// is present and positive, the computed fee otherwise. Referral creation
// is gated on the computed fee elsewhere; an override never resurrects a
// zero-fee referral.
func Resolve(computed decimal.Decimal, override *decimal.Decimal) decimal.Decimal {
	if override != nil && override.IsPositive() {
		return *override
	}
	return computed
}
