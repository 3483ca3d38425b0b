package model

import "github.com/shopspring/decimal"

// Balances is the caller-held session context for the three sub-balances a
// user enters. It lives for one session and is never persisted.
type Balances struct {
	Revolut decimal.Decimal `json:"revolut"`
	Bank    decimal.Decimal `json:"bank"`
	Cash    decimal.Decimal `json:"cash"`
}

// BalanceShare is one sub-balance with its share of the total.
type BalanceShare struct {
	Source  string
	Amount  decimal.Decimal
	Percent float64
}

// Total returns the sum of the sub-balances.
func (b Balances) Total() decimal.Decimal {
	return b.Revolut.Add(b.Bank).Add(b.Cash)
}

// Shares returns each source with its percentage of the total. Percentages
// are zero when the total is not positive.
func (b Balances) Shares() []BalanceShare {
	total := b.Total()
	shares := []BalanceShare{
		{Source: "Revolut", Amount: b.Revolut},
		{Source: "Other Bank", Amount: b.Bank},
		{Source: "Cash", Amount: b.Cash},
	}
	if !total.IsPositive() {
		return shares
	}
	hundred := decimal.NewFromInt(100)
	for i := range shares {
		shares[i].Percent = shares[i].Amount.Mul(hundred).Div(total).InexactFloat64()
	}
	return shares
}

// Validate rejects negative sub-balances.
func (b Balances) Validate() error {
	for _, s := range b.Shares() {
		if s.Amount.IsNegative() {
			return &NegativeBalanceError{Source: s.Source}
		}
	}
	return nil
}

// NegativeBalanceError reports a sub-balance below zero.
type NegativeBalanceError struct {
	Source string
}

func (e *NegativeBalanceError) Error() string {
	return "negative balance for " + e.Source
}
