package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NeedSection is the coarse grouping a need belongs to
type NeedSection string

const (
	NeedSectionFood      NeedSection = "food"
	NeedSectionEducation NeedSection = "education"
	NeedSectionClothing  NeedSection = "clothing"
	NeedSectionHealth    NeedSection = "health"
	NeedSectionOther     NeedSection = "other"
)

// NeedOrdering selects how open needs are ordered for allocation
type NeedOrdering string

const (
	// NeedOrderLargestRemaining is used for single-donation allocation
	NeedOrderLargestRemaining NeedOrdering = "largest_remaining"
	// NeedOrderSmallestRemaining is used for sweeps
	NeedOrderSmallestRemaining NeedOrdering = "smallest_remaining"
)

// Need represents a declared funding requirement of an institution
type Need struct {
	ID             int64           `db:"id"`
	InstitutionRef string          `db:"institution_ref"`
	Title          string          `db:"title"`
	Section        NeedSection     `db:"section"`
	Category       string          `db:"category"`
	AmountNeeded   decimal.Decimal `db:"amount_needed"`
	AmountRaised   decimal.Decimal `db:"amount_raised"`
	Fulfilled      bool            `db:"fulfilled"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// Remaining returns the gap between the target and what has been raised, never negative
func (n *Need) Remaining() decimal.Decimal {
	gap := n.AmountNeeded.Sub(n.AmountRaised)
	if gap.Sign() < 0 {
		return ZeroMoney
	}
	return gap
}

// IsFulfilled recomputes the fulfilled flag from the amounts
func (n *Need) IsFulfilled() bool {
	return n.AmountRaised.GreaterThanOrEqual(n.AmountNeeded)
}
