package models

import (
	"time"
)

// BeneficiaryPolicy decides which beneficiaries take part in general fund allocation
type BeneficiaryPolicy string

const (
	// BeneficiaryPolicyAll makes every beneficiary eligible
	BeneficiaryPolicyAll BeneficiaryPolicy = "all"
	// BeneficiaryPolicyUnfulfilled excludes beneficiaries flagged as need fulfilled
	BeneficiaryPolicyUnfulfilled BeneficiaryPolicy = "unfulfilled"
)

// Beneficiary represents a child eligible for undirected allocation
type Beneficiary struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	Priority      int       `db:"priority"` // higher sorts first among eligible beneficiaries
	NeedFulfilled bool      `db:"need_fulfilled"`
	CreatedAt     time.Time `db:"created_at"`
}
