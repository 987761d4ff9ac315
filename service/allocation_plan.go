package service

import (
	"charityfund/models"

	"github.com/shopspring/decimal"
)

// plannedAllocation is one step of a distribution plan. Exactly one of need or
// beneficiary is set.
type plannedAllocation struct {
	need        *models.Need
	beneficiary *models.Beneficiary
	amount      decimal.Decimal
}

// planDistribution decides how available is spread over the needs snapshot, in the
// order given, and then over beneficiaries. It does not mutate its inputs and gives
// the same plan for the same inputs.
//
// Each need takes min(remaining, gap). Whatever is left after the needs is split
// evenly across every beneficiary with the leftover minor units on the first one;
// parts that round to zero are left out. The second return value is the amount the
// plan could not place.
func planDistribution(available decimal.Decimal, needs []*models.Need, beneficiaries []*models.Beneficiary) ([]plannedAllocation, decimal.Decimal) {
	remaining := models.NormalizeMoney(available)
	var plan []plannedAllocation

	for _, need := range needs {
		if remaining.Sign() <= 0 {
			break
		}

		gap := need.Remaining()
		if gap.Sign() <= 0 {
			continue
		}

		take := decimal.Min(remaining, gap)
		plan = append(plan, plannedAllocation{need: need, amount: take})
		remaining = remaining.Sub(take)
	}

	if remaining.Sign() > 0 && len(beneficiaries) > 0 {
		parts := models.SplitEvenly(remaining, len(beneficiaries))
		for i, beneficiary := range beneficiaries {
			if parts[i].Sign() <= 0 {
				continue
			}
			plan = append(plan, plannedAllocation{beneficiary: beneficiary, amount: parts[i]})
		}
		remaining = models.ZeroMoney
	}

	return plan, remaining
}
