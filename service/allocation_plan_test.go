package service

import (
	"fmt"
	"testing"

	"charityfund/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planNeed(id int64, needed, raised string) *models.Need {
	return &models.Need{
		ID:           id,
		AmountNeeded: decimal.RequireFromString(needed),
		AmountRaised: decimal.RequireFromString(raised),
	}
}

func TestPlanDistribution(t *testing.T) {
	beneficiaries := []*models.Beneficiary{{ID: 1}, {ID: 2}, {ID: 3}}

	tests := []struct {
		name          string
		available     string
		needs         []*models.Need
		beneficiaries []*models.Beneficiary
		want          []string
		wantLeft      string
	}{
		{
			name:      "fills needs in order",
			available: "150",
			needs:     []*models.Need{planNeed(1, "100", "0"), planNeed(2, "100", "0")},
			want:      []string{"need:1:100.00", "need:2:50.00"},
			wantLeft:  "0.00",
		},
		{
			name:      "skips needs without a gap",
			available: "10",
			needs:     []*models.Need{planNeed(1, "100", "100"), planNeed(2, "5", "0")},
			want:      []string{"need:2:5.00"},
			wantLeft:  "5.00",
		},
		{
			name:          "leftover split with remainder on first beneficiary",
			available:     "10",
			needs:         []*models.Need{planNeed(1, "5", "0")},
			beneficiaries: beneficiaries,
			want:          []string{"need:1:5.00", "beneficiary:1:1.68", "beneficiary:2:1.66", "beneficiary:3:1.66"},
			wantLeft:      "0.00",
		},
		{
			name:          "zero parts are dropped",
			available:     "0.02",
			beneficiaries: beneficiaries,
			want:          []string{"beneficiary:1:0.02"},
			wantLeft:      "0.00",
		},
		{
			name:      "nothing to allocate to",
			available: "42",
			wantLeft:  "42.00",
		},
		{
			name:          "no headroom",
			available:     "0",
			needs:         []*models.Need{planNeed(1, "5", "0")},
			beneficiaries: beneficiaries,
			wantLeft:      "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, left := planDistribution(decimal.RequireFromString(tt.available), tt.needs, tt.beneficiaries)

			var got []string
			for _, step := range plan {
				got = append(got, describeStep(step))
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantLeft, left.StringFixed(models.MoneyScale))
		})
	}
}

func TestPlanDistribution_Deterministic(t *testing.T) {
	needs := []*models.Need{planNeed(4, "70", "10"), planNeed(2, "33.33", "0"), planNeed(9, "12", "11.99")}
	beneficiaries := []*models.Beneficiary{{ID: 1}, {ID: 5}}

	first, _ := planDistribution(decimal.RequireFromString("123.45"), needs, beneficiaries)
	for i := 0; i < 10; i++ {
		again, _ := planDistribution(decimal.RequireFromString("123.45"), needs, beneficiaries)
		require.Equal(t, len(first), len(again))
		for j := range first {
			assert.Equal(t, describeStep(first[j]), describeStep(again[j]))
		}
	}

	// inputs are untouched
	assert.Equal(t, "10.00", needs[0].AmountRaised.StringFixed(models.MoneyScale))
}

func TestPlanDistribution_SumIsExact(t *testing.T) {
	for k := 1; k <= 7; k++ {
		beneficiaries := make([]*models.Beneficiary, k)
		for i := range beneficiaries {
			beneficiaries[i] = &models.Beneficiary{ID: int64(i + 1)}
		}

		for _, available := range []string{"0.01", "1.00", "99.99", "1000.03"} {
			plan, left := planDistribution(decimal.RequireFromString(available), nil, beneficiaries)

			total := models.ZeroMoney
			for _, step := range plan {
				assert.True(t, step.amount.Sign() > 0)
				total = total.Add(step.amount)
			}
			assert.True(t, left.IsZero())
			assert.Equal(t, decimal.RequireFromString(available).StringFixed(2), total.StringFixed(2), "k=%d available=%s", k, available)
		}
	}
}

func describeStep(step plannedAllocation) string {
	if step.need != nil {
		return fmt.Sprintf("need:%d:%s", step.need.ID, step.amount.StringFixed(models.MoneyScale))
	}
	return fmt.Sprintf("beneficiary:%d:%s", step.beneficiary.ID, step.amount.StringFixed(models.MoneyScale))
}
