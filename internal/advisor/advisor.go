// Package advisor implements the cash-versus-installments calculator: a
// discounted-cashflow comparison plus affordability heuristics over an
// optional income profile. It reads ledger aggregates and never writes them;
// the scoring weights are policy, not contract. Evaluate always returns a
// verdict and never fails.
package advisor

import (
	"github.com/shopspring/decimal"
)

type Verdict string

const (
	VerdictInstallments Verdict = "installments"
	VerdictCash         Verdict = "cash"
	VerdictCaution      Verdict = "caution"
	VerdictAvoid        Verdict = "avoid"
)

// Debt-to-income thresholds: above warnRatio the purchase draws a warning,
// above dangerRatio a heavier one.
var (
	warnRatio   = decimal.NewFromFloat(0.30)
	dangerRatio = decimal.NewFromFloat(0.40)
)

type (
	// IncomeProfile describes the user's monthly finances.
	IncomeProfile struct {
		Income        decimal.Decimal `json:"income"`
		FixedExpenses decimal.Decimal `json:"fixedExpenses"`
		EmergencyFund decimal.Decimal `json:"emergencyFund"`
	}

	// Input carries the purchase under consideration plus the ledger
	// aggregates the verdict depends on.
	Input struct {
		CashPrice        decimal.Decimal `json:"cashPrice"`
		FinancedTotal    decimal.Decimal `json:"financedTotal"`
		InstallmentCount int             `json:"installmentCount"`
		// MonthlyInflationRate is a fraction, e.g. 0.04 for 4% per period.
		MonthlyInflationRate decimal.Decimal `json:"monthlyInflationRate"`
		// ExistingMonthlyDue is the user's committed monthly outflow from
		// current installments, read from the ledger aggregates.
		ExistingMonthlyDue decimal.Decimal `json:"existingMonthlyDue"`
		Profile            *IncomeProfile  `json:"profile,omitempty"`
	}

	Result struct {
		InstallmentAmount    decimal.Decimal `json:"installmentAmount"`
		PresentValue         decimal.Decimal `json:"presentValue"`
		MathematicallyBetter bool            `json:"mathematicallyBetter"`
		Score                int             `json:"score"`
		Verdict              Verdict         `json:"verdict"`
		Warnings             []string        `json:"warnings"`
	}
)

// Evaluate compares paying cash today against paying the financed total in
// installments of depreciating currency, then adjusts a 0-100 suitability
// score with affordability heuristics when an income profile is present.
func Evaluate(in Input) Result {
	count := in.InstallmentCount
	if count < 1 {
		count = 1
	}
	installment := in.FinancedTotal.DivRound(decimal.NewFromInt(int64(count)), 2)
	pv := presentValue(installment, count, in.MonthlyInflationRate)
	better := in.CashPrice.GreaterThan(pv)

	res := Result{
		InstallmentAmount:    installment,
		PresentValue:         pv,
		MathematicallyBetter: better,
		Warnings:             []string{},
	}

	score := 50
	if better {
		score += 20
	} else {
		score -= 10
	}

	if p := in.Profile; p != nil && p.Income.IsPositive() {
		committed := in.ExistingMonthlyDue.Add(installment)

		freeCash := p.Income.Sub(p.FixedExpenses).Sub(committed)
		if freeCash.IsNegative() {
			score -= 40
			res.Warnings = append(res.Warnings, "insufficient free cash flow after fixed expenses and installments")
		}

		ratio := committed.Div(p.Income)
		switch {
		case ratio.GreaterThan(dangerRatio):
			score -= 30
			res.Warnings = append(res.Warnings, "total installment load exceeds 40% of income")
		case ratio.GreaterThan(warnRatio):
			score -= 15
			res.Warnings = append(res.Warnings, "total installment load exceeds 30% of income")
		}

		three := committed.Mul(decimal.NewFromInt(3))
		six := committed.Mul(decimal.NewFromInt(6))
		switch {
		case p.EmergencyFund.LessThan(three):
			score -= 10
			res.Warnings = append(res.Warnings, "emergency fund covers less than three months of committed outflows")
		case p.EmergencyFund.GreaterThanOrEqual(six):
			score += 10
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	res.Score = score
	res.Verdict = verdictFor(score, better)
	return res
}

// presentValue discounts count equal payments at rate per period:
// Σ installment / (1+rate)^i for i in 1..count.
func presentValue(installment decimal.Decimal, count int, rate decimal.Decimal) decimal.Decimal {
	base := decimal.NewFromInt(1).Add(rate)
	if !base.IsPositive() {
		// Nonsensical rate; fall back to the undiscounted sum.
		return installment.Mul(decimal.NewFromInt(int64(count)))
	}
	pv := decimal.Zero
	factor := decimal.NewFromInt(1)
	for i := 1; i <= count; i++ {
		factor = factor.Mul(base)
		pv = pv.Add(installment.DivRound(factor, 8))
	}
	return pv.Round(2)
}

func verdictFor(score int, better bool) Verdict {
	switch {
	case score >= 70 && better:
		return VerdictInstallments
	case score >= 70:
		return VerdictCash
	case score >= 40:
		return VerdictCaution
	default:
		return VerdictAvoid
	}
}
