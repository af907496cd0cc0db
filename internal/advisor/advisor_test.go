package advisor

import (
	"testing"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEvaluatePresentValue(t *testing.T) {
	// 12000 in 3 installments of 4000 at 10% per period:
	// 4000/1.1 + 4000/1.21 + 4000/1.331 = 3636.36 + 3305.79 + 3005.26
	res := Evaluate(Input{
		CashPrice:            amt("11000"),
		FinancedTotal:        amt("12000"),
		InstallmentCount:     3,
		MonthlyInflationRate: amt("0.10"),
	})
	if !res.InstallmentAmount.Equal(amt("4000")) {
		t.Fatalf("installment = %s, want 4000", res.InstallmentAmount)
	}
	if !res.PresentValue.Equal(amt("9947.41")) {
		t.Fatalf("present value = %s, want 9947.41", res.PresentValue)
	}
	if !res.MathematicallyBetter {
		t.Fatalf("financing below the cash price should be mathematically better")
	}
}

func TestEvaluateZeroRate(t *testing.T) {
	// Without inflation the present value is just the financed total, so
	// financing at a surcharge is never better.
	res := Evaluate(Input{
		CashPrice:        amt("10000"),
		FinancedTotal:    amt("12000"),
		InstallmentCount: 3,
	})
	if !res.PresentValue.Equal(amt("12000")) {
		t.Fatalf("present value = %s, want 12000", res.PresentValue)
	}
	if res.MathematicallyBetter {
		t.Fatalf("surcharge at zero inflation should not be better")
	}
}

func TestEvaluateVerdictWithoutProfile(t *testing.T) {
	better := Evaluate(Input{
		CashPrice:            amt("11000"),
		FinancedTotal:        amt("11000"),
		InstallmentCount:     6,
		MonthlyInflationRate: amt("0.05"),
	})
	if better.Score != 70 || better.Verdict != VerdictInstallments {
		t.Fatalf("got score %d verdict %s, want 70 installments", better.Score, better.Verdict)
	}

	worse := Evaluate(Input{
		CashPrice:        amt("10000"),
		FinancedTotal:    amt("12000"),
		InstallmentCount: 3,
	})
	if worse.Score != 40 || worse.Verdict != VerdictCaution {
		t.Fatalf("got score %d verdict %s, want 40 caution", worse.Score, worse.Verdict)
	}
}

func TestEvaluateAffordabilityWarnings(t *testing.T) {
	// installment 10000, existing due 2000 -> committed 12000
	in := Input{
		CashPrice:            amt("28000"),
		FinancedTotal:        amt("30000"),
		InstallmentCount:     3,
		MonthlyInflationRate: amt("0.10"),
		ExistingMonthlyDue:   amt("2000"),
	}

	// committed/income = 12000/100000 = 12%, fund covers 6x: best case
	in.Profile = &IncomeProfile{Income: amt("100000"), FixedExpenses: amt("20000"), EmergencyFund: amt("72000")}
	res := Evaluate(in)
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if res.Score != 80 || res.Verdict != VerdictInstallments {
		t.Fatalf("got score %d verdict %s, want 80 installments", res.Score, res.Verdict)
	}

	// ratio 12000/35000 = 34%: warn bracket, thin fund
	in.Profile = &IncomeProfile{Income: amt("35000"), FixedExpenses: amt("10000"), EmergencyFund: amt("10000")}
	res = Evaluate(in)
	if len(res.Warnings) != 2 {
		t.Fatalf("expected ratio and fund warnings, got %v", res.Warnings)
	}
	if res.Verdict != VerdictCaution {
		t.Fatalf("verdict = %s, want caution", res.Verdict)
	}

	// negative free cash, ratio over 40%, no fund: floor at zero
	in.Profile = &IncomeProfile{Income: amt("15000"), FixedExpenses: amt("14000"), EmergencyFund: decimal.Zero}
	res = Evaluate(in)
	if res.Score != 0 || res.Verdict != VerdictAvoid {
		t.Fatalf("got score %d verdict %s, want 0 avoid", res.Score, res.Verdict)
	}
	if len(res.Warnings) != 3 {
		t.Fatalf("expected three warnings, got %v", res.Warnings)
	}
}

func TestEvaluateNeverPanics(t *testing.T) {
	inputs := []Input{
		{},
		{InstallmentCount: -5, FinancedTotal: amt("100")},
		{MonthlyInflationRate: amt("-2"), FinancedTotal: amt("100"), InstallmentCount: 3},
		{Profile: &IncomeProfile{}},
	}
	for i, in := range inputs {
		res := Evaluate(in)
		if res.Verdict == "" {
			t.Fatalf("case %d produced no verdict", i)
		}
		if res.Score < 0 || res.Score > 100 {
			t.Fatalf("case %d score %d out of range", i, res.Score)
		}
	}
}

func TestNegativeRateFallsBackToSum(t *testing.T) {
	// A rate of -1 makes the discount base non-positive; the present value
	// degrades to the undiscounted sum.
	res := Evaluate(Input{
		CashPrice:            amt("100"),
		FinancedTotal:        amt("300"),
		InstallmentCount:     3,
		MonthlyInflationRate: amt("-1"),
	})
	if !res.PresentValue.Equal(amt("300")) {
		t.Fatalf("present value = %s, want 300", res.PresentValue)
	}
}
