package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestItemDraftValidate(t *testing.T) {
	good := ItemDraft{Description: "TV", TotalAmount: amt("60000"), InstallmentCount: 3}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []ItemDraft{
		{Description: "", TotalAmount: amt("100")},
		{Description: "   ", TotalAmount: amt("100")},
		{Description: "TV", TotalAmount: decimal.Zero},
		{Description: "TV", TotalAmount: amt("100").Neg()},
	}
	for i, d := range bads {
		if err := d.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestNewItemNormalization(t *testing.T) {
	cases := []struct {
		draft         ItemDraft
		wantCount     int
		wantRemaining int
		wantAmount    string
		wantSettled   bool
		wantCategory  Category
	}{
		{ItemDraft{Description: "TV", TotalAmount: amt("60000"), InstallmentCount: 3, Category: CategoryEntertainment}, 3, 3, "20000", false, CategoryEntertainment},
		// non-positive count means a single installment
		{ItemDraft{Description: "a", TotalAmount: amt("100"), InstallmentCount: 0}, 1, 1, "100", false, CategoryFood},
		{ItemDraft{Description: "a", TotalAmount: amt("100"), InstallmentCount: -2}, 1, 1, "100", false, CategoryFood},
		// negative already-paid means nothing paid
		{ItemDraft{Description: "a", TotalAmount: amt("100"), InstallmentCount: 4, AlreadyPaid: -3}, 4, 4, "25", false, CategoryFood},
		// already-paid reduces remaining
		{ItemDraft{Description: "a", TotalAmount: amt("30000"), InstallmentCount: 6, AlreadyPaid: 2, Category: CategoryHealth}, 6, 4, "5000", false, CategoryHealth},
		// paid beyond the count clamps at zero and settles
		{ItemDraft{Description: "a", TotalAmount: amt("100"), InstallmentCount: 2, AlreadyPaid: 5}, 2, 0, "50", true, CategoryFood},
		// unknown category falls back to the default
		{ItemDraft{Description: "a", TotalAmount: amt("100"), InstallmentCount: 1, Category: "Viajes"}, 1, 1, "100", false, CategoryFood},
	}
	for i, tc := range cases {
		item, err := NewItem(tc.draft)
		if err != nil {
			t.Fatalf("case %d unexpected error: %v", i, err)
		}
		if item.InstallmentCount != tc.wantCount {
			t.Fatalf("case %d count = %d, want %d", i, item.InstallmentCount, tc.wantCount)
		}
		if item.InstallmentsRemaining != tc.wantRemaining {
			t.Fatalf("case %d remaining = %d, want %d", i, item.InstallmentsRemaining, tc.wantRemaining)
		}
		if !item.InstallmentAmount.Equal(amt(tc.wantAmount)) {
			t.Fatalf("case %d installment = %s, want %s", i, item.InstallmentAmount, tc.wantAmount)
		}
		if item.Settled != tc.wantSettled {
			t.Fatalf("case %d settled = %v, want %v", i, item.Settled, tc.wantSettled)
		}
		if item.Category != tc.wantCategory {
			t.Fatalf("case %d category = %s, want %s", i, item.Category, tc.wantCategory)
		}
	}
}

func TestNewItemRejectsInvalidDraft(t *testing.T) {
	if _, err := NewItem(ItemDraft{Description: "", TotalAmount: amt("10")}); err == nil {
		t.Fatalf("expected error for empty description")
	}
	if _, err := NewItem(ItemDraft{Description: "a", TotalAmount: decimal.Zero}); err == nil {
		t.Fatalf("expected error for non-positive amount")
	}
}

func TestNewDailyItem(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	item, err := NewDailyItem(ItemDraft{Description: "café", TotalAmount: amt("3500"), InstallmentCount: 12, Deferred: true}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.InstallmentCount != 1 || item.InstallmentsRemaining != 0 {
		t.Fatalf("daily item not pre-settled: count=%d remaining=%d", item.InstallmentCount, item.InstallmentsRemaining)
	}
	if !item.Settled {
		t.Fatalf("daily item should be settled")
	}
	if item.Deferred {
		t.Fatalf("daily item should never be deferred")
	}
	if item.Date != "2026-03-15" {
		t.Fatalf("date = %q, want 2026-03-15", item.Date)
	}

	// an explicit date is kept
	item, err = NewDailyItem(ItemDraft{Description: "café", TotalAmount: amt("3500"), Date: "2026-01-02"}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Date != "2026-01-02" {
		t.Fatalf("date = %q, want 2026-01-02", item.Date)
	}
}

func TestItemOutstanding(t *testing.T) {
	item, _ := NewItem(ItemDraft{Description: "a", TotalAmount: amt("60000"), InstallmentCount: 3, AlreadyPaid: 1})
	if !item.Outstanding().Equal(amt("40000")) {
		t.Fatalf("outstanding = %s, want 40000", item.Outstanding())
	}
}

func TestNewCard(t *testing.T) {
	card, err := NewCard("  Visa  ", amt("100000"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.Name != "Visa" {
		t.Fatalf("name = %q", card.Name)
	}
	if !card.AvailableBalance.Equal(card.CreditLimit) {
		t.Fatalf("new card balance should equal the limit")
	}
	if card.Items == nil || len(card.Items) != 0 {
		t.Fatalf("new card should have an empty item list")
	}

	if _, err := NewCard("", amt("100"), false); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := NewCard("Visa", decimal.Zero, false); err != ErrInvalidLimit {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestSnapshotNormalize(t *testing.T) {
	s := Snapshot{
		Cards: []Card{{Name: "Visa", CreditLimit: amt("1000"), AvailableBalance: amt("1000")}},
	}
	s.Cards[0].Items = append(s.Cards[0].Items, Item{Description: "x", InstallmentsRemaining: 0})
	s.Normalize()

	if s.Debts == nil || s.DailyLog == nil {
		t.Fatalf("nil collections survived Normalize")
	}
	if !s.Cards[0].Items[0].Settled {
		t.Fatalf("settled flag not recomputed")
	}
}

func TestSnapshotClone(t *testing.T) {
	s := Snapshot{
		Cards: []Card{{Name: "Visa", CreditLimit: amt("1000"), AvailableBalance: amt("1000"), Items: []Item{{Description: "x"}}}},
		Debts: []Item{{Description: "d"}},
	}
	clone := s.Clone()
	clone.Cards[0].Name = "changed"
	clone.Cards[0].Items[0].Description = "changed"
	clone.Debts[0].Description = "changed"

	if s.Cards[0].Name != "Visa" || s.Cards[0].Items[0].Description != "x" || s.Debts[0].Description != "d" {
		t.Fatalf("clone shares memory with the source snapshot")
	}
}

func TestSnapshotCardLookup(t *testing.T) {
	s := Snapshot{Cards: []Card{{Name: "Visa"}, {Name: "Amex"}}}
	if s.Card("Amex") == nil {
		t.Fatalf("expected to find Amex")
	}
	if s.Card("Master") != nil {
		t.Fatalf("expected nil for unknown card")
	}
}
