// Package ledger implements the installment ledger engine: every mutation of
// the financial snapshot lives here, as a pure function from the current
// snapshot and a command to a new snapshot.
//
// Error handling follows the tracker's command taxonomy: malformed input and
// missing references are silent no-ops that return the snapshot unchanged.
// Nothing in this package performs I/O.
package ledger

import (
	"time"

	"cuotas/internal/core"
	"cuotas/internal/report"

	"github.com/shopspring/decimal"
)

// NoEdit marks CreateOrUpdateItem calls that append instead of replacing.
const NoEdit = -1

// CreateOrUpdateItem adds an item to the selected account, or replaces the
// item at editIndex when editIndex >= 0.
//
// For cards the balance adjustment works on the full purchase price: create
// debits TotalAmount; edit first credits the original item's TotalAmount back
// and then debits the replacement's TotalAmount, without reconciling against
// installments already paid. RecalculateBalance exists to repair the drift
// this can leave behind.
func CreateOrUpdateItem(s core.Snapshot, ref core.AccountRef, draft core.ItemDraft, editIndex int) core.Snapshot {
	if draft.Validate() != nil {
		return s
	}
	out := s.Clone()
	switch ref.Kind {
	case core.KindCard:
		card := out.Card(ref.Name)
		if card == nil {
			return s
		}
		item, err := core.NewItem(draft)
		if err != nil {
			return s
		}
		if editIndex != NoEdit {
			if editIndex < 0 || editIndex >= len(card.Items) {
				return s
			}
			original := card.Items[editIndex]
			card.AvailableBalance = card.AvailableBalance.Add(original.TotalAmount)
			card.Items[editIndex] = item
		} else {
			card.Items = append(card.Items, item)
		}
		card.AvailableBalance = card.AvailableBalance.Sub(item.TotalAmount)
		return out
	case core.KindDebts:
		item, err := core.NewItem(draft)
		if err != nil {
			return s
		}
		if editIndex != NoEdit {
			if editIndex < 0 || editIndex >= len(out.Debts) {
				return s
			}
			out.Debts[editIndex] = item
		} else {
			out.Debts = append(out.Debts, item)
		}
		return out
	case core.KindDailyLog:
		item, err := core.NewDailyItem(draft, time.Now())
		if err != nil {
			return s
		}
		// Journal entries are shown most recent first.
		out.DailyLog = append([]core.Item{item}, out.DailyLog...)
		return out
	default:
		return s
	}
}

// DeleteItem removes the item at index from the selected account. Cards get
// the item's full TotalAmount credited back to the available balance. The
// daily log is an append-only journal and is left untouched.
func DeleteItem(s core.Snapshot, ref core.AccountRef, index int) core.Snapshot {
	out := s.Clone()
	switch ref.Kind {
	case core.KindCard:
		card := out.Card(ref.Name)
		if card == nil || index < 0 || index >= len(card.Items) {
			return s
		}
		card.AvailableBalance = card.AvailableBalance.Add(card.Items[index].TotalAmount)
		card.Items = append(card.Items[:index], card.Items[index+1:]...)
		return out
	case core.KindDebts:
		if index < 0 || index >= len(out.Debts) {
			return s
		}
		out.Debts = append(out.Debts[:index], out.Debts[index+1:]...)
		return out
	default:
		return s
	}
}

// PayInstallment pays one installment of the item at index. The owning card's
// balance is credited with the per-installment amount and clamped at the
// credit limit so drift or a double payment can never inflate it past the
// ceiling. Settled items are a no-op.
func PayInstallment(s core.Snapshot, ref core.AccountRef, index int) core.Snapshot {
	out := s.Clone()
	switch ref.Kind {
	case core.KindCard:
		card := out.Card(ref.Name)
		if card == nil || index < 0 || index >= len(card.Items) {
			return s
		}
		item := &card.Items[index]
		if item.InstallmentsRemaining <= 0 {
			return s
		}
		item.InstallmentsRemaining--
		item.RefreshSettled()
		card.AvailableBalance = core.MinDecimal(card.CreditLimit, card.AvailableBalance.Add(item.InstallmentAmount))
		return out
	case core.KindDebts:
		if index < 0 || index >= len(out.Debts) {
			return s
		}
		item := &out.Debts[index]
		if item.InstallmentsRemaining <= 0 {
			return s
		}
		item.InstallmentsRemaining--
		item.RefreshSettled()
		return out
	default:
		return s
	}
}

// PayPeriod settles one billing cycle for a card or for the debt list: every
// non-deferred unsettled item loses one installment, deferred items are
// skipped once and have their flag cleared, and for cards the period's due
// amount (computed before any decrement) is credited back, clamped at the
// limit. A zero due amount, the all-cards aggregate view and the daily log
// are no-ops.
func PayPeriod(s core.Snapshot, ref core.AccountRef) core.Snapshot {
	out := s.Clone()
	switch ref.Kind {
	case core.KindCard:
		card := out.Card(ref.Name)
		if card == nil {
			return s
		}
		due := report.MonthlyDue(card.Items)
		if !due.IsPositive() {
			return s
		}
		advancePeriod(card.Items)
		card.AvailableBalance = core.MinDecimal(card.CreditLimit, card.AvailableBalance.Add(due))
		return out
	case core.KindDebts:
		due := report.MonthlyDue(out.Debts)
		if !due.IsPositive() {
			return s
		}
		advancePeriod(out.Debts)
		return out
	default:
		return s
	}
}

func advancePeriod(items []core.Item) {
	for i := range items {
		item := &items[i]
		if item.Deferred {
			// Skipped this cycle; due again next period.
			item.Deferred = false
			continue
		}
		if item.InstallmentsRemaining > 0 {
			item.InstallmentsRemaining--
			item.RefreshSettled()
		}
	}
}

// RecalculateBalance rebuilds a card's available balance from its item state,
// overwriting any accumulated drift: limit minus the outstanding liability of
// every item. With the all-cards ref it reconciles every card. Item state is
// never touched.
func RecalculateBalance(s core.Snapshot, ref core.AccountRef) core.Snapshot {
	out := s.Clone()
	switch ref.Kind {
	case core.KindCard:
		card := out.Card(ref.Name)
		if card == nil {
			return s
		}
		card.AvailableBalance = card.CreditLimit.Sub(card.Outstanding())
		return out
	case core.KindAllCards:
		for i := range out.Cards {
			out.Cards[i].AvailableBalance = out.Cards[i].CreditLimit.Sub(out.Cards[i].Outstanding())
		}
		return out
	default:
		return s
	}
}

// AddAccount appends a new card with the full limit available. An empty name
// or non-positive limit is a no-op. Name uniqueness is the caller's concern;
// the engine stays permissive.
func AddAccount(s core.Snapshot, name string, creditLimit decimal.Decimal, showBalance bool) core.Snapshot {
	card, err := core.NewCard(name, creditLimit, showBalance)
	if err != nil {
		return s
	}
	out := s.Clone()
	out.Cards = append(out.Cards, card)
	return out
}

// DeleteAccount removes the named card and all of its items. Confirmation is
// the caller's responsibility; the removal itself is irreversible.
func DeleteAccount(s core.Snapshot, name string) core.Snapshot {
	out := s.Clone()
	for i := range out.Cards {
		if out.Cards[i].Name == name {
			out.Cards = append(out.Cards[:i], out.Cards[i+1:]...)
			return out
		}
	}
	return s
}
