package core

// AccountKind tags the variant of an AccountRef.
type AccountKind string

const (
	KindAllCards AccountKind = "all"
	KindCard     AccountKind = "card"
	KindDebts    AccountKind = "debts"
	KindDailyLog AccountKind = "dailyLog"
)

// AccountRef selects the target of a ledger command: the aggregate view over
// every card, one card by name, the debt list, or the daily log. The variant
// is resolved once at the command boundary instead of comparing magic strings
// throughout the engine.
type AccountRef struct {
	Kind AccountKind
	Name string // card name, set only when Kind == KindCard
}

func AllCardsRef() AccountRef        { return AccountRef{Kind: KindAllCards} }
func CardRef(name string) AccountRef { return AccountRef{Kind: KindCard, Name: name} }
func DebtsRef() AccountRef           { return AccountRef{Kind: KindDebts} }
func DailyLogRef() AccountRef        { return AccountRef{Kind: KindDailyLog} }

// IsValid reports whether the ref carries a known kind and, for cards, a name.
func (r AccountRef) IsValid() bool {
	switch r.Kind {
	case KindAllCards, KindDebts, KindDailyLog:
		return true
	case KindCard:
		return r.Name != ""
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (r AccountRef) String() string {
	if r.Kind == KindCard {
		return "card:" + r.Name
	}
	return string(r.Kind)
}
