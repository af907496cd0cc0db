package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryFood          Category = "Alimentos"
	CategoryTransport     Category = "Transporte"
	CategoryEntertainment Category = "Entretenimiento"
	CategoryUtilities     Category = "Servicios"
	CategoryClothing      Category = "Indumentaria"
	CategoryHealth        Category = "Salud"
	CategoryEducation     Category = "Educación"
	CategoryPets          Category = "Mascotas"
	CategoryOther         Category = "Otros"
)

type (
	Category string

	// Item is one purchase, debt entry or daily expense together with its
	// installment state. InstallmentAmount and Settled are derived fields;
	// they are recomputed whenever the item is built or mutated.
	Item struct {
		Description           string          `json:"description"`
		Category              Category        `json:"category"`
		TotalAmount           decimal.Decimal `json:"totalAmount"`
		InstallmentCount      int             `json:"installmentCount"`
		InstallmentAmount     decimal.Decimal `json:"installmentAmount"`
		InstallmentsRemaining int             `json:"installmentsRemaining"`
		Settled               bool            `json:"settled"`
		Deferred              bool            `json:"deferred"`
		Date                  string          `json:"date,omitempty"` // YYYY-MM-DD, daily log entries
	}

	// Card owns a collection of items plus a limit/balance pair.
	Card struct {
		Name             string          `json:"name"`
		CreditLimit      decimal.Decimal `json:"creditLimit"`
		AvailableBalance decimal.Decimal `json:"availableBalance"`
		Items            []Item          `json:"items"`
		ShowBalance      bool            `json:"showBalance"`
	}

	// Snapshot is the whole persisted state of one ledger partition.
	Snapshot struct {
		Cards    []Card `json:"cards"`
		Debts    []Item `json:"debts"`
		DailyLog []Item `json:"dailyLog"`
	}
)

// Categories lists the selectable category labels in display order.
var Categories = []Category{
	CategoryFood, CategoryTransport, CategoryEntertainment, CategoryUtilities,
	CategoryClothing, CategoryHealth, CategoryEducation, CategoryPets, CategoryOther,
}

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty account name")
	ErrInvalidLimit     = errors.New("invalid credit limit")
)

// DefaultCategory is used when a draft carries no or an unknown category.
func DefaultCategory() Category { return Categories[0] }

// Valid reports whether c is one of the predefined category labels.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ItemDraft is the caller-supplied input for creating or replacing an item.
type ItemDraft struct {
	Description      string
	TotalAmount      decimal.Decimal
	InstallmentCount int
	AlreadyPaid      int
	Category         Category
	Deferred         bool
	Date             string // optional; daily log entries default to today
}

func (d ItemDraft) Validate() error {
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if !d.TotalAmount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// NewItem builds an installment item from a draft, normalizing the count and
// the already-paid figure the way the tracker always has: a non-positive
// installment count means a single installment, a negative paid count means
// nothing paid yet.
func NewItem(d ItemDraft) (Item, error) {
	if err := d.Validate(); err != nil {
		return Item{}, err
	}
	count := d.InstallmentCount
	if count < 1 {
		count = 1
	}
	paid := d.AlreadyPaid
	if paid < 0 {
		paid = 0
	}
	remaining := count - paid
	if remaining < 0 {
		remaining = 0
	}
	category := d.Category
	if !category.Valid() {
		category = DefaultCategory()
	}
	item := Item{
		Description:           strings.TrimSpace(d.Description),
		Category:              category,
		TotalAmount:           d.TotalAmount,
		InstallmentCount:      count,
		InstallmentAmount:     SplitInstallments(d.TotalAmount, count),
		InstallmentsRemaining: remaining,
		Deferred:              d.Deferred,
		Date:                  d.Date,
	}
	item.RefreshSettled()
	return item, nil
}

// NewDailyItem builds a pre-settled daily-log entry. Installment math does
// not apply to the journal: one installment, already settled, dated.
func NewDailyItem(d ItemDraft, now time.Time) (Item, error) {
	d.InstallmentCount = 1
	d.AlreadyPaid = 1
	d.Deferred = false
	item, err := NewItem(d)
	if err != nil {
		return Item{}, err
	}
	if item.Date == "" {
		item.Date = now.Format("2006-01-02")
	}
	return item, nil
}

// RefreshSettled recomputes the derived settled flag.
func (i *Item) RefreshSettled() {
	i.Settled = i.InstallmentsRemaining == 0
}

// Outstanding is the liability this item still contributes to its account.
func (i Item) Outstanding() decimal.Decimal {
	return i.InstallmentAmount.Mul(decimal.NewFromInt(int64(i.InstallmentsRemaining)))
}

// NewCard creates a card with the full limit available and no items.
func NewCard(name string, creditLimit decimal.Decimal, showBalance bool) (Card, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Card{}, ErrEmptyName
	}
	if !creditLimit.IsPositive() {
		return Card{}, ErrInvalidLimit
	}
	return Card{
		Name:             name,
		CreditLimit:      creditLimit,
		AvailableBalance: creditLimit,
		Items:            []Item{},
		ShowBalance:      showBalance,
	}, nil
}

// Outstanding sums the remaining liability over all of the card's items.
func (c Card) Outstanding() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Outstanding())
	}
	return total
}

// Card returns a pointer to the named card, or nil when absent.
func (s *Snapshot) Card(name string) *Card {
	for i := range s.Cards {
		if s.Cards[i].Name == name {
			return &s.Cards[i]
		}
	}
	return nil
}

// Normalize defaults absent top-level collections to empty ones and
// recomputes every derived settled flag. It runs at every deserialization
// boundary so consuming code never sees nil collections.
func (s *Snapshot) Normalize() {
	if s.Cards == nil {
		s.Cards = []Card{}
	}
	if s.Debts == nil {
		s.Debts = []Item{}
	}
	if s.DailyLog == nil {
		s.DailyLog = []Item{}
	}
	for i := range s.Cards {
		if s.Cards[i].Items == nil {
			s.Cards[i].Items = []Item{}
		}
		for j := range s.Cards[i].Items {
			s.Cards[i].Items[j].RefreshSettled()
		}
	}
	for i := range s.Debts {
		s.Debts[i].RefreshSettled()
	}
	for i := range s.DailyLog {
		s.DailyLog[i].RefreshSettled()
	}
}

// Clone returns a deep copy. Ledger operations transform copies so the input
// snapshot is never mutated.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Cards:    make([]Card, len(s.Cards)),
		Debts:    append([]Item{}, s.Debts...),
		DailyLog: append([]Item{}, s.DailyLog...),
	}
	for i, card := range s.Cards {
		card.Items = append([]Item{}, card.Items...)
		out.Cards[i] = card
	}
	return out
}
