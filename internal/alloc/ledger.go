package alloc

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/theirongolddev/allot/internal/model"
)

// idPrefix matches the ids the browser form assigned, so imported records
// keep working with the same counter.
const idPrefix = "project-"

// maxIDNumber bounds id suffixes that count toward the id counter. It is the
// largest integer a JSON number holds exactly, so the persisted counter stays
// readable by the browser form and n+1 cannot overflow.
const maxIDNumber = 1<<53 - 1

// NewItem holds the optional fields for Ledger.Add. Zero values mean
// "use the default".
type NewItem struct {
	Name       string
	Category   model.Category
	Color      string
	Percentage float64
}

// Patch lists the fields to change on an existing item. Nil fields are left
// untouched. Amount and Percentage are mutually exclusive: whichever is set
// drives the other.
type Patch struct {
	Name       *string
	Amount     *float64
	Percentage *float64
	Category   *model.Category
	Color      *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Amount == nil && p.Percentage == nil &&
		p.Category == nil && p.Color == nil
}

// Ledger is the ordered list of line items. Insertion order is display order
// and ids are unique. A Ledger is not safe for concurrent use; Session adds
// locking.
type Ledger struct {
	items   []model.LineItem
	counter int
	pick    func(n int) int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{pick: rand.IntN}
}

// Len returns the number of items.
func (l *Ledger) Len() int { return len(l.items) }

// Counter returns the id counter; the next generated id uses this value.
func (l *Ledger) Counter() int { return l.counter }

// Items returns a copy of the items in display order.
func (l *Ledger) Items() []model.LineItem {
	out := make([]model.LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// Get returns the item with the given id.
func (l *Ledger) Get(id string) (model.LineItem, bool) {
	if i := l.index(id); i >= 0 {
		return l.items[i], true
	}
	return model.LineItem{}, false
}

// Add appends a new item and returns its id. Unset fields take defaults:
// empty name, category stock, a random palette color, 0%. A non-zero
// Percentage sets the amount from totalFunds. Callers are expected to have
// checked that totalFunds is positive.
func (l *Ledger) Add(f NewItem, totalFunds float64) (string, error) {
	item, err := l.newItem(f, totalFunds)
	if err != nil {
		return "", err
	}
	l.items = append(l.items, item)
	return item.ID, nil
}

// AddDefaultPortfolio clears the ledger and appends the preset allocation.
// It replaces rather than merges.
func (l *Ledger) AddDefaultPortfolio(totalFunds float64) []string {
	items := make([]model.LineItem, 0, len(DefaultPortfolio))
	ids := make([]string, 0, len(DefaultPortfolio))
	for _, p := range DefaultPortfolio {
		item := model.LineItem{
			ID:         l.nextID(),
			Name:       p.Name,
			Percentage: p.Percentage,
			Amount:     PercentageToAmount(p.Percentage, totalFunds),
			Category:   p.Category,
			Color:      p.Color,
		}
		items = append(items, item)
		ids = append(ids, item.ID)
	}
	l.items = items
	return ids
}

// Update applies p to the item with the given id. Setting Amount recomputes
// Percentage; setting Percentage (clamped to [0,100]) recomputes Amount.
// The update is all-or-nothing.
func (l *Ledger) Update(id string, p Patch, totalFunds float64) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	if p.Amount != nil && p.Percentage != nil {
		return fmt.Errorf("update %s: %w", id, ErrConflictingUpdate)
	}

	item := l.items[i]
	if p.Name != nil {
		item.Name = strings.TrimSpace(*p.Name)
	}
	if p.Amount != nil {
		amt := sanitize(*p.Amount)
		if math.IsInf(amt, 0) {
			return fmt.Errorf("update %s: %w", id, ErrInvalidAmount)
		}
		if amt < 0 {
			return fmt.Errorf("update %s: %w", id, ErrNegativeAmount)
		}
		item.Amount = amt
		item.Percentage = AmountToPercentage(amt, totalFunds)
	}
	if p.Percentage != nil {
		item.Percentage = ClampPercentage(*p.Percentage)
		item.Amount = PercentageToAmount(item.Percentage, totalFunds)
	}
	if p.Category != nil {
		if !p.Category.Valid() {
			return fmt.Errorf("update %s: %w: %q", id, ErrInvalidCategory, *p.Category)
		}
		item.Category = *p.Category
	}
	if p.Color != nil {
		c := model.NormalizeColor(*p.Color)
		if !model.ValidColor(c) {
			return fmt.Errorf("update %s: %w", id, ErrInvalidColor)
		}
		item.Color = c
	}
	if strings.TrimSpace(item.Name) == "" {
		item.Name = model.UntitledName
	}

	l.items[i] = item
	return nil
}

// Remove deletes the item with the given id. Removing twice reports ErrNotFound.
func (l *Ledger) Remove(id string) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return nil
}

// RecomputeAmountsFromPercentages treats percentages as the durable intent
// and rewrites every amount for the new totalFunds.
func (l *Ledger) RecomputeAmountsFromPercentages(totalFunds float64) {
	for i := range l.items {
		l.items[i].Amount = PercentageToAmount(l.items[i].Percentage, totalFunds)
	}
}

// Replace swaps in items restored from storage. Items without an id or with
// an id already seen are given fresh ids, and the counter is raised past every
// numeric id suffix so generated ids are never reused. It returns the number
// of ids that had to be reassigned.
func (l *Ledger) Replace(items []model.LineItem, counter int) int {
	if counter < 0 || counter > maxIDNumber {
		counter = 0
	}
	l.counter = counter
	for _, it := range items {
		if n, ok := idNumber(it.ID); ok && n >= l.counter {
			l.counter = n + 1
		}
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]model.LineItem, 0, len(items))
	reassigned := 0
	for _, it := range items {
		if _, dup := seen[it.ID]; it.ID == "" || dup {
			it.ID = l.nextID()
			reassigned++
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	l.items = out
	return reassigned
}

func (l *Ledger) newItem(f NewItem, totalFunds float64) (model.LineItem, error) {
	cat := model.DefaultCategory
	if f.Category != "" {
		if !f.Category.Valid() {
			return model.LineItem{}, fmt.Errorf("add: %w: %q", ErrInvalidCategory, f.Category)
		}
		cat = f.Category
	}

	color := model.NormalizeColor(f.Color)
	if color == "" {
		pick := l.pick
		if pick == nil {
			pick = rand.IntN
		}
		color = model.Palette[pick(len(model.Palette))]
	} else if !model.ValidColor(color) {
		return model.LineItem{}, fmt.Errorf("add: %w", ErrInvalidColor)
	}

	pct := ClampPercentage(f.Percentage)
	return model.LineItem{
		ID:         l.nextID(),
		Name:       strings.TrimSpace(f.Name),
		Percentage: pct,
		Amount:     PercentageToAmount(pct, totalFunds),
		Category:   cat,
		Color:      color,
	}, nil
}

func (l *Ledger) nextID() string {
	for {
		id := idPrefix + strconv.Itoa(l.counter)
		l.counter++
		if l.index(id) < 0 {
			return id
		}
	}
}

func (l *Ledger) index(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

func idNumber(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || n >= maxIDNumber {
		return 0, false
	}
	return n, true
}
