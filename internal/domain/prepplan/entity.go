// Package prepplan contains the core domain logic for prep plan generation.
// A prep plan is the persisted artifact holding a chef's consolidated
// shopping list and batch-cooking advice for one planning window.
package prepplan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PrepPlan is the aggregate root. It exclusively owns its items and
// commitment snapshots; deleting a plan cascades to both.
type PrepPlan struct {
	id        uuid.UUID
	chefID    uuid.UUID
	status    PlanStatus
	startDate time.Time
	endDate   time.Time
	notes     string

	// Derived counters, recomputed at generation time and cached
	totalMeals        int
	totalServings     int
	uniqueIngredients int

	commitments []CommitmentSnapshot
	items       []*Item
	suggestions BatchSuggestions

	createdAt time.Time
	updatedAt time.Time
}

// NewPrepPlan creates a plan in draft for the given window.
// The window is inclusive on both ends; end must not precede start.
func NewPrepPlan(chefID uuid.UUID, startDate, endDate time.Time, notes string) (*PrepPlan, error) {
	start := dateOnly(startDate)
	end := dateOnly(endDate)
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	now := time.Now()
	return &PrepPlan{
		id:        uuid.New(),
		chefID:    chefID,
		status:    PlanStatusDraft,
		startDate: start,
		endDate:   end,
		notes:     notes,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Rehydrate reconstructs a plan from persisted state. Used by the persistence
// mappers only; it performs no validation beyond what was valid at write time.
func Rehydrate(
	id, chefID uuid.UUID,
	status PlanStatus,
	startDate, endDate time.Time,
	notes string,
	totalMeals, totalServings, uniqueIngredients int,
	commitments []CommitmentSnapshot,
	items []*Item,
	suggestions BatchSuggestions,
	createdAt, updatedAt time.Time,
) *PrepPlan {
	return &PrepPlan{
		id:                id,
		chefID:            chefID,
		status:            status,
		startDate:         startDate,
		endDate:           endDate,
		notes:             notes,
		totalMeals:        totalMeals,
		totalServings:     totalServings,
		uniqueIngredients: uniqueIngredients,
		commitments:       commitments,
		items:             items,
		suggestions:       suggestions,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// ID returns the plan's unique identifier
func (p *PrepPlan) ID() uuid.UUID { return p.id }

// ChefID returns the owning chef
func (p *PrepPlan) ChefID() uuid.UUID { return p.chefID }

// Status returns the plan's lifecycle status
func (p *PrepPlan) Status() PlanStatus { return p.status }

// StartDate returns the plan window start
func (p *PrepPlan) StartDate() time.Time { return p.startDate }

// EndDate returns the plan window end
func (p *PrepPlan) EndDate() time.Time { return p.endDate }

// Notes returns the plan notes
func (p *PrepPlan) Notes() string { return p.notes }

// TotalMeals returns the cached commitment count
func (p *PrepPlan) TotalMeals() int { return p.totalMeals }

// TotalServings returns the cached servings sum
func (p *PrepPlan) TotalServings() int { return p.totalServings }

// UniqueIngredients returns the cached distinct ingredient count
func (p *PrepPlan) UniqueIngredients() int { return p.uniqueIngredients }

// Commitments returns the commitment snapshots
func (p *PrepPlan) Commitments() []CommitmentSnapshot { return p.commitments }

// Items returns the shopping list items
func (p *PrepPlan) Items() []*Item { return p.items }

// Suggestions returns the batch-cooking advice snapshot
func (p *PrepPlan) Suggestions() BatchSuggestions { return p.suggestions }

// CreatedAt returns when the plan was created
func (p *PrepPlan) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns when the plan last changed
func (p *PrepPlan) UpdatedAt() time.Time { return p.updatedAt }

// AttachResults installs the generation output and recomputes the derived
// counters. Only valid while the plan is still a draft.
func (p *PrepPlan) AttachResults(commitments []CommitmentSnapshot, items []*Item, suggestions BatchSuggestions) error {
	if p.status != PlanStatusDraft {
		return ErrInvalidStatusTransition
	}

	p.commitments = commitments
	p.items = items
	p.suggestions = suggestions

	p.totalMeals = len(commitments)
	p.totalServings = 0
	for _, c := range commitments {
		p.totalServings += c.Servings
	}
	p.uniqueIngredients = len(items)
	p.updatedAt = time.Now()
	return nil
}

// MarkGenerated transitions the plan out of draft once aggregation, timing
// and batch-suggestion steps have all succeeded.
func (p *PrepPlan) MarkGenerated() error {
	if p.status != PlanStatusDraft {
		return ErrInvalidStatusTransition
	}
	p.status = PlanStatusGenerated
	p.updatedAt = time.Now()
	return nil
}

// MarkFailed reverts a failed generation to draft with a failure note.
// Partial results are discarded; the plan keeps no items.
func (p *PrepPlan) MarkFailed(reason string) {
	p.status = PlanStatusDraft
	p.notes = reason
	p.commitments = nil
	p.items = nil
	p.suggestions = BatchSuggestions{}
	p.totalMeals = 0
	p.totalServings = 0
	p.uniqueIngredients = 0
	p.updatedAt = time.Now()
}

// MarkItemsPurchased flags the given items as purchased, optionally recording
// the purchase date and per-item quantities. Unknown ids are returned, not
// silently dropped. The first purchase moves a generated plan to in_progress.
func (p *PrepPlan) MarkItemsPurchased(itemIDs []uuid.UUID, purchasedDate *time.Time, quantities map[uuid.UUID]decimal.Decimal) []uuid.UUID {
	byID := make(map[uuid.UUID]*Item, len(p.items))
	for _, item := range p.items {
		byID[item.ID] = item
	}

	var unknown []uuid.UUID
	marked := false
	for _, id := range itemIDs {
		item, ok := byID[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		var qty *decimal.Decimal
		if q, ok := quantities[id]; ok {
			qty = &q
		}
		item.MarkPurchased(purchasedDate, qty)
		marked = true
	}

	if marked {
		if p.status == PlanStatusGenerated {
			p.status = PlanStatusInProgress
		}
		p.updatedAt = time.Now()
	}
	return unknown
}

// RefreshStatus moves an active plan to completed once every item is
// purchased or the planning window has passed.
func (p *PrepPlan) RefreshStatus(today time.Time) {
	if p.status != PlanStatusGenerated && p.status != PlanStatusInProgress {
		return
	}

	allPurchased := len(p.items) > 0
	for _, item := range p.items {
		if !item.IsPurchased {
			allPurchased = false
			break
		}
	}

	if allPurchased || dateOnly(today).After(p.endDate) {
		p.status = PlanStatusCompleted
		p.updatedAt = time.Now()
	}
}

// ShoppingListByDate groups items by suggested purchase date. Keys are ISO
// dates; each group preserves (purchase date, name) ordering.
func (p *PrepPlan) ShoppingListByDate() map[string][]*Item {
	grouped := make(map[string][]*Item)
	sorted := make([]*Item, len(p.items))
	copy(sorted, p.items)
	SortItems(sorted)
	for _, item := range sorted {
		key := item.SuggestedPurchaseDate.Format("2006-01-02")
		grouped[key] = append(grouped[key], item)
	}
	return grouped
}

// ShoppingListByCategory groups items by storage type. Iterate with
// StorageDisplayOrder for the presentation order [refrigerated, frozen,
// counter, pantry].
func (p *PrepPlan) ShoppingListByCategory() map[StorageType][]*Item {
	grouped := make(map[StorageType][]*Item)
	sorted := make([]*Item, len(p.items))
	copy(sorted, p.items)
	SortItems(sorted)
	for _, item := range sorted {
		grouped[item.StorageType] = append(grouped[item.StorageType], item)
	}
	return grouped
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
