package prepplan

// Value objects shared across the prep plan aggregate

// PlanStatus represents the lifecycle state of a prep plan
type PlanStatus string

const (
	PlanStatusDraft      PlanStatus = "draft"
	PlanStatusGenerated  PlanStatus = "generated"
	PlanStatusInProgress PlanStatus = "in_progress"
	PlanStatusCompleted  PlanStatus = "completed"
)

// StorageType represents the recommended storage condition for an ingredient
type StorageType string

const (
	StorageRefrigerated StorageType = "refrigerated"
	StorageFrozen       StorageType = "frozen"
	StoragePantry       StorageType = "pantry"
	StorageCounter      StorageType = "counter"
)

// StorageDisplayOrder is the presentation order for category-grouped shopping
// lists: perishables first, shelf-stable last.
var StorageDisplayOrder = []StorageType{
	StorageRefrigerated,
	StorageFrozen,
	StorageCounter,
	StoragePantry,
}

// TimingStatus classifies how well an ingredient's shelf life matches its
// required usage window.
type TimingStatus string

const (
	TimingOptimal     TimingStatus = "optimal"
	TimingTight       TimingStatus = "tight"
	TimingProblematic TimingStatus = "problematic"
	TimingImpossible  TimingStatus = "impossible"
)

// ShelfLife is the resolved storage profile for one ingredient
type ShelfLife struct {
	Days    int
	Storage StorageType
	Notes   string
}

// BatchSuggestion is one AI-generated batch-cooking recommendation
type BatchSuggestion struct {
	Ingredient    string `json:"ingredient"`
	TotalQuantity string `json:"total_quantity"`
	Unit          string `json:"unit"`
	Suggestion    string `json:"suggestion"`
	PrepDay       string `json:"prep_day"`
	MealsCovered  int    `json:"meals_covered"`
}

// BatchSuggestions is the full batch-cooking advice snapshot persisted on a
// plan. When the collaborator is unavailable, Suggestions is empty and
// GeneralTips carries the static fallback.
type BatchSuggestions struct {
	Suggestions []BatchSuggestion `json:"suggestions"`
	GeneralTips []string          `json:"general_tips"`
}
