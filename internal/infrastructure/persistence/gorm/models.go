// Package gorm provides GORM database models and repository implementations
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/prepline/v1/internal/domain/prepplan"
)

// ChefModel is the GORM model for chefs
type ChefModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for ChefModel
func (ChefModel) TableName() string {
	return "chefs"
}

// ClientMealPlanModel is one scheduled meal from a client's meal plan
type ClientMealPlanModel struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey"`
	ChefID        uuid.UUID `gorm:"type:char(36);index;not null"`
	ClientName    string    `gorm:"size:255"`
	HouseholdSize int       `gorm:"default:1"`
	ServiceDate   time.Time `gorm:"index;not null"`
	Servings      int       `gorm:"default:1"`
	MealName      string    `gorm:"size:255;not null"`
	Dishes        DishList  `gorm:"type:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for ClientMealPlanModel
func (ClientMealPlanModel) TableName() string {
	return "client_meal_plans"
}

// MealEventModel is one public meal-share event hosted by a chef.
// PortionsReserved is stored free-text; the gatherer parses it defensively.
type MealEventModel struct {
	ID               uuid.UUID `gorm:"type:char(36);primaryKey"`
	ChefID           uuid.UUID `gorm:"type:char(36);index;not null"`
	Title            string    `gorm:"size:255;not null"`
	EventDate        time.Time `gorm:"index;not null"`
	PortionsReserved string    `gorm:"size:50"`
	Dishes           DishList  `gorm:"type:json"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for MealEventModel
func (MealEventModel) TableName() string {
	return "meal_events"
}

// ServiceOrderModel is one booked service appointment
type ServiceOrderModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	ChefID       uuid.UUID `gorm:"type:char(36);index;not null"`
	CustomerName string    `gorm:"size:255"`
	ServiceDate  time.Time `gorm:"index;not null"`
	GuestCount   int       `gorm:"default:1"`
	MenuName     string    `gorm:"size:255;not null"`
	Dishes       DishList  `gorm:"type:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for ServiceOrderModel
func (ServiceOrderModel) TableName() string {
	return "service_orders"
}

// PrepPlanModel is the GORM model for prep plans
type PrepPlanModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	ChefID    uuid.UUID `gorm:"type:char(36);index;not null"`
	Status    string    `gorm:"size:20;index;not null;default:'draft'"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"`
	Notes     string    `gorm:"type:text"`

	TotalMeals        int `gorm:"default:0"`
	TotalServings     int `gorm:"default:0"`
	UniqueIngredients int `gorm:"default:0"`

	// Embedded JSON snapshots for fast reads without joining children
	ShoppingList     RawJSON `gorm:"type:json"`
	BatchSuggestions RawJSON `gorm:"type:json"`

	Commitments []PrepPlanCommitmentModel `gorm:"foreignKey:PrepPlanID;constraint:OnDelete:CASCADE"`
	Items       []PrepPlanItemModel       `gorm:"foreignKey:PrepPlanID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for PrepPlanModel
func (PrepPlanModel) TableName() string {
	return "prep_plans"
}

// BeforeCreate sets the ID if not already set
func (m *PrepPlanModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// PrepPlanCommitmentModel is a denormalized commitment snapshot
type PrepPlanCommitmentModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	PrepPlanID   uuid.UUID `gorm:"type:char(36);index;not null"`
	Kind         string    `gorm:"size:30;not null"`
	SourceID     uuid.UUID `gorm:"type:char(36);not null"`
	ServiceDate  time.Time `gorm:"not null"`
	Servings     int       `gorm:"default:1"`
	MealName     string    `gorm:"size:255;not null"`
	CustomerName string    `gorm:"size:255"`
	CreatedAt    time.Time
}

// TableName returns the table name for PrepPlanCommitmentModel
func (PrepPlanCommitmentModel) TableName() string {
	return "prep_plan_commitments"
}

// BeforeCreate sets the ID if not already set
func (m *PrepPlanCommitmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// PrepPlanItemModel is one shopping list line. NormalizedName is unique per
// plan so an ingredient never aggregates into two rows.
type PrepPlanItemModel struct {
	ID                    uuid.UUID       `gorm:"type:char(36);primaryKey"`
	PrepPlanID            uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex:idx_plan_ingredient"`
	IngredientName        string          `gorm:"size:255;not null"`
	NormalizedName        string          `gorm:"size:255;not null;uniqueIndex:idx_plan_ingredient"`
	TotalQuantity         decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Unit                  string          `gorm:"size:50"`
	ShelfLifeDays         int             `gorm:"not null"`
	StorageType           string          `gorm:"size:20;not null"`
	EarliestUseDate       time.Time       `gorm:"not null"`
	LatestUseDate         time.Time       `gorm:"not null"`
	SuggestedPurchaseDate time.Time       `gorm:"index;not null"`
	TimingStatus          string          `gorm:"size:20;not null"`
	TimingNotes           string          `gorm:"type:text"`
	MealsUsing            MealUsageList   `gorm:"type:json"`

	IsPurchased       bool `gorm:"default:false"`
	PurchasedDate     *time.Time
	PurchasedQuantity *decimal.Decimal `gorm:"type:decimal(20,4)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for PrepPlanItemModel
func (PrepPlanItemModel) TableName() string {
	return "prep_plan_items"
}

// BeforeCreate sets the ID if not already set
func (m *PrepPlanItemModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IngredientDoc is one ingredient entry inside a stored dish document
type IngredientDoc struct {
	Name     string           `json:"name"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Unit     string           `json:"unit,omitempty"`
}

// DishDoc is one dish inside a source record's JSON column
type DishDoc struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Ingredients []IngredientDoc `json:"ingredients,omitempty"`
}

// DishList is a JSON-serialized list of dishes
type DishList []DishDoc

// Value implements driver.Valuer for DishList
func (d DishList) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for DishList
func (d *DishList) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into DishList", value)
		}
	}
	return json.Unmarshal(bytes, d)
}

// MealUsageList is a JSON-serialized list of meal usages
type MealUsageList []prepplan.MealUsage

// Value implements driver.Valuer for MealUsageList
func (m MealUsageList) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for MealUsageList
func (m *MealUsageList) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into MealUsageList", value)
		}
	}
	return json.Unmarshal(bytes, m)
}

// RawJSON stores an arbitrary JSON document as-is
type RawJSON json.RawMessage

// Value implements driver.Valuer for RawJSON
func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return []byte(r), nil
}

// Scan implements sql.Scanner for RawJSON
func (r *RawJSON) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*r = append((*r)[:0], v...)
		return nil
	case string:
		*r = RawJSON(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into RawJSON", value)
	}
}

// MarshalJSON implements json.Marshaler for RawJSON
func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON implements json.Unmarshaler for RawJSON
func (r *RawJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// AllModels returns every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&ChefModel{},
		&ClientMealPlanModel{},
		&MealEventModel{},
		&ServiceOrderModel{},
		&PrepPlanModel{},
		&PrepPlanCommitmentModel{},
		&PrepPlanItemModel{},
	}
}
