package gorm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prepline/v1/internal/domain/chef"
	"github.com/prepline/v1/internal/ports/outbound"
)

// ChefRepository implements chef identity resolution using GORM
type ChefRepository struct {
	db *gorm.DB
}

// NewChefRepository creates a new GORM-based chef repository
func NewChefRepository(db *gorm.DB) outbound.ChefRepository {
	return &ChefRepository{db: db}
}

// FindByID loads a chef; returns nil when absent
func (r *ChefRepository) FindByID(ctx context.Context, id uuid.UUID) (*chef.Chef, error) {
	var model ChefModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find chef: %w", err)
	}
	return chef.Rehydrate(model.ID, model.Name, model.Email, model.CreatedAt), nil
}

// Exists reports whether the chef exists
func (r *ChefRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ChefModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check chef existence: %w", err)
	}
	return count > 0, nil
}

// CommitmentSourceRepository reads the three commitment source tables
type CommitmentSourceRepository struct {
	db *gorm.DB
}

// NewCommitmentSourceRepository creates a new GORM-based source repository
func NewCommitmentSourceRepository(db *gorm.DB) outbound.CommitmentSourceRepository {
	return &CommitmentSourceRepository{db: db}
}

// ClientMealPlans returns the chef's client meal plan entries inside [start, end]
func (r *CommitmentSourceRepository) ClientMealPlans(ctx context.Context, chefID uuid.UUID, start, end time.Time) ([]outbound.ClientMealPlanRecord, error) {
	var models []ClientMealPlanModel
	err := r.db.WithContext(ctx).
		Where("chef_id = ? AND service_date BETWEEN ? AND ?", chefID, startOfDay(start), endOfDay(end)).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query client meal plans: %w", err)
	}

	records := make([]outbound.ClientMealPlanRecord, 0, len(models))
	for _, m := range models {
		records = append(records, outbound.ClientMealPlanRecord{
			ID:            m.ID,
			ClientName:    m.ClientName,
			HouseholdSize: m.HouseholdSize,
			ServiceDate:   m.ServiceDate,
			Servings:      m.Servings,
			MealName:      m.MealName,
			Dishes:        dishDocsToRecords(m.Dishes),
		})
	}
	return records, nil
}

// MealEvents returns the chef's meal-share events inside [start, end]
func (r *CommitmentSourceRepository) MealEvents(ctx context.Context, chefID uuid.UUID, start, end time.Time) ([]outbound.MealEventRecord, error) {
	var models []MealEventModel
	err := r.db.WithContext(ctx).
		Where("chef_id = ? AND event_date BETWEEN ? AND ?", chefID, startOfDay(start), endOfDay(end)).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query meal events: %w", err)
	}

	records := make([]outbound.MealEventRecord, 0, len(models))
	for _, m := range models {
		records = append(records, outbound.MealEventRecord{
			ID:               m.ID,
			Title:            m.Title,
			EventDate:        m.EventDate,
			PortionsReserved: m.PortionsReserved,
			Dishes:           dishDocsToRecords(m.Dishes),
		})
	}
	return records, nil
}

// ServiceOrders returns the chef's booked service orders inside [start, end]
func (r *CommitmentSourceRepository) ServiceOrders(ctx context.Context, chefID uuid.UUID, start, end time.Time) ([]outbound.ServiceOrderRecord, error) {
	var models []ServiceOrderModel
	err := r.db.WithContext(ctx).
		Where("chef_id = ? AND service_date BETWEEN ? AND ?", chefID, startOfDay(start), endOfDay(end)).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query service orders: %w", err)
	}

	records := make([]outbound.ServiceOrderRecord, 0, len(models))
	for _, m := range models {
		records = append(records, outbound.ServiceOrderRecord{
			ID:           m.ID,
			CustomerName: m.CustomerName,
			ServiceDate:  m.ServiceDate,
			GuestCount:   m.GuestCount,
			MenuName:     m.MenuName,
			Dishes:       dishDocsToRecords(m.Dishes),
		})
	}
	return records, nil
}
