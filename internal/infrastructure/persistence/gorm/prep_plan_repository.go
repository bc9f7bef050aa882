package gorm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prepline/v1/internal/domain/prepplan"
	"github.com/prepline/v1/internal/ports/outbound"
)

// PrepPlanRepository implements the prep plan repository using GORM
type PrepPlanRepository struct {
	db *gorm.DB
}

// NewPrepPlanRepository creates a new GORM-based prep plan repository
func NewPrepPlanRepository(db *gorm.DB) outbound.PrepPlanRepository {
	return &PrepPlanRepository{db: db}
}

// Create persists a new plan row without children
func (r *PrepPlanRepository) Create(ctx context.Context, plan *prepplan.PrepPlan) error {
	model := PlanToModel(plan)
	model.Commitments = nil
	model.Items = nil

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create prep plan: %w", err)
	}
	return nil
}

// SaveGenerated persists the full generation result in one transaction:
// children, counters, snapshots and the status transition. A failure rolls
// everything back and leaves the plan row in its prior state.
func (r *PrepPlanRepository) SaveGenerated(ctx context.Context, plan *prepplan.PrepPlan) error {
	model := PlanToModel(plan)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-generation replaces any children of a previous run.
		if err := tx.Where("prep_plan_id = ?", model.ID).Delete(&PrepPlanCommitmentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prep_plan_id = ?", model.ID).Delete(&PrepPlanItemModel{}).Error; err != nil {
			return err
		}

		if len(model.Commitments) > 0 {
			if err := tx.Create(&model.Commitments).Error; err != nil {
				return err
			}
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}

		return tx.Model(&PrepPlanModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]interface{}{
				"status":             model.Status,
				"notes":              model.Notes,
				"total_meals":        model.TotalMeals,
				"total_servings":     model.TotalServings,
				"unique_ingredients": model.UniqueIngredients,
				"shopping_list":      model.ShoppingList,
				"batch_suggestions":  model.BatchSuggestions,
				"updated_at":         model.UpdatedAt,
			}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save generated prep plan: %w", err)
	}
	return nil
}

// UpdateStatusNotes persists only the plan's status, notes and counters
func (r *PrepPlanRepository) UpdateStatusNotes(ctx context.Context, plan *prepplan.PrepPlan) error {
	err := r.db.WithContext(ctx).Model(&PrepPlanModel{}).
		Where("id = ?", plan.ID()).
		Updates(map[string]interface{}{
			"status":             string(plan.Status()),
			"notes":              plan.Notes(),
			"total_meals":        plan.TotalMeals(),
			"total_servings":     plan.TotalServings(),
			"unique_ingredients": plan.UniqueIngredients(),
			"updated_at":         plan.UpdatedAt(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update prep plan status: %w", err)
	}
	return nil
}

// SavePurchases persists purchase-tracking fields for the given items plus
// the plan's status, in one transaction.
func (r *PrepPlanRepository) SavePurchases(ctx context.Context, plan *prepplan.PrepPlan, itemIDs []uuid.UUID) error {
	byID := make(map[uuid.UUID]*prepplan.Item, len(plan.Items()))
	for _, item := range plan.Items() {
		byID[item.ID] = item
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range itemIDs {
			item, ok := byID[id]
			if !ok {
				continue
			}
			if err := tx.Model(&PrepPlanItemModel{}).
				Where("id = ? AND prep_plan_id = ?", id, plan.ID()).
				Updates(map[string]interface{}{
					"is_purchased":       item.IsPurchased,
					"purchased_date":     item.PurchasedDate,
					"purchased_quantity": item.PurchasedQuantity,
				}).Error; err != nil {
				return err
			}
		}

		return tx.Model(&PrepPlanModel{}).
			Where("id = ?", plan.ID()).
			Updates(map[string]interface{}{
				"status":     string(plan.Status()),
				"updated_at": plan.UpdatedAt(),
			}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save purchases: %w", err)
	}
	return nil
}

// FindByID loads a plan with all children; returns nil when absent
func (r *PrepPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*prepplan.PrepPlan, error) {
	var model PrepPlanModel
	err := r.db.WithContext(ctx).
		Preload("Commitments", func(db *gorm.DB) *gorm.DB {
			return db.Order("service_date ASC")
		}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("suggested_purchase_date ASC, ingredient_name ASC")
		}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find prep plan: %w", err)
	}
	return ModelToPlan(&model), nil
}

// FindByChef lists a chef's plans newest first, without item payloads
func (r *PrepPlanRepository) FindByChef(ctx context.Context, chefID uuid.UUID) ([]*prepplan.PrepPlan, error) {
	var models []PrepPlanModel
	err := r.db.WithContext(ctx).
		Where("chef_id = ?", chefID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list prep plans: %w", err)
	}

	plans := make([]*prepplan.PrepPlan, 0, len(models))
	for i := range models {
		plans = append(plans, ModelToPlan(&models[i]))
	}
	return plans, nil
}

// Delete removes a plan and cascades to its children
func (r *PrepPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prep_plan_id = ?", id).Delete(&PrepPlanItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("prep_plan_id = ?", id).Delete(&PrepPlanCommitmentModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&PrepPlanModel{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete prep plan: %w", err)
	}
	return nil
}
