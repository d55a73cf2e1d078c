package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GrainArc/TrialMap/methods"
	"github.com/GrainArc/TrialMap/models"
	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"
)

type PlanService struct {
	db *gorm.DB
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db}
}

// PlanListItem 列表项（不含地块）
type PlanListItem struct {
	ID        uint      `json:"id"`
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	PlotCount int64     `json:"plot_count"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *PlanService) ListPlans(ctx context.Context) ([]PlanListItem, error) {
	db := s.db.WithContext(ctx)

	var plans []models.Plan
	if err := db.Order("id").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	var counts []struct {
		PlanID uint
		Total  int64
	}
	if err := db.Model(&models.Plot{}).Select("plan_id, COUNT(*) AS total").Group("plan_id").Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count plots: %w", err)
	}
	byPlan := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byPlan[c.PlanID] = c.Total
	}

	items := make([]PlanListItem, 0, len(plans))
	for _, p := range plans {
		items = append(items, PlanListItem{
			ID:        p.ID,
			UUID:      p.UUID.String(),
			Name:      p.Name,
			Status:    p.Status,
			PlotCount: byPlan[p.ID],
			CreatedAt: p.CreatedAt,
		})
	}
	return items, nil
}

func (s *PlanService) PlanPlots(ctx context.Context, planID uint) ([]models.Plot, error) {
	db := s.db.WithContext(ctx)

	var plan models.Plan
	if err := db.First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrPlanNotFound, planID)
		}
		return nil, fmt.Errorf("failed to load plan %d: %w", planID, err)
	}

	var plots []models.Plot
	if err := db.Where("plan_id = ?", planID).Order("id").Find(&plots).Error; err != nil {
		return nil, fmt.Errorf("failed to load plots of plan %d: %w", planID, err)
	}
	return plots, nil
}

// PlanFeatureCollection exports a plan's plots as GeoJSON.
func (s *PlanService) PlanFeatureCollection(ctx context.Context, planID uint) (*geojson.FeatureCollection, error) {
	plots, err := s.PlanPlots(ctx, planID)
	if err != nil {
		return nil, err
	}
	return methods.PlotsToFeatureCollection(plots)
}
