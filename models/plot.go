package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Plot is a georeferenced land unit with a fixed location inside a plan.
type Plot struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID      `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	PlanID       uint           `gorm:"index;not null" json:"plan_id"`
	Name         string         `gorm:"not null" json:"name"`
	PlotNumber   int            `gorm:"index" json:"plot_number"`
	Serial       string         `json:"serial"`
	Geometry     string         `gorm:"type:text;not null" json:"geometry"` // WKT
	GeometryType string         `json:"geometry_type"`
	IsFixed      bool           `gorm:"not null" json:"is_fixed"`
	IsLocation   bool           `gorm:"not null" json:"is_location"`
	Status       string         `gorm:"index;not null" json:"status"`
	Properties   datatypes.JSON `json:"properties,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Plot) TableName() string {
	return "plots"
}

func (p *Plot) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	return nil
}

func (p *Plot) EntityID() uint {
	return p.ID
}
