package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const StatusActive = "active"

// Plan groups the plots laid out for one research experiment.
type Plan struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	Name      string    `gorm:"index;not null" json:"name"`
	Status    string    `gorm:"index;not null" json:"status"`
	Plots     []Plot    `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"plots,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Plan) TableName() string {
	return "plans"
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	return nil
}

func (p *Plan) EntityID() uint {
	return p.ID
}
