package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used by the record-store backend.
type AccountModel struct {
	Email     string `gorm:"primaryKey"`
	Password  string `gorm:"not null"`
	Role      string `gorm:"not null"`
	Name      string
	CreatedAt time.Time `gorm:"not null"`
}

type ProjectModel struct {
	ID                 string  `gorm:"primaryKey"`
	ClientID           string  `gorm:"not null;index"`
	Title              string  `gorm:"not null"`
	PlotArea           float64 `gorm:"not null"`
	Length             float64 `gorm:"not null"`
	Breadth            float64 `gorm:"not null"`
	LocationType       string
	BudgetLevel        string
	ManualBudget       float64
	BuildingColor      string
	ArchitecturalStyle string
	BuildingType       string
	Floors             int
	Rooms              datatypes.JSON `gorm:"type:jsonb"`
	VisualImage        string         `gorm:"type:text"`
	FloorPlanSVG       string         `gorm:"type:text"`
	Satisfaction       string
	// Revision is compared-and-swapped on every save; a stale writer loses.
	Revision  int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
