package entities

import (
	"time"

	"github.com/google/uuid"
)

// Field is one boundary-bearing field, keyed by "<source tag>/<PFD id>".
type Field struct {
	CompositeID string `gorm:"primaryKey" json:"composite_id"`
	SourceTag   string `gorm:"index" json:"source_tag"`
	FieldID     string `json:"field_id"`
	Name        string `json:"name"`
	FarmName    string `json:"farm_name"`
	Document    string `json:"document"`
	// Geometry is GeoJSON geometry text; empty when the field has no boundary.
	Geometry string `json:"-"`
	// Properties is the GeoJSON feature properties object.
	Properties string `json:"-"`
	Years      []int  `gorm:"serializer:json" json:"years"`
	TotalTasks int    `json:"total_tasks"`

	ImportRunID uuid.UUID `gorm:"type:text;index" json:"import_run_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (f Field) HasGeometry() bool { return f.Geometry != "" }
