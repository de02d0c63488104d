package entities

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	CompositeID string `gorm:"primaryKey" json:"composite_id"`
	SourceTag   string `gorm:"index" json:"source_tag"`
	TaskID      string `json:"task_id"`
	Name        string `json:"name"`
	FarmName    string `json:"farm_name"`
	// FieldCompositeID is empty for tasks whose field is not in the document.
	FieldCompositeID string `gorm:"index" json:"field_composite_id"`
	// Year is 0 when the task has no start time.
	Year    int        `gorm:"index" json:"year"`
	Start   *time.Time `json:"start"`
	End     *time.Time `json:"end"`
	Machine string     `json:"machine"`
	Crops   []string   `gorm:"serializer:json" json:"crops"`
	TLGIDs  []string   `gorm:"column:tlg_ids;serializer:json" json:"tlg_ids"`

	ImportRunID uuid.UUID `gorm:"type:text;index" json:"import_run_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
