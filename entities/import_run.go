package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImportRun records one load of TaskData folders into the store.
type ImportRun struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	Sources   []string  `gorm:"serializer:json" json:"sources"`
	Fields    int       `json:"fields"`
	Tasks     int       `json:"tasks"`
	Logs      int       `json:"logs"`
	Points    int       `json:"points"`
	Warnings  int       `json:"warnings"`
	Truncated int       `json:"truncated"`
	Failed    int       `json:"failed"`
	Status    string    `gorm:"index" json:"status"` // running|done|failed
	Error     string    `json:"error,omitempty"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

func (r *ImportRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
