package entities

import "github.com/google/uuid"

// Point is one decoded log record.
type Point struct {
	ID             uint   `gorm:"primaryKey" json:"-"`
	CompositeTLGID string `gorm:"column:composite_tlg_id;index:idx_points_tlg_time,priority:1" json:"composite_tlg_id"`
	TaskID         string `gorm:"index" json:"task_id"`
	// TimeStamp uses the whole-second "2006-01-02T15:04:05" layout so it
	// sorts and compares as text.
	TimeStamp string             `gorm:"index:idx_points_tlg_time,priority:2" json:"time_stamp"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	GPSTime   *string            `json:"gps_time,omitempty"`
	Static    map[string]int32   `gorm:"serializer:json" json:"static,omitempty"`
	Values    map[string]float64 `gorm:"serializer:json" json:"values"`

	ImportRunID uuid.UUID `gorm:"type:text;index" json:"-"`
}

// TLGSummary is the per-log aggregate of the points table.
type TLGSummary struct {
	CompositeTLGID string `gorm:"column:composite_tlg_id" json:"composite_tlg_id"`
	PointCount     int64  `json:"point_count"`
	FirstPoint     string `json:"first_point"`
	LastPoint      string `json:"last_point"`
}
