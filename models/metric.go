package models

import "time"

const (
	MetricValueMin = 0
	MetricValueMax = 10
)

type Metric struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SessionID uint   `gorm:"column:session_id;not null;index" json:"-"`
	Title     string `gorm:"column:title;size:255;not null" json:"title"`

	Values []MetricValue `gorm:"foreignKey:MetricID" json:"-"`
}

func (Metric) TableName() string {
	return "metrics"
}

type MetricValue struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	MetricID  uint      `gorm:"column:metric_id;not null;index" json:"-"`
	Value     int       `gorm:"column:value;not null" json:"value"`
	Timestamp time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

func (MetricValue) TableName() string {
	return "metric_values"
}
