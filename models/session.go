package models

import "time"

// Session is one feedback window of a module. At most one row per module has
// IsActive set; the partial unique index is created in config.Migrate.
type Session struct {
	ID        uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ModuleID  uint       `gorm:"column:module_id;not null;index" json:"module_id"`
	StartTime time.Time  `gorm:"column:start_time;not null" json:"start_time"`
	EndTime   *time.Time `gorm:"column:end_time" json:"end_time"`
	JoinCode  string     `gorm:"column:join_code;size:32;not null;uniqueIndex" json:"join_code"`
	IsActive  bool       `gorm:"column:is_active;not null" json:"is_active"`

	Metrics      []Metric       `gorm:"foreignKey:SessionID" json:"-"`
	Questions    []Question     `gorm:"foreignKey:SessionID" json:"-"`
	TextFeedback []TextFeedback `gorm:"foreignKey:SessionID" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}
