package models

import "time"

type TextFeedback struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	SessionID uint      `gorm:"column:session_id;not null;index" json:"-"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

func (TextFeedback) TableName() string {
	return "text_feedback"
}
