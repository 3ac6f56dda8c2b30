package models

import "time"

type Question struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SessionID uint   `gorm:"column:session_id;not null;index" json:"-"`
	Text      string `gorm:"column:text;type:text;not null" json:"text"`

	Responses []QuestionResponse `gorm:"foreignKey:QuestionID" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

type QuestionResponse struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionID uint      `gorm:"column:question_id;not null;index" json:"question_id"`
	Answer     bool      `gorm:"column:answer;not null" json:"answer"`
	Timestamp  time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

func (QuestionResponse) TableName() string {
	return "question_responses"
}
