package models

import "time"

const (
	SliderValueMin = 0
	SliderValueMax = 100
)

type Slider struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ModuleID uint   `gorm:"column:module_id;not null;index" json:"-"`
	Text     string `gorm:"column:text;type:text;not null" json:"text"`

	Responses []SliderResponse `gorm:"foreignKey:SliderID" json:"-"`
}

func (Slider) TableName() string {
	return "sliders"
}

// SliderResponse is scoped to the session it was given in, since sliders
// outlive sessions.
type SliderResponse struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	SliderID  uint      `gorm:"column:slider_id;not null;index" json:"slider_id"`
	SessionID uint      `gorm:"column:session_id;not null;index" json:"-"`
	Value     int       `gorm:"column:value;not null" json:"value"`
	Timestamp time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

func (SliderResponse) TableName() string {
	return "slider_responses"
}
