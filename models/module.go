package models

import "time"

type Module struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	Description *string   `gorm:"column:description;type:text" json:"description"`
	UserID      string    `gorm:"column:user_id;size:100;not null;index" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Sessions []Session `gorm:"foreignKey:ModuleID" json:"-"`
	Sliders  []Slider  `gorm:"foreignKey:ModuleID" json:"-"`
}

func (Module) TableName() string {
	return "modules"
}
