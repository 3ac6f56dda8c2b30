package models

import "time"

// How an account was created. Google sign-in only reuses accounts it created.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

type User struct {
	Username       string    `gorm:"column:username;primaryKey;size:100" json:"username"`
	Email          *string   `gorm:"column:email;size:255" json:"email"`
	FullName       *string   `gorm:"column:full_name;size:255" json:"full_name"`
	HashedPassword string    `gorm:"column:hashed_password;size:255;not null" json:"-"`
	Disabled       bool      `gorm:"column:disabled;not null;default:false" json:"disabled"`
	Provider       string    `gorm:"column:provider;size:20;not null;default:password" json:"provider"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Modules []Module `gorm:"foreignKey:UserID;references:Username" json:"-"`
}

func (User) TableName() string {
	return "users"
}
