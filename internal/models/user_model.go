// Package models contains the models for the Bookinsights API
package models

// UsersTableName is the relational table holding dashboard users.
// The table is owned by the credential store: this service only reads
// it and never migrates or writes it.
const UsersTableName = "user_id"

// UserModel is a row of the user_id table
type UserModel struct {
	ID       int64  `gorm:"primaryKey;column:id" json:"id"`
	Name     string `gorm:"column:name" json:"name"`
	Password string `gorm:"column:password" json:"-"`
}

func (UserModel) TableName() string {
	return UsersTableName
}
