package models

import "gorm.io/gorm"

// Book is a trading book trades are booked into.
// Active carries no column default: a false value must round-trip as false,
// so callers set the flag explicitly on insert.
type Book struct {
	gorm.Model
	BookName string `gorm:"uniqueIndex;not null" json:"book_name"`
	Active   bool   `json:"active"`
}

// Counterparty is the other side of a bilateral trade.
type Counterparty struct {
	gorm.Model
	Name   string `gorm:"uniqueIndex;not null" json:"name"`
	Active bool   `json:"active"`
}

// ApplicationUser is a trader or other desk user.
type ApplicationUser struct {
	gorm.Model
	LoginID  string `gorm:"uniqueIndex;not null" json:"login_id"`
	FullName string `json:"full_name"`
	Active   bool   `json:"active"`
}
