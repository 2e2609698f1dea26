// models/user.go
package models

import "time"

// User represents a platform customer.
type User struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Email       string    `bson:"email" json:"email"`
	PhoneNumber string    `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	FCMToken    string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`

	// Credits is the cached balance mirroring the sum of the user's ledger
	// entries. Corrected by Reconcile, never trusted blindly.
	Credits float64 `bson:"credits" json:"credits"`
	// LifetimeCredits mirrors the sum of all positive entries ever granted.
	LifetimeCredits float64 `bson:"lifetime_credits" json:"lifetime_credits"`
}
