package models

import "time"

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no_show"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a confirmed booking record. The ledger core consumes bookings,
// it does not own their lifecycle.
type Booking struct {
	ID              string        `bson:"id" json:"id"`
	BusinessID      string        `bson:"business_id" json:"business_id"`
	UserID          string        `bson:"user_id" json:"user_id"`
	ClassInstanceID string        `bson:"class_instance_id,omitempty" json:"class_instance_id,omitempty"`
	Status          BookingStatus `bson:"status" json:"status"`
	FinalPrice      int64         `bson:"final_price" json:"final_price"`     // cents
	RefundAmount    int64         `bson:"refund_amount" json:"refund_amount"` // cents

	// PlatformFeeRate snapshots the business fee rate in effect when the
	// booking was created, so historical earnings stay stable under later
	// rate changes. Nil on legacy bookings created before rates were stored.
	PlatformFeeRate *float64 `bson:"platform_fee_rate,omitempty" json:"platform_fee_rate,omitempty"`

	CheckedInAt *time.Time `bson:"checked_in_at,omitempty" json:"checked_in_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	Deleted     bool       `bson:"deleted" json:"deleted"`
}

// NetRevenue returns the booking's revenue after refunds, in cents.
func (b Booking) NetRevenue() int64 {
	return b.FinalPrice - b.RefundAmount
}

// IsReconciled reports whether the booking is eligible for revenue counting:
// it reached a terminal state, or was cancelled but retained net revenue.
func (b Booking) IsReconciled() bool {
	switch b.Status {
	case BookingCompleted, BookingNoShow:
		return true
	case BookingCancelled:
		return b.NetRevenue() > 0
	}
	return false
}
