// internal/domain/models/payment.go
package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses written by the external payment flow.
const (
	PaymentSucceeded = "succeeded"
	PaymentPending   = "pending"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Payment is a transaction record. LearnHub only reads payments.
type Payment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"course_id"`
	Amount    float64            `bson:"amount" json:"amount"`
	Currency  string             `bson:"currency,omitempty" json:"currency,omitempty"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Cents returns Amount in minor units, rounded half away from zero.
func (p Payment) Cents() int64 {
	return int64(math.Round(p.Amount * 100))
}

// SucceededCents sums the succeeded payments in minor units.
func SucceededCents(payments []Payment) (cents int64, count int) {
	for _, p := range payments {
		if p.Status != PaymentSucceeded {
			continue
		}
		cents += p.Cents()
		count++
	}
	return cents, count
}

// CentsToAmount converts minor units back to a currency amount.
func CentsToAmount(cents int64) float64 {
	return float64(cents) / 100
}
