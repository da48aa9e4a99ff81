package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// StatusNotification records one best-effort customer notification fired on
// a status transition. Delivery failure never rolls the transition back.
type StatusNotification struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RequestID     primitive.ObjectID `json:"requestId" bson:"requestId"`
	ContactNumber string             `json:"contactNumber" bson:"contactNumber"`
	Message       string             `json:"message" bson:"message"`
	DeepLink      string             `json:"deepLink" bson:"deepLink"`
	Status        NotificationStatus `json:"status" bson:"status" default:"pending"`
	SentAt        *time.Time         `json:"sentAt" bson:"sentAt"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}
