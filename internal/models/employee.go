package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmployeePosition string

const (
	PositionDriver     EmployeePosition = "driver"
	PositionMechanic   EmployeePosition = "mechanic"
	PositionDispatcher EmployeePosition = "dispatcher"
	PositionManager    EmployeePosition = "manager"
)

// Employee is a service-center staff record. Drivers are employees with
// position == "driver"; the coordinator treats them as read-only.
type Employee struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	EmployeeName  string             `json:"employeeName" bson:"employeeName" validate:"required"`
	Email         string             `json:"email" bson:"email" validate:"required,email"`
	ContactNo     string             `json:"contactNo" bson:"contactNo" validate:"required,phone_number"`
	Age           int                `json:"Age" bson:"Age"`
	JoinedYear    int                `json:"joinedYear" bson:"joinedYear"`
	Position      EmployeePosition   `json:"position" bson:"position" validate:"required,position"`
	LicenseNo     string             `json:"licenseNo" bson:"licenseNo"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (e *Employee) IsDriver() bool {
	return e.Position == PositionDriver
}
