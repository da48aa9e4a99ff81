package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestStatus string

const (
	RequestStatusNew        RequestStatus = "New"
	RequestStatusAccepted   RequestStatus = "Accepted"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusCompleted  RequestStatus = "Completed"
	RequestStatusDeclined   RequestStatus = "Declined"
)

// BreakdownRequest is a roadside-assistance request. The camelCase field
// names are the persisted wire format consumed by the dashboards and must
// not change.
type BreakdownRequest struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CustomerName     string             `json:"customerName" bson:"customerName" validate:"required"`
	ContactNumber    string             `json:"contactNumber" bson:"contactNumber" validate:"required,phone_number"`
	VehicleNumber    string             `json:"vehicleNumber" bson:"vehicleNumber" validate:"required"`
	IssueType        string             `json:"issueType" bson:"issueType" validate:"required"`
	Location         string             `json:"location" bson:"location" validate:"required"`
	AssignedDriver   string             `json:"assignedDriver,omitempty" bson:"assignedDriver,omitempty"`
	AssignedDriverID primitive.ObjectID `json:"assignedDriverId,omitempty" bson:"assignedDriverId,omitempty"`
	Status           RequestStatus      `json:"status" bson:"status" validate:"required,request_status"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// statusTransitions is the full lifecycle: New → Accepted → In Progress →
// Completed, with the decline branch New → Declined. Completed and Declined
// are terminal.
var statusTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusNew:        {RequestStatusAccepted, RequestStatusDeclined},
	RequestStatusAccepted:   {RequestStatusInProgress},
	RequestStatusInProgress: {RequestStatusCompleted},
	RequestStatusCompleted:  {},
	RequestStatusDeclined:   {},
}

// ActiveStatuses are the states during which a request counts against its
// driver's single active assignment.
var ActiveStatuses = []RequestStatus{
	RequestStatusNew,
	RequestStatusAccepted,
	RequestStatusInProgress,
}

func (s RequestStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

func (s RequestStatus) IsTerminal() bool {
	next, ok := statusTransitions[s]
	return ok && len(next) == 0
}

func (s RequestStatus) IsActive() bool {
	for _, active := range ActiveStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	for _, next := range statusTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (r *BreakdownRequest) IsAssigned() bool {
	return r.AssignedDriver != "" || !r.AssignedDriverID.IsZero()
}

// HasActiveAssignment reports whether this request currently occupies its
// assigned driver.
func (r *BreakdownRequest) HasActiveAssignment() bool {
	return r.IsAssigned() && r.Status.IsActive()
}

// AssignedTo matches a driver against the request's assignment. The id is
// authoritative; matching by employee name is kept for records written
// before assignedDriverId existed.
func (r *BreakdownRequest) AssignedTo(driverID primitive.ObjectID, driverName string) bool {
	if !r.AssignedDriverID.IsZero() && !driverID.IsZero() {
		return r.AssignedDriverID == driverID
	}
	return r.AssignedDriver != "" && r.AssignedDriver == driverName
}
