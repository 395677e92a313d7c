package domain

import "time"

// Topics that domain events are published to. They are fixed per entity kind.
const (
	TopicFranchise = "franchise.events"
	TopicBranch    = "branch.events"
	TopicProduct   = "product.events"
)

// Topics lists every topic the service writes to.
var Topics = []string{TopicFranchise, TopicBranch, TopicProduct}

// EventType describes which mutation produced an event.
type EventType string

const (
	EventCreated EventType = "CREATED"
	EventUpdated EventType = "UPDATED"
	EventDeleted EventType = "DELETED"
)

// Event is an immutable record of a completed mutation.
type Event interface {
	Meta() EventMeta
}

// EventMeta is the envelope shared by every domain event.
type EventMeta struct {
	EventID    string    `json:"eventId"`
	OccurredAt time.Time `json:"occurredAt"`
	EventType  EventType `json:"eventType"`
}

// Meta implements Event. Event structs embed EventMeta and inherit it.
func (m EventMeta) Meta() EventMeta { return m }

// FranchiseEvent carries a franchise snapshot taken at the time of the event.
type FranchiseEvent struct {
	EventMeta
	FranchiseID int64  `json:"franchiseId"`
	Name        string `json:"name"`
}

// BranchEvent carries a branch snapshot taken at the time of the event.
type BranchEvent struct {
	EventMeta
	BranchID    int64  `json:"branchId"`
	FranchiseID int64  `json:"franchiseId"`
	Name        string `json:"name"`
}

// ProductEvent carries a product snapshot taken at the time of the event.
type ProductEvent struct {
	EventMeta
	ProductID int64  `json:"productId"`
	BranchID  int64  `json:"branchId"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

// NewFranchiseEvent snapshots f into an event.
func NewFranchiseEvent(meta EventMeta, f Franchise) FranchiseEvent {
	return FranchiseEvent{EventMeta: meta, FranchiseID: f.ID, Name: f.Name}
}

// NewBranchEvent snapshots b into an event.
func NewBranchEvent(meta EventMeta, b Branch) BranchEvent {
	return BranchEvent{EventMeta: meta, BranchID: b.ID, FranchiseID: b.FranchiseID, Name: b.Name}
}

// NewProductEvent snapshots p into an event.
func NewProductEvent(meta EventMeta, p Product) ProductEvent {
	return ProductEvent{EventMeta: meta, ProductID: p.ID, BranchID: p.BranchID, Name: p.Name, Stock: p.Stock}
}
