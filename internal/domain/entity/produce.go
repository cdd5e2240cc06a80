package entity

import (
	"time"
)

const (
	ProduceReady   = "ready"
	ProduceUnready = "unready"
)

type Produce struct {
	ID                string     `json:"id" firestore:"-"`
	FarmerID          string     `json:"farmerId" firestore:"farmerId"`
	FarmerName        string     `json:"farmerName" firestore:"farmerName"`
	Name              string     `json:"name" firestore:"name"`
	Description       string     `json:"description" firestore:"description"`
	Category          string     `json:"category" firestore:"category"`
	Price             float64    `json:"price" firestore:"price"`
	Unit              string     `json:"unit" firestore:"unit"`
	Quantity          float64    `json:"quantity" firestore:"quantity"`
	Status            string     `json:"status" firestore:"status"`
	ImageURLs         []string   `json:"imageUrls" firestore:"imageUrls"`
	Location          string     `json:"location,omitempty" firestore:"location"`
	ExpectedReadyDate *time.Time `json:"expectedReadyDate" firestore:"expectedReadyDate"`
	CreatedAt         time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt         time.Time  `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// ProduceUpdate is the closed set of listing fields an owner may edit.
type ProduceUpdate struct {
	Name                   *string
	Description            *string
	Category               *string
	Price                  *float64
	Unit                   *string
	Quantity               *float64
	Status                 *string
	Location               *string
	ImageURLs              *[]string
	ExpectedReadyDate      *time.Time
	ClearExpectedReadyDate bool
}

// BecomesReady reports whether applying u to a listing currently in status
// from is the unready -> ready transition.
func (u ProduceUpdate) BecomesReady(from string) bool {
	return u.Status != nil && *u.Status == ProduceReady && from == ProduceUnready
}

func (u ProduceUpdate) Apply(p *Produce) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Unit != nil {
		p.Unit = *u.Unit
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.ImageURLs != nil {
		p.ImageURLs = *u.ImageURLs
	}
	if u.ExpectedReadyDate != nil {
		p.ExpectedReadyDate = u.ExpectedReadyDate
	} else if u.ClearExpectedReadyDate {
		p.ExpectedReadyDate = nil
	}
}

// ProduceFilter drives the public listing query.
type ProduceFilter struct {
	Status     string
	Category   string
	Limit      int
	StartAfter string
}
