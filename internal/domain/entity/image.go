package entity

import (
	"time"
)

// Image is an uploaded produce photo kept in the binary store.
type Image struct {
	ID           string    `json:"id"`
	ProduceID    string    `json:"produceId"`
	FarmerID     string    `json:"farmerId"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimetype"`
	Size         int64     `json:"size"`
	Data         []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (i *Image) ServeURL() string {
	return "/api/images/" + i.ID
}
