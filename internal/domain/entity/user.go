package entity

import (
	"time"
)

const (
	RoleFarmer = "farmer"
	RoleBuyer  = "buyer"
)

type User struct {
	ID              string    `json:"id" firestore:"-"`
	Name            string    `json:"name" firestore:"name"`
	Email           string    `json:"email,omitempty" firestore:"email,omitempty"`
	Phone           string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	Role            string    `json:"role" firestore:"role"`
	Location        string    `json:"location,omitempty" firestore:"location,omitempty"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty" firestore:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitempty" firestore:"createdAt,omitempty"`
}

// PublicProfile is what other users may see.
type PublicProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	Location        string `json:"location,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

func (u *User) Public() *PublicProfile {
	return &PublicProfile{
		ID:              u.ID,
		Name:            u.Name,
		Role:            u.Role,
		Location:        u.Location,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// ProfileUpdate lists every profile field a user may change. Nil means
// "leave as is".
type ProfileUpdate struct {
	Name            *string
	Phone           *string
	Location        *string
	ProfileImageURL *string
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Phone == nil && u.Location == nil && u.ProfileImageURL == nil
}

func (u ProfileUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
	if u.Location != nil {
		user.Location = *u.Location
	}
	if u.ProfileImageURL != nil {
		user.ProfileImageURL = *u.ProfileImageURL
	}
}
