package entity

import "time"

type Message struct {
	ID         string    `json:"id" firestore:"-"`
	ChatRoomID string    `json:"chatRoomId" firestore:"-"`
	SenderID   string    `json:"senderId" firestore:"senderId"`
	Text       string    `json:"text" firestore:"text"`
	Timestamp  time.Time `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	IsRead     bool      `json:"isRead" firestore:"isRead"`
}
