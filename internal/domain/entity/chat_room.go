package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// ChatRoom is a two-party conversation. ParticipantIDs keeps creation order
// for display; lookups treat it as an unordered pair.
type ChatRoom struct {
	ID               string            `json:"id" firestore:"-"`
	ParticipantIDs   []string          `json:"participantIds" firestore:"participantIds"`
	ParticipantNames map[string]string `json:"participantNames" firestore:"participantNames"`
	LastMessage      *string           `json:"lastMessage" firestore:"lastMessage"`
	LastMessageTime  *time.Time        `json:"lastMessageTime" firestore:"lastMessageTime"`
	ProduceID        *string           `json:"produceId" firestore:"produceId"`
	ProduceName      *string           `json:"produceName" firestore:"produceName"`
	CreatedAt        time.Time         `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

func (r *ChatRoom) HasParticipant(userID string) bool {
	for _, id := range r.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the first participant that is not userID, or "".
func (r *ChatRoom) OtherParticipant(userID string) string {
	for _, id := range r.ParticipantIDs {
		if id != userID {
			return id
		}
	}
	return ""
}

// DirectRoomID derives the store key of the room between a and b. The pair is
// sorted first so both participants resolve the same key.
func DirectRoomID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	sum := sha256.Sum256([]byte(pair[0] + "|" + pair[1]))
	return "dm_" + hex.EncodeToString(sum[:])[:40]
}
