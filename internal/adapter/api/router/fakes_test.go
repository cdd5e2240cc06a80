package router

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"agroconnect/internal/domain/entity"
	"agroconnect/pkg/errors"
)

// memStore backs every repository the routes touch.
type memStore struct {
	mu            sync.Mutex
	seq           int
	users         map[string]*entity.User
	rooms         map[string]*entity.ChatRoom
	messages      map[string][]*entity.Message
	notifications map[string]*entity.Notification
	tombstones    map[string]bool
	produce       map[string]*entity.Produce
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[string]*entity.User{},
		rooms:         map[string]*entity.ChatRoom{},
		messages:      map[string][]*entity.Message{},
		notifications: map[string]*entity.Notification{},
		tombstones:    map[string]bool{},
		produce:       map[string]*entity.Produce{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

type memUsers struct{ *memStore }

func (r memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) ListByRole(_ context.Context, role string) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memUsers) Update(_ context.Context, id string, update entity.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	update.Apply(u)
	return nil
}

type memRooms struct{ *memStore }

func (r memRooms) GetByID(_ context.Context, id string) (*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Chat room", nil)
	}
	cp := *room
	return &cp, nil
}

func (r memRooms) CreateIfAbsent(_ context.Context, room *entity.ChatRoom) (*entity.ChatRoom, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.rooms[room.ID]; ok {
		cp := *existing
		return &cp, false, nil
	}
	stored := *room
	stored.CreatedAt = time.Now()
	r.rooms[room.ID] = &stored
	cp := stored
	return &cp, true, nil
}

func (r memRooms) ListByParticipant(_ context.Context, userID string) ([]*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatRoom
	for _, room := range r.rooms {
		if room.HasParticipant(userID) {
			cp := *room
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memRooms) ListByProduce(_ context.Context, produceID string) ([]*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatRoom
	for _, room := range r.rooms {
		if room.ProduceID != nil && *room.ProduceID == produceID {
			cp := *room
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memMessages struct{ *memStore }

func (r memMessages) Append(_ context.Context, msg *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[msg.ChatRoomID]
	if !ok {
		return errors.NotFound("Chat room", nil)
	}
	msg.ID = r.nextID("msg")
	msg.Timestamp = time.Now()
	text := msg.Text
	ts := msg.Timestamp
	room.LastMessage = &text
	room.LastMessageTime = &ts
	cp := *msg
	r.messages[msg.ChatRoomID] = append(r.messages[msg.ChatRoomID], &cp)
	return nil
}

func (r memMessages) GetByID(_ context.Context, roomID, messageID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages[roomID] {
		if m.ID == messageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r memMessages) List(_ context.Context, roomID string, limit int, _ string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.messages[roomID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]*entity.Message, 0, len(all))
	for _, m := range all {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r memMessages) MarkReadExcept(_ context.Context, roomID, readerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages[roomID] {
		if !m.IsRead && m.SenderID != readerID {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

type memNotifications struct{ *memStore }

func (r memNotifications) CreateBatch(_ context.Context, notifications []*entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = r.nextID("n")
		}
		if _, ok := r.notifications[n.ID]; ok || r.tombstones[n.ID] {
			continue
		}
		cp := *n
		cp.CreatedAt = time.Now()
		r.notifications[n.ID] = &cp
	}
	return nil
}

func (r memNotifications) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, errors.NotFound("Notification", nil)
	}
	cp := *n
	return &cp, nil
}

func (r memNotifications) ListByUser(_ context.Context, userID string, limit int, unreadOnly bool) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			cp := *n
			out = append(out, &cp)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memNotifications) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, notif := range r.notifications {
		if notif.UserID == userID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (r memNotifications) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return errors.NotFound("Notification", nil)
	}
	n.IsRead = true
	return nil
}

func (r memNotifications) MarkAllRead(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (r memNotifications) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notifications, id)
	r.tombstones[id] = true
	return nil
}

type memProduce struct{ *memStore }

func (r memProduce) Create(_ context.Context, p *entity.Produce) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID("p")
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.produce[p.ID] = &cp
	return nil
}

func (r memProduce) GetByID(_ context.Context, id string) (*entity.Produce, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.produce[id]
	if !ok {
		return nil, errors.NotFound("Produce", nil)
	}
	cp := *p
	return &cp, nil
}

func (r memProduce) List(_ context.Context, filter entity.ProduceFilter) ([]*entity.Produce, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Produce
	for _, p := range r.produce {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r memProduce) ListByFarmer(_ context.Context, farmerID string) ([]*entity.Produce, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Produce
	for _, p := range r.produce {
		if p.FarmerID == farmerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memProduce) Update(_ context.Context, id string, update entity.ProduceUpdate) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.produce[id]
	if !ok {
		return "", errors.NotFound("Produce", nil)
	}
	previous := p.Status
	update.Apply(p)
	p.UpdatedAt = time.Now()
	return previous, nil
}

func (r memProduce) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.produce, id)
	return nil
}

// inlineDispatcher runs background work before Submit returns.
type inlineDispatcher struct{}

func (inlineDispatcher) Submit(_ string, run func(ctx context.Context) error) bool {
	_ = run(context.Background())
	return true
}

type memImages struct {
	mu     sync.Mutex
	images map[string]*entity.Image
}

func (r *memImages) Save(_ context.Context, img *entity.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	img.ID = fmt.Sprintf("img%d", len(r.images)+1)
	cp := *img
	r.images[img.ID] = &cp
	return nil
}

func (r *memImages) GetByID(_ context.Context, id string) (*entity.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	if !ok {
		return nil, errors.NotFound("Image", nil)
	}
	cp := *img
	return &cp, nil
}

func (r *memImages) DeleteByProduce(_ context.Context, produceID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, img := range r.images {
		if img.ProduceID == produceID {
			delete(r.images, id)
			n++
		}
	}
	return n, nil
}
