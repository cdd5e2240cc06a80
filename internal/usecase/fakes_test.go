package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/errors"
)

var epoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	order []string
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
		r.order = append(r.order, u.ID)
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role string) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, id := range r.order {
		if r.users[id].Role == role {
			cp := *r.users[id]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, id string, update entity.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	update.Apply(u)
	return nil
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*entity.ChatRoom
	order []string
	// beforeCreate runs inside CreateIfAbsent, before the existence check.
	beforeCreate func()
	creates      int
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*entity.ChatRoom)}
}

func (r *fakeRoomRepo) put(room *entity.ChatRoom) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.ID]; !ok {
		r.order = append(r.order, room.ID)
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = epoch
	}
	r.rooms[room.ID] = room
}

func (r *fakeRoomRepo) GetByID(_ context.Context, id string) (*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, errors.NotFound("Chat room", nil)
	}
	cp := *room
	return &cp, nil
}

func (r *fakeRoomRepo) CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (*entity.ChatRoom, bool, error) {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	if _, ok := r.rooms[room.ID]; ok {
		r.mu.Unlock()
		existing, err := r.GetByID(ctx, room.ID)
		return existing, false, err
	}
	r.creates++
	r.mu.Unlock()

	r.put(room)
	stored, err := r.GetByID(ctx, room.ID)
	return stored, true, err
}

func (r *fakeRoomRepo) ListByParticipant(_ context.Context, userID string) ([]*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatRoom
	for _, id := range r.order {
		if r.rooms[id].HasParticipant(userID) {
			cp := *r.rooms[id]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) ListByProduce(_ context.Context, produceID string) ([]*entity.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatRoom
	for _, id := range r.order {
		room := r.rooms[id]
		if room.ProduceID != nil && *room.ProduceID == produceID {
			cp := *room
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeMessageRepo stamps messages one second apart and keeps the room
// summary in step, like the batched commit does.
type fakeMessageRepo struct {
	mu       sync.Mutex
	rooms    *fakeRoomRepo
	messages map[string][]*entity.Message
	seq      int
}

func newFakeMessageRepo(rooms *fakeRoomRepo) *fakeMessageRepo {
	return &fakeMessageRepo{rooms: rooms, messages: make(map[string][]*entity.Message)}
}

func (r *fakeMessageRepo) Append(_ context.Context, msg *entity.Message) error {
	r.rooms.mu.Lock()
	room, ok := r.rooms.rooms[msg.ChatRoomID]
	r.rooms.mu.Unlock()
	if !ok {
		return errors.NotFound("Chat room", nil)
	}

	r.mu.Lock()
	r.seq++
	msg.ID = fmt.Sprintf("m%04d", r.seq)
	msg.Timestamp = epoch.Add(time.Duration(r.seq) * time.Second)
	cp := *msg
	r.messages[msg.ChatRoomID] = append(r.messages[msg.ChatRoomID], &cp)
	r.mu.Unlock()

	r.rooms.mu.Lock()
	text, ts := msg.Text, msg.Timestamp
	room.LastMessage = &text
	room.LastMessageTime = &ts
	r.rooms.mu.Unlock()
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, roomID, messageID string) (*entity.Message, error) {
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

func (r *fakeMessageRepo) List(_ context.Context, roomID string, limit int, beforeID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := append([]*entity.Message(nil), r.messages[roomID]...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Timestamp.Equal(all[j].Timestamp) {
			return all[i].ID > all[j].ID
		}
		return all[i].Timestamp.After(all[j].Timestamp)
	})

	start := 0
	for i, m := range all {
		if m.ID == beforeID {
			start = i + 1
			break
		}
	}

	var page []*entity.Message
	for i := start; i < len(all) && len(page) < limit; i++ {
		cp := *all[i]
		page = append(page, &cp)
	}
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

func (r *fakeMessageRepo) MarkReadExcept(_ context.Context, roomID, readerID string) (int, error) {
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

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*entity.Notification
	order         []string
	deleted       map[string]bool
	batches       [][]string
	failWith      error
	seq           int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		notifications: make(map[string]*entity.Notification),
		deleted:       make(map[string]bool),
	}
}

func (r *fakeNotificationRepo) CreateBatch(_ context.Context, notifications []*entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	var ids []string
	for _, n := range notifications {
		if n.ID == "" {
			r.seq++
			n.ID = fmt.Sprintf("n%04d", r.seq)
		}
		if _, ok := r.notifications[n.ID]; ok || r.deleted[n.ID] {
			continue
		}
		r.order = append(r.order, n.ID)
		cp := *n
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = epoch.Add(time.Duration(len(r.order)) * time.Second)
		}
		r.notifications[n.ID] = &cp
		ids = append(ids, n.ID)
	}
	r.batches = append(r.batches, ids)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, errors.NotFound("Notification", nil)
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, limit int, unreadOnly bool) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		n, ok := r.notifications[r.order[i]]
		if !ok || n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
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

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return errors.NotFound("Notification", nil)
	}
	n.IsRead = true
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) (int, error) {
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

func (r *fakeNotificationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notifications, id)
	r.deleted[id] = true
	return nil
}

func (r *fakeNotificationRepo) forUser(userID string) []*entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, id := range r.order {
		if n, ok := r.notifications[id]; ok && n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (r *fakeNotificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notifications)
}

type fakeProduceRepo struct {
	mu      sync.Mutex
	produce map[string]*entity.Produce
	seq     int

	// beforeUpdate runs once, unlocked, ahead of the next Update.
	beforeUpdate func()
}

func newFakeProduceRepo() *fakeProduceRepo {
	return &fakeProduceRepo{produce: make(map[string]*entity.Produce)}
}

func (r *fakeProduceRepo) Create(_ context.Context, p *entity.Produce) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = fmt.Sprintf("p%03d", r.seq)
	p.CreatedAt = epoch.Add(time.Duration(r.seq) * time.Minute)
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.produce[p.ID] = &cp
	return nil
}

func (r *fakeProduceRepo) GetByID(_ context.Context, id string) (*entity.Produce, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.produce[id]
	if !ok {
		return nil, errors.NotFound("Produce", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProduceRepo) List(_ context.Context, filter entity.ProduceFilter) ([]*entity.Produce, error) {
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
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeProduceRepo) ListByFarmer(_ context.Context, farmerID string) ([]*entity.Produce, error) {
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

func (r *fakeProduceRepo) Update(_ context.Context, id string, update entity.ProduceUpdate) (string, error) {
	r.mu.Lock()
	hook := r.beforeUpdate
	r.beforeUpdate = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.produce[id]
	if !ok {
		return "", errors.NotFound("Produce", nil)
	}
	previous := p.Status
	update.Apply(p)
	return previous, nil
}

func (r *fakeProduceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.produce, id)
	return nil
}

type fakeImageRepo struct {
	mu     sync.Mutex
	images map[string]*entity.Image
	seq    int
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[string]*entity.Image)}
}

func (r *fakeImageRepo) Save(_ context.Context, image *entity.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	image.ID = fmt.Sprintf("%024x", r.seq)
	cp := *image
	r.images[image.ID] = &cp
	return nil
}

func (r *fakeImageRepo) GetByID(_ context.Context, id string) (*entity.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	if !ok {
		return nil, errors.NotFound("Image", nil)
	}
	cp := *img
	return &cp, nil
}

func (r *fakeImageRepo) DeleteByProduce(_ context.Context, produceID string) (int64, error) {
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

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Upload(_ context.Context, objectPath string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectPath] = data
	return "https://storage.googleapis.com/test-bucket/" + objectPath, nil
}

func (s *fakeObjectStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for p := range s.objects {
		if len(p) >= len(prefix) && p[:len(prefix)] == prefix {
			delete(s.objects, p)
			n++
		}
	}
	return n, nil
}

// inlineDispatcher runs tasks synchronously and, like the real dispatcher,
// swallows their errors.
type inlineDispatcher struct {
	mu     sync.Mutex
	names  []string
	errs   []error
	reject bool
}

func (d *inlineDispatcher) Submit(name string, run func(ctx context.Context) error) bool {
	d.mu.Lock()
	d.names = append(d.names, name)
	reject := d.reject
	d.mu.Unlock()
	if reject {
		return false
	}

	err := run(context.Background())

	d.mu.Lock()
	d.errs = append(d.errs, err)
	d.mu.Unlock()
	return true
}

type denyLimiter struct {
	actions map[string]bool
}

func (l denyLimiter) Allow(_, action string) (bool, time.Duration) {
	if l.actions[action] {
		return false, time.Minute
	}
	return true, 0
}

var (
	_ repository.UserRepository         = (*fakeUserRepo)(nil)
	_ repository.ChatRoomRepository     = (*fakeRoomRepo)(nil)
	_ repository.MessageRepository      = (*fakeMessageRepo)(nil)
	_ repository.NotificationRepository = (*fakeNotificationRepo)(nil)
	_ repository.ProduceRepository      = (*fakeProduceRepo)(nil)
	_ repository.ImageRepository        = (*fakeImageRepo)(nil)
)

// fixture wires every usecase against the fakes.
type fixture struct {
	users         *fakeUserRepo
	rooms         *fakeRoomRepo
	messages      *fakeMessageRepo
	notifications *fakeNotificationRepo
	produce       *fakeProduceRepo
	images        *fakeImageRepo
	dispatcher    *inlineDispatcher

	fanOut       *FanOut
	chat         *ChatUseCase
	notification *NotificationUseCase
	produceUC    *ProduceUseCase
	imageUC      *ImageUseCase
}

func newFixture(users ...*entity.User) *fixture {
	f := &fixture{
		users:         newFakeUserRepo(users...),
		rooms:         newFakeRoomRepo(),
		notifications: newFakeNotificationRepo(),
		produce:       newFakeProduceRepo(),
		images:        newFakeImageRepo(),
		dispatcher:    &inlineDispatcher{},
	}
	f.messages = newFakeMessageRepo(f.rooms)
	f.fanOut = NewFanOut(f.users, f.rooms, f.notifications)
	f.chat = NewChatUseCase(f.rooms, f.messages, f.users, f.fanOut, f.dispatcher, nil)
	f.notification = NewNotificationUseCase(f.notifications)
	f.imageUC = NewImageUseCase(f.images, nil)
	f.produceUC = NewProduceUseCase(f.produce, f.users, f.fanOut, f.imageUC, f.dispatcher)
	return f
}

func farmer(id, name string) *entity.User {
	return &entity.User{ID: id, Name: name, Role: entity.RoleFarmer, Location: "Nakuru"}
}

func buyer(id, name string) *entity.User {
	return &entity.User{ID: id, Name: name, Role: entity.RoleBuyer}
}
