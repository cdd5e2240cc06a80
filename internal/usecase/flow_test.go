package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/infrastructure/outbox"
	"agroconnect/pkg/retry"
)

// TestBuyerFarmerFlow drives a listing, a conversation and the ready
// notification through the real dispatcher.
func TestBuyerFarmerFlow(t *testing.T) {
	f := newFixture(farmer("farmer", "Fred"), buyer("buyer", "Bea"))
	d := outbox.NewDispatcher(outbox.Options{
		Workers:     2,
		QueueSize:   32,
		TaskTimeout: time.Second,
		Retry:       retry.Policy{InitialInterval: time.Millisecond, MaxElapsed: 50 * time.Millisecond},
	})
	d.Start()
	f.chat.dispatcher = d
	f.produceUC.dispatcher = d
	ctx := context.Background()

	in := maizeInput()
	in.Status = entity.ProduceUnready
	p, err := f.produceUC.Create(ctx, "farmer", in)
	require.NoError(t, err)

	room, created, err := f.chat.ResolveRoom(ctx, "buyer", ResolveRoomInput{OtherUserID: "farmer", ProduceID: p.ID, ProduceName: p.Name})
	require.NoError(t, err)
	require.True(t, created)

	_, err = f.chat.SendMessage(ctx, "buyer", SendMessageInput{ChatRoomID: room.ID, Text: "When will it be ready?"})
	require.NoError(t, err)
	_, err = f.chat.SendMessage(ctx, "farmer", SendMessageInput{ChatRoomID: room.ID, Text: "Next week"})
	require.NoError(t, err)

	ready := entity.ProduceReady
	_, err = f.produceUC.Update(ctx, "farmer", p.ID, entity.ProduceUpdate{Status: &ready})
	require.NoError(t, err)

	require.NoError(t, d.Shutdown(ctx))

	buyerNotes, err := f.notification.List(ctx, "buyer", 0, false)
	require.NoError(t, err)
	titles := map[string]bool{}
	for _, n := range buyerNotes {
		titles[n.Title] = true
	}
	assert.Len(t, buyerNotes, 3)
	assert.True(t, titles["New Produce Available!"])
	assert.True(t, titles["New message from Fred"])
	assert.True(t, titles["Produce Now Ready!"])

	farmerUnread, err := f.notification.UnreadCount(ctx, "farmer")
	require.NoError(t, err)
	assert.Equal(t, int64(2), farmerUnread)

	n, err := f.chat.MarkRoomRead(ctx, "buyer", room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.chat.MarkRoomRead(ctx, "farmer", room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	marked, err := f.notification.MarkAllRead(ctx, "buyer")
	require.NoError(t, err)
	assert.Equal(t, 3, marked)

	unread, err := f.notification.UnreadCount(ctx, "buyer")
	require.NoError(t, err)
	assert.Zero(t, unread)

	rooms, err := f.chat.ListRooms(ctx, "farmer")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.NotNil(t, rooms[0].LastMessage)
	assert.Equal(t, "Next week", *rooms[0].LastMessage)
}
