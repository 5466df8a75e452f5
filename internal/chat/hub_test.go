package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relogio-be/internal/models"
)

func msg(id int64, conv, sender, body string) models.ChatMessage {
	return models.ChatMessage{
		ID:             id,
		ConversationID: conv,
		Sender:         sender,
		Body:           body,
		CreatedAt:      time.Unix(id, 0),
	}
}

func receive(t *testing.T, sub *Subscription) models.ChatMessage {
	t.Helper()
	select {
	case m, ok := <-sub.C:
		require.True(t, ok, "subscription channel closed unexpectedly")
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return models.ChatMessage{}
	}
}

func TestHubPublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()

	a := h.Subscribe("conv-1", 0)
	b := h.Subscribe("conv-1", 0)
	other := h.Subscribe("conv-2", 0)
	a.finishCatchUp(nil)
	b.finishCatchUp(nil)
	other.finishCatchUp(nil)

	h.Publish(msg(1, "conv-1", models.SenderCustomer, "oi"))

	assert.Equal(t, "oi", receive(t, a).Body)
	assert.Equal(t, "oi", receive(t, b).Body)

	select {
	case m := <-other.C:
		t.Fatalf("subscriber of another conversation received message #%d", m.ID)
	default:
	}
}

func TestHubCursorFiltersAlreadySeen(t *testing.T) {
	h := NewHub()

	sub := h.Subscribe("conv-1", 2)
	sub.finishCatchUp(nil)

	h.Publish(msg(1, "conv-1", models.SenderAdmin, "old"))
	h.Publish(msg(2, "conv-1", models.SenderAdmin, "old too"))
	h.Publish(msg(3, "conv-1", models.SenderCustomer, "new"))

	got := receive(t, sub)
	assert.Equal(t, int64(3), got.ID)
	assert.Equal(t, "new", got.Body)
}

func TestHubCatchUpMergesWithoutDuplicatesOrGaps(t *testing.T) {
	h := NewHub()

	sub := h.Subscribe("conv-1", 0)

	// Live messages land while the backlog is still loading; one of them
	// also appears in the backlog read.
	h.Publish(msg(2, "conv-1", models.SenderCustomer, "b"))
	h.Publish(msg(3, "conv-1", models.SenderAdmin, "c"))

	sub.finishCatchUp([]models.ChatMessage{
		msg(1, "conv-1", models.SenderAdmin, "a"),
		msg(2, "conv-1", models.SenderCustomer, "b"),
	})

	var ids []int64
	for i := 0; i < 3; i++ {
		ids = append(ids, receive(t, sub).ID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)

	select {
	case m := <-sub.C:
		t.Fatalf("unexpected duplicate message #%d", m.ID)
	default:
	}
}

func TestHubDeliveryIsNonDecreasing(t *testing.T) {
	h := NewHub()

	sub := h.Subscribe("conv-1", 0)
	sub.finishCatchUp(nil)

	for i := int64(1); i <= 20; i++ {
		h.Publish(msg(i, "conv-1", models.SenderCustomer, "m"))
	}

	var last int64
	for i := 0; i < 20; i++ {
		m := receive(t, sub)
		require.Greater(t, m.ID, last, "feed went backwards")
		require.False(t, m.CreatedAt.Before(time.Unix(last, 0)), "timestamps went backwards")
		last = m.ID
	}
}

func TestHubCloseTearsDownSubscription(t *testing.T) {
	h := NewHub()

	sub := h.Subscribe("conv-1", 0)
	sub.finishCatchUp(nil)
	sub.Close()
	sub.Close() // idempotent

	// Publishing after teardown must not panic and must not buffer anything.
	h.Publish(msg(1, "conv-1", models.SenderCustomer, "late"))

	_, ok := <-sub.C
	assert.False(t, ok, "channel should be closed")

	h.mu.RLock()
	_, stillRegistered := h.subs["conv-1"]
	h.mu.RUnlock()
	assert.False(t, stillRegistered, "hub should drop empty subscriber sets")
}
