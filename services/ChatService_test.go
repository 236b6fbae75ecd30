package services

import (
	"context"
	"strings"
	"testing"

	"toyWholesale/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService_Conversation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	buyer := f.user(t, "buyer@example.by")
	admin := f.admin(t)
	cubes := f.product(t, "Кубики", "10", "8", "6")

	order, err := f.orders.PlaceOrder(ctx, buyer.UserId, Checkout{Items: []CheckoutItem{{cubes, 5}}, DeliveryAddress: "Минск"})
	require.NoError(t, err)

	chat, err := f.chats.GetOrderChat(ctx, buyer, order.Id)
	require.NoError(t, err)
	assert.Equal(t, order.ChatId, chat.Id)

	_, err = f.chats.PostMessage(ctx, buyer, chat.Id, "  Когда отгрузка?  ")
	require.NoError(t, err)
	reply, err := f.chats.PostMessage(ctx, admin, chat.Id, "Завтра")
	require.NoError(t, err)
	assert.Equal(t, admin.UserId, reply.SenderId)

	msgs, err := f.chats.ListMessages(ctx, buyer, chat.Id)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Когда отгрузка?", msgs[0].Content)
	assert.Equal(t, "Завтра", msgs[1].Content)

	all, err := f.chats.ListChats(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestChatService_Access(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	buyer := f.user(t, "buyer@example.by")
	other := f.user(t, "other@example.by")
	cubes := f.product(t, "Кубики", "10", "8", "6")

	order, err := f.orders.PlaceOrder(ctx, buyer.UserId, Checkout{Items: []CheckoutItem{{cubes, 5}}, DeliveryAddress: "Минск"})
	require.NoError(t, err)

	_, err = f.chats.GetOrderChat(ctx, other, order.Id)
	assert.ErrorIs(t, err, models.ErrNotFoundError)
	_, err = f.chats.ListMessages(ctx, other, order.ChatId)
	assert.ErrorIs(t, err, models.ErrNotFoundError)
	_, err = f.chats.PostMessage(ctx, other, order.ChatId, "привет")
	assert.ErrorIs(t, err, models.ErrNotFoundError)

	mine, err := f.chats.ListUserChats(ctx, other.UserId)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestChatService_PostMessageRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PolicyForward)
	admin := f.admin(t)

	_, err := f.chats.PostMessage(ctx, admin, 1, strings.Repeat(" ", 3))
	assert.ErrorIs(t, err, models.ErrEmptyMessage)

	_, err = f.chats.PostMessage(ctx, admin, 999, "есть кто?")
	assert.ErrorIs(t, err, models.ErrNotFoundError)

	var n int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n))
	assert.Zero(t, n)
}
