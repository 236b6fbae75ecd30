package services

import (
	"context"
	"strings"
	"time"

	"toyWholesale/entities"
	"toyWholesale/models"
	"toyWholesale/repository"

	"go.uber.org/zap"
)

type ChatService struct {
	chr repository.ChatRepository
	log *zap.Logger
}

func NewChatService(chatRepo repository.ChatRepository, log *zap.Logger) ChatService {
	return ChatService{
		chr: chatRepo,
		log: log.Named("chats"),
	}
}

func toChats(found []models.Chat_db) []entities.Chat {
	chats := make([]entities.Chat, 0, len(found))
	for _, c := range found {
		chats = append(chats, entities.NewChat(c))
	}
	return chats
}

func (cs *ChatService) ListUserChats(ctx context.Context, userId int) ([]entities.Chat, error) {
	found, err := cs.chr.GetChats(ctx, &userId)
	if err != nil {
		return nil, err
	}
	return toChats(found), nil
}

func (cs *ChatService) ListChats(ctx context.Context) ([]entities.Chat, error) {
	found, err := cs.chr.GetChats(ctx, nil)
	if err != nil {
		return nil, err
	}
	return toChats(found), nil
}

func visible(caller models.SessionUser, chat models.Chat_db) bool {
	return caller.IsAdmin || chat.UserId == caller.UserId
}

// access loads a chat the caller may use. A chat owned by someone else is
// reported as missing.
func (cs *ChatService) access(ctx context.Context, caller models.SessionUser, chatId int) (chat models.Chat_db, err error) {
	chat, ex, err := cs.chr.GetChatById(ctx, chatId)
	if err != nil {
		return
	}
	if !ex || !visible(caller, chat) {
		err = models.ErrNotFoundError
	}
	return
}

func (cs *ChatService) GetOrderChat(ctx context.Context, caller models.SessionUser, orderId int) (chat entities.Chat, err error) {
	found, ex, err := cs.chr.GetChatByOrderId(ctx, orderId)
	if err != nil {
		return
	}
	if !ex || !visible(caller, found) {
		err = models.ErrNotFoundError
		return
	}
	chat = entities.NewChat(found)
	return
}

// ListMessages returns the whole thread, oldest first.
func (cs *ChatService) ListMessages(ctx context.Context, caller models.SessionUser, chatId int) (msgs []entities.Message, err error) {
	if _, err = cs.access(ctx, caller, chatId); err != nil {
		return
	}
	found, err := cs.chr.GetMessages(ctx, chatId)
	if err != nil {
		return
	}
	msgs = make([]entities.Message, 0, len(found))
	for _, m := range found {
		msgs = append(msgs, entities.NewMessage(m))
	}
	return
}

func (cs *ChatService) PostMessage(ctx context.Context, caller models.SessionUser, chatId int, content string) (msg entities.Message, err error) {
	content = strings.TrimSpace(content)
	if content == "" {
		err = models.ErrEmptyMessage
		return
	}
	if _, err = cs.access(ctx, caller, chatId); err != nil {
		return
	}
	saved, err := cs.chr.AddMessage(ctx, models.Message_db{
		ChatId:    chatId,
		SenderId:  caller.UserId,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	msg = entities.NewMessage(saved)
	return
}
