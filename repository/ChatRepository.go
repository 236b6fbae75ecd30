package repository

import (
	"context"
	"database/sql"
	"errors"

	"toyWholesale/models"

	"go.uber.org/zap"
)

type ChatRepository interface {
	GetChatById(ctx context.Context, chatId int) (models.Chat_db, bool, error)
	GetChatByOrderId(ctx context.Context, orderId int) (models.Chat_db, bool, error)
	// GetChats lists chats newest first; a nil userId lists every chat.
	GetChats(ctx context.Context, userId *int) ([]models.Chat_db, error)
	AddMessage(ctx context.Context, msg models.Message_db) (models.Message_db, error)
	// GetMessages returns the full history of a chat, oldest first.
	GetMessages(ctx context.Context, chatId int) ([]models.Message_db, error)
}

type ChatRepo struct {
	db  *sql.DB
	log *zap.Logger
}

func NewChatRepository(conn *sql.DB, log *zap.Logger) (ChatRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &ChatRepo{
		db:  conn,
		log: log.Named("chats"),
	}, nil
}

func (c *ChatRepo) getChat(ctx context.Context, op, where string, arg int) (chat models.Chat_db, exists bool, err error) {
	err = c.db.QueryRowContext(ctx, "SELECT id, order_id, user_id, created_at FROM chats WHERE "+where, arg).
		Scan(&chat.Id, &chat.OrderId, &chat.UserId, &chat.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			return
		}
		c.log.Error(op, zap.Error(err))
		err = models.ErrServerError
		return
	}
	exists = true
	return
}

func (c *ChatRepo) GetChatById(ctx context.Context, chatId int) (models.Chat_db, bool, error) {
	return c.getChat(ctx, "GetChatById", "id = $1", chatId)
}

func (c *ChatRepo) GetChatByOrderId(ctx context.Context, orderId int) (models.Chat_db, bool, error) {
	return c.getChat(ctx, "GetChatByOrderId", "order_id = $1", orderId)
}

func (c *ChatRepo) GetChats(ctx context.Context, userId *int) (chats []models.Chat_db, err error) {
	var w whereBuilder
	if userId != nil {
		w.add("user_id = ?", *userId)
	}
	rows, err := c.db.QueryContext(ctx, "SELECT id, order_id, user_id, created_at FROM chats"+w.String()+" ORDER BY created_at DESC, id DESC", w.params...)
	if err != nil {
		c.log.Error("GetChats", zap.Error(err))
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	chats = []models.Chat_db{}
	for rows.Next() {
		var ch models.Chat_db
		if err = rows.Scan(&ch.Id, &ch.OrderId, &ch.UserId, &ch.CreatedAt); err != nil {
			c.log.Error("GetChats", zap.Error(err))
			err = models.ErrServerError
			return
		}
		chats = append(chats, ch)
	}
	if err = rows.Err(); err != nil {
		c.log.Error("GetChats", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

// AddMessage appends a message. A chat id that does not exist yields
// ErrNotFoundError and nothing is written.
func (c *ChatRepo) AddMessage(ctx context.Context, msg models.Message_db) (_ models.Message_db, err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		c.log.Error("AddMessage: begin", zap.Error(err))
		return msg, models.ErrServerError
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM chats WHERE id = $1", msg.ChatId).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return msg, models.ErrNotFoundError
		}
		c.log.Error("AddMessage: chat lookup", zap.Error(err))
		return msg, models.ErrServerError
	}

	err = tx.QueryRowContext(ctx,
		"INSERT INTO messages (chat_id, sender_id, content, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		msg.ChatId, msg.SenderId, msg.Content, msg.CreatedAt).Scan(&msg.Id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return msg, models.ErrNotFoundError
		}
		c.log.Error("AddMessage", zap.Error(err))
		return msg, models.ErrServerError
	}

	if err = tx.Commit(); err != nil {
		c.log.Error("AddMessage: commit", zap.Error(err))
		return msg, models.ErrServerError
	}
	return msg, nil
}

func (c *ChatRepo) GetMessages(ctx context.Context, chatId int) (msgs []models.Message_db, err error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, chat_id, sender_id, content, created_at FROM messages WHERE chat_id = $1 ORDER BY created_at ASC, id ASC",
		chatId)
	if err != nil {
		c.log.Error("GetMessages", zap.Error(err))
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	msgs = []models.Message_db{}
	for rows.Next() {
		var m models.Message_db
		if err = rows.Scan(&m.Id, &m.ChatId, &m.SenderId, &m.Content, &m.CreatedAt); err != nil {
			c.log.Error("GetMessages", zap.Error(err))
			err = models.ErrServerError
			return
		}
		msgs = append(msgs, m)
	}
	if err = rows.Err(); err != nil {
		c.log.Error("GetMessages", zap.Error(err))
		err = models.ErrServerError
	}
	return
}
