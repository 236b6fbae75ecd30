package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"toyWholesale/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, userId int, isAdmin bool) (sessionId string, err error)
	GetSession(ctx context.Context, sessionId string) (user models.SessionUser, exists bool, err error)
	RefreshSession(ctx context.Context, sessionId string) (err error)
	DeleteSession(ctx context.Context, sessionId string) (err error)
}

type SessionRepo struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewSessionRepository(ctx context.Context, redisConn *redis.Client, ttl time.Duration, log *zap.Logger) (SessionRepository, error) {
	if redisConn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redisConn.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &SessionRepo{
		rdb: redisConn,
		ttl: ttl,
		log: log.Named("sessions"),
	}, nil
}

func sessionKey(sessionId string) string {
	return "session:" + sessionId
}

func (s *SessionRepo) CreateSession(ctx context.Context, userId int, isAdmin bool) (sessionId string, err error) {
	sessionId = uuid.NewString()
	key := sessionKey(sessionId)

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, "userId", userId, "isAdmin", strconv.FormatBool(isAdmin))
	pipe.Expire(ctx, key, s.ttl)
	if _, err = pipe.Exec(ctx); err != nil {
		s.log.Error("CreateSession", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

func (s *SessionRepo) GetSession(ctx context.Context, sessionId string) (user models.SessionUser, exists bool, err error) {
	val, err := s.rdb.HGetAll(ctx, sessionKey(sessionId)).Result()
	if err != nil {
		s.log.Error("GetSession", zap.Error(err))
		err = models.ErrServerError
		return
	}
	if len(val) == 0 {
		return
	}
	user.SessionId = sessionId
	user.UserId, err = strconv.Atoi(val["userId"])
	if err != nil {
		s.log.Warn("GetSession: malformed session", zap.String("sessionId", sessionId), zap.Error(err))
		err = nil
		return
	}
	user.IsAdmin, _ = strconv.ParseBool(val["isAdmin"])
	exists = true
	return
}

func (s *SessionRepo) RefreshSession(ctx context.Context, sessionId string) (err error) {
	err = s.rdb.Expire(ctx, sessionKey(sessionId), s.ttl).Err()
	if err != nil {
		s.log.Error("RefreshSession", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

func (s *SessionRepo) DeleteSession(ctx context.Context, sessionId string) (err error) {
	err = s.rdb.Del(ctx, sessionKey(sessionId)).Err()
	if err != nil {
		s.log.Error("DeleteSession", zap.Error(err))
		err = models.ErrServerError
	}
	return
}
