package repository

import (
	"context"
	"errors"
	"time"

	"toyWholesale/cart"
	"toyWholesale/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cartTTL = 24 * time.Hour

type CartRepository interface {
	GetCart(ctx context.Context, cartSessionId string) (cart.Cart, error)
	SetCart(ctx context.Context, cartSessionId string, c cart.Cart) error
	DeleteCart(ctx context.Context, cartSessionId string) error
}

type CartRepo struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewCartRepository(ctx context.Context, redisConn *redis.Client, log *zap.Logger) (CartRepository, error) {
	if redisConn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redisConn.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &CartRepo{
		rdb: redisConn,
		log: log.Named("carts"),
	}, nil
}

func cartKey(cartSessionId string) string {
	return "cart:" + cartSessionId
}

func (c *CartRepo) SetCart(ctx context.Context, cartSessionId string, crt cart.Cart) (err error) {
	data, err := cart.Encode(crt)
	if err != nil {
		c.log.Error("SetCart: encode", zap.Error(err))
		err = models.ErrServerError
		return
	}
	err = c.rdb.Set(ctx, cartKey(cartSessionId), data, cartTTL).Err()
	if err != nil {
		c.log.Error("SetCart", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

// GetCart returns an empty cart for unknown ids. Stored data that cannot be
// decoded is dropped.
func (c *CartRepo) GetCart(ctx context.Context, cartSessionId string) (res cart.Cart, err error) {
	val, err := c.rdb.Get(ctx, cartKey(cartSessionId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = nil
			return
		}
		c.log.Error("GetCart", zap.Error(err))
		err = models.ErrServerError
		return
	}
	res, decodeErr := cart.Decode(val)
	if decodeErr != nil {
		c.log.Warn("GetCart: discarding unreadable cart", zap.String("cartSessionId", cartSessionId), zap.Error(decodeErr))
	}
	return
}

func (c *CartRepo) DeleteCart(ctx context.Context, cartSessionId string) (err error) {
	err = c.rdb.Del(ctx, cartKey(cartSessionId)).Err()
	if err != nil {
		c.log.Error("DeleteCart", zap.Error(err))
		err = models.ErrServerError
	}
	return
}
