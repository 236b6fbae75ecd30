package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"toyWholesale/auth"
	"toyWholesale/models"
	"toyWholesale/pricing"
	"toyWholesale/repository"
	"toyWholesale/storage"
	"toyWholesale/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	db         *sql.DB
	mr         *miniredis.Miniredis
	tokens     *auth.TokenService
	users      UserService
	products   ProductService
	categories CategoryService
	carts      CartService
	orders     OrderService
	chats      ChatService
	stats      StatsService
}

func newFixture(t *testing.T, policy models.StatusPolicy) *fixture {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()
	db := testutil.NewSQLite(t)
	rdb, mr := testutil.NewRedis(t)

	userRepo, err := repository.NewUserRepository(db, log)
	require.NoError(t, err)
	userRepo.(*repository.UserRepo).SetPasswordCost(bcrypt.MinCost)
	sessionRepo, err := repository.NewSessionRepository(ctx, rdb, 30*time.Minute, log)
	require.NoError(t, err)
	cartRepo, err := repository.NewCartRepository(ctx, rdb, log)
	require.NoError(t, err)
	productRepo, err := repository.NewProductRepository(db, log)
	require.NoError(t, err)
	categoryRepo, err := repository.NewCategoryRepository(db, log)
	require.NoError(t, err)
	orderRepo, err := repository.NewOrderRepository(db, log)
	require.NoError(t, err)
	chatRepo, err := repository.NewChatRepository(db, log)
	require.NoError(t, err)

	files, err := storage.NewLocalStorage(t.TempDir(), "/uploads/", log)
	require.NoError(t, err)
	tokens := auth.NewTokenService("0123456789abcdef0123", time.Hour, "toy-wholesale")

	return &fixture{
		db:         db,
		mr:         mr,
		tokens:     tokens,
		users:      NewUserService(userRepo, sessionRepo, tokens, files, log),
		products:   NewProductService(productRepo, files, log),
		categories: NewCategoryService(categoryRepo),
		carts:      NewCartService(productRepo, cartRepo, log),
		orders:     NewOrderService(userRepo, productRepo, cartRepo, orderRepo, chatRepo, policy, log),
		chats:      NewChatService(chatRepo, log),
		stats:      NewStatsService(userRepo, orderRepo),
	}
}

func mustTiers(t *testing.T, p5, p20, p50 string) pricing.Tiers {
	t.Helper()
	tiers, err := pricing.NewTiers(p5, p20, p50)
	require.NoError(t, err)
	return tiers
}

func (f *fixture) product(t *testing.T, name, p5, p20, p50 string) int {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), ProductInput{
		Name:     name,
		Category: "Конструкторы",
		Tiers:    mustTiers(t, p5, p20, p50),
		InStock:  true,
	}, nil)
	require.NoError(t, err)
	return p.Id
}

func (f *fixture) user(t *testing.T, email string) models.SessionUser {
	t.Helper()
	u, err := f.users.Register(context.Background(), Registration{
		Email:       email,
		Password:    "secret123",
		CompanyName: "ООО Игрушки",
	}, nil)
	require.NoError(t, err)
	return models.SessionUser{UserId: u.Id}
}

func (f *fixture) admin(t *testing.T) models.SessionUser {
	t.Helper()
	id := testutil.SeedUser(t, f.db, "admin@example.by", true)
	return models.SessionUser{UserId: id, IsAdmin: true}
}
