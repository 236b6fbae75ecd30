// Package testutil builds throwaway SQLite and Redis backends for tests.
package testutil

import (
	"database/sql"
	"testing"
	"time"

	"toyWholesale/migrations"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// NewSQLite opens a private in-memory database with the schema applied.
func NewSQLite(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serializes access
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.Up(db, "sqlite3", zap.NewNop()))
	return db
}

// NewRedis starts a miniredis server and returns a client connected to it.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

// SeedUser inserts a user row directly and returns its id.
func SeedUser(t *testing.T, db *sql.DB, email string, isAdmin bool) int {
	t.Helper()
	var id int
	err := db.QueryRow(`INSERT INTO users (email, password_hash, company_name, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		email, "x", "ООО Тест", isAdmin, time.Now().UTC()).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedProduct inserts a product row directly and returns its id.
func SeedProduct(t *testing.T, db *sql.DB, name string, p5, p20, p50 string, inStock bool) int {
	t.Helper()
	var id int
	err := db.QueryRow(`INSERT INTO products (name, category, price5, price20, price50, in_stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		name, "Конструкторы", p5, p20, p50, inStock, time.Now().UTC()).Scan(&id)
	require.NoError(t, err)
	return id
}
