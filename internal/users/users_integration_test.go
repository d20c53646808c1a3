package users

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"primestore/internal/auth"
	"primestore/internal/stores/postgres"

	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := postgres.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.RunMigrations(db))

	_, err = db.Exec(`TRUNCATE cart_items, order_items, orders, products, categories, users CASCADE`)
	require.NoError(t, err)
	return db
}

func TestRegisterAndAuthenticate(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	user, err := conf.InsertUser(ctx, NewUser{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.False(t, user.IsAdmin)
	require.NotEqual(t, "correct horse", user.PasswordHash)

	authed, err := conf.Authenticate(ctx, Login{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, user.ID, authed.ID)

	_, err = conf.Authenticate(ctx, Login{Email: "alice@example.com", Password: "wrong"})
	require.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = conf.Authenticate(ctx, Login{Email: "nobody@example.com", Password: "whatever"})
	require.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestDuplicateEmailRejected(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	newUser := NewUser{Username: "bob", Email: "bob@example.com", Password: "hunter2hunter2"}

	_, err = conf.InsertUser(ctx, newUser)
	require.NoError(t, err)

	_, err = conf.InsertUser(ctx, newUser)
	require.True(t, errors.Is(err, ErrEmailTaken))
}

func TestRoleMapping(t *testing.T) {
	require.Equal(t, auth.RoleAdmin, User{IsAdmin: true}.Role())
	require.Equal(t, auth.RoleUser, User{}.Role())
}
