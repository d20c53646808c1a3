package cart

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"primestore/internal/stores/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// setupDB connects to the database named by TEST_DATABASE_URL and resets the
// tables. Tests skip when the variable is unset.
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

func insertUser(t *testing.T, db *sql.DB) string {
	t.Helper()
	userID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, 'tester', $2, 'x')`, userID, userID+"@example.com")
	require.NoError(t, err)
	return userID
}

func insertProduct(t *testing.T, db *sql.DB, price string) string {
	t.Helper()
	productID := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO products (id, name, price, stock)
		VALUES ($1, 'widget', $2, 10)`, productID, price)
	require.NoError(t, err)
	return productID
}

func TestAddToCartMergesDuplicateLines(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	userID := insertUser(t, db)
	productID := insertProduct(t, db, "19.99")

	_, err = conf.AddToCartDB(ctx, userID, productID, 1)
	require.NoError(t, err)
	item, err := conf.AddToCartDB(ctx, userID, productID, 1)
	require.NoError(t, err)
	require.Equal(t, 2, item.Quantity)

	cartResponse, err := conf.GetActiveCartItems(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cartResponse.Items, 1)
	require.Equal(t, 2, cartResponse.Items[0].Quantity)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	userID := insertUser(t, db)
	_, err = conf.AddToCartDB(context.Background(), userID, uuid.NewString(), 1)
	require.True(t, errors.Is(err, ErrProductNotFound))
}

func TestUpdateCartItemZeroQuantityRemovesLine(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	userID := insertUser(t, db)
	productID := insertProduct(t, db, "5.00")

	_, err = conf.AddToCartDB(ctx, userID, productID, 3)
	require.NoError(t, err)

	item, err := conf.UpdateCartItemDB(ctx, userID, productID, 0)
	require.NoError(t, err)
	require.Equal(t, 0, item.Quantity)

	cartResponse, err := conf.GetActiveCartItems(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, cartResponse.Items)
}

func TestUpdateCartItemSetsAbsoluteQuantity(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	ctx := context.Background()
	userID := insertUser(t, db)
	productID := insertProduct(t, db, "5.00")

	_, err = conf.AddToCartDB(ctx, userID, productID, 3)
	require.NoError(t, err)

	item, err := conf.UpdateCartItemDB(ctx, userID, productID, 7)
	require.NoError(t, err)
	require.Equal(t, 7, item.Quantity)
}

func TestRemoveMissingItemIsNotFound(t *testing.T) {
	db := setupDB(t)
	conf, err := NewConf(db)
	require.NoError(t, err)

	userID := insertUser(t, db)
	err = conf.RemoveFromCartDB(context.Background(), userID, uuid.NewString())
	require.True(t, errors.Is(err, ErrItemNotFound))
}
