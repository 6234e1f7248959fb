package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_GetProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "price", "stock", "active", "created_at", "updated_at"}).
			AddRow(id, "Widget", 19.99, 10, true, time.Now(), time.Now())

		mock.ExpectQuery(`SELECT id, name, price, stock, active, created_at, updated_at FROM products WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(rows)

		p, err := repo.GetProduct(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, "Widget", p.Name)
		assert.Equal(t, 10, p.Stock)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM products`).
			WithArgs(id).
			WillReturnError(errors.New("sql: no rows in result set"))

		_, err := repo.GetProduct(ctx, id)
		assert.Error(t, err)
	})
}

func TestReserveStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	id := uuid.New()

	t.Run("Reserved", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE products SET stock = stock - \$1, updated_at = NOW\(\) WHERE id = \$2 AND active = true AND stock >= \$1`).
			WithArgs(3, id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := db.Begin()
		require.NoError(t, err)

		ok, err := ReserveStock(ctx, tx, id, 3)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, tx.Commit())
	})

	t.Run("Insufficient", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE products SET stock = stock - \$1`).
			WithArgs(99, id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)

		ok, err := ReserveStock(ctx, tx, id, 99)
		assert.NoError(t, err)
		assert.False(t, ok, "Conditional decrement must not touch short products")
		assert.NoError(t, tx.Rollback())
	})
}

func TestReleaseStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE products SET stock = stock \+ \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(3, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	assert.NoError(t, ReleaseStock(ctx, tx, id, 3))
	assert.NoError(t, tx.Commit())
}

func TestRepository_SetActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products SET active = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs(false, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetActive(context.Background(), id, false))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE products SET active`).
			WithArgs(false, id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetActive(context.Background(), id, false)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
