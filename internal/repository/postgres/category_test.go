package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nimbusmart/catalog/pkg/errors"
)

var categoryCols = []string{"id", "name", "created_at", "updated_at"}

func TestCategoryRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM categories WHERE id").
		WithArgs("cat-1").
		WillReturnRows(
			pgxmock.NewRows(categoryCols).AddRow("cat-1", "Electronics", now, now),
		)

	category, err := repo.GetByID(context.Background(), "cat-1")
	require.NoError(t, err)
	assert.Equal(t, "cat-1", category.ID)
	assert.Equal(t, "Electronics", category.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM categories WHERE id").
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	category, err := repo.GetByID(context.Background(), "missing-id")
	assert.Nil(t, category)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_ListAll(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM categories ORDER BY name").
		WillReturnRows(
			pgxmock.NewRows(categoryCols).
				AddRow("cat-2", "Books", now, now).
				AddRow("cat-1", "Electronics", now, now),
		)

	categories, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Books", categories[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
