package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestRecipeRepository_AddFavoriteDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "favorites"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_favorite_user_recipe"})
	mock.ExpectRollback()

	err := repo.AddFavorite(context.Background(), &entities.Favorite{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		RecipeID:  uuid.New(),
		CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_AddFavorite(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)
	favorite := &entities.Favorite{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		RecipeID:  uuid.New(),
		CreatedAt: time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "favorites"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(favorite.ID.String()))
	mock.ExpectCommit()

	require.NoError(t, repo.AddFavorite(context.Background(), favorite))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_RemoveFavorite(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "favorites" WHERE user_id = \$1 AND recipe_id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := repo.RemoveFavorite(context.Background(), uuid.NewString(), uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_GetFavoritedRecipeIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)
	first, second := uuid.NewString(), uuid.NewString()

	mock.ExpectQuery(`SELECT "recipe_id" FROM "favorites"`).
		WillReturnRows(sqlmock.NewRows([]string{"recipe_id"}).AddRow(second))

	marked, err := repo.GetFavoritedRecipeIDs(context.Background(), uuid.NewString(), []string{first, second})
	require.NoError(t, err)
	assert.False(t, marked[first])
	assert.True(t, marked[second])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_GetFavoritedRecipeIDsAnonymous(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)

	marked, err := repo.GetFavoritedRecipeIDs(context.Background(), "", []string{uuid.NewString()})
	require.NoError(t, err)
	assert.Empty(t, marked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_GetRecipesCountsWithFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "recipes" WHERE recipes.name ILIKE \$1`).
		WithArgs(`%pan\%cake%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "recipes" WHERE recipes.name ILIKE \$1 ORDER BY recipes.pub_date desc`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	recipes, count, err := repo.GetRecipes(context.Background(), domain.RecipeFilter{Name: "pan%cake"})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, recipes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
