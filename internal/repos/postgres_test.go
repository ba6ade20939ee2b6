package repos_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isuumo/internal/domain"
	"isuumo/internal/repos"
	"isuumo/internal/search"
)

func mockPostgres(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

func TestPostgresBuyLocksRow(t *testing.T) {
	db, mock := mockPostgres(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT stock FROM chair WHERE id = $1 AND stock > 0 FOR UPDATE`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE chair SET stock = stock - 1 WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repos.NewChairRepo(db).Buy(context.Background(), 7))
}

func TestPostgresBuySoldOutRollsBack(t *testing.T) {
	db, mock := mockPostgres(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT stock FROM chair`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}))
	mock.ExpectRollback()

	err := repos.NewChairRepo(db).Buy(context.Background(), 3)
	assert.ErrorIs(t, err, repos.ErrNotFound)
}

func TestPostgresBuyUpdateFailureRollsBack(t *testing.T) {
	db, mock := mockPostgres(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT stock FROM chair`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(1))
	mock.ExpectExec(`UPDATE chair`).WillReturnError(errors.New("check constraint violated"))
	mock.ExpectRollback()

	err := repos.NewChairRepo(db).Buy(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repos.ErrNotFound)
}

func TestPostgresSearchRebindsPlaceholders(t *testing.T) {
	db, mock := mockPostgres(t)
	b := search.NewBuilder().Where("rent >= ?", int64(50000)).Contains("features", "角部屋")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM estate WHERE rent >= $1 AND features LIKE '%' || $2 || '%'`)).
		WithArgs(int64(50000), "角部屋").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE rent >= $1 AND features LIKE '%' || $2 || '%' ORDER BY popularity DESC, id ASC LIMIT $3 OFFSET $4`)).
		WithArgs(int64(50000), "角部屋", 20, 40).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "rent"}).AddRow(3, "新宿タワー", 120000))

	estates, count, err := repos.NewEstateRepo(db).Search(context.Background(), b, search.Page{Page: 2, PerPage: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, estates, 1)
	assert.Equal(t, int64(120000), estates[0].Rent)
}

func TestPostgresPolygonUsesGeometricOperator(t *testing.T) {
	db, mock := mockPostgres(t)
	coords := []domain.Coordinate{
		{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 2}, {Latitude: 2, Longitude: 2},
	}
	mock.ExpectQuery(`FROM estate\s+WHERE latitude <= \$1 AND latitude >= \$2 AND longitude <= \$3 AND longitude >= \$4`).
		WithArgs(2.0, 0.0, 2.0, 0.0, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "latitude", "longitude"}).
			AddRow(1, 0.5, 1.5).
			AddRow(2, 1.5, 0.5))
	contains := regexp.QuoteMeta(`SELECT id FROM estate WHERE id = $1 AND CAST($2 AS polygon) @> CAST($3 AS point)`)
	mock.ExpectQuery(contains).
		WithArgs(int64(1), "((0,0),(0,2),(2,2))", "(0.5,1.5)").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(contains).
		WithArgs(int64(2), "((0,0),(0,2),(2,2))", "(1.5,0.5)").
		WillReturnError(errors.New("invalid input syntax for type polygon"))

	got, candidates, err := repos.NewEstateRepo(db).SearchInPolygon(context.Background(), coords, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, candidates)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}
