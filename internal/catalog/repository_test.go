package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"shopsense-voice/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productColumns = []string{"id", "name", "price", "stock", "unit"}

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db, time.Second), mock
}

// ==========================
// ListProducts
// ==========================

func TestRepository_ListProducts(t *testing.T) {
	tests := []struct {
		name      string
		mockQuery func(mock sqlmock.Sqlmock)
		want      []models.Product
		wantErr   string
	}{
		{
			name: "returns live products newest first",
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(productColumns).
					AddRow(9, "Tata Salt", "28.00", 40, "pcs").
					AddRow(4, "Basmati Rice", 92.5, 12, nil)
				mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND is_deleted = FALSE")).
					WithArgs("7").
					WillReturnRows(rows)
			},
			want: []models.Product{
				{ID: 9, Name: "Tata Salt", Price: 28, Stock: 40, Unit: "pcs"},
				{ID: 4, Name: "Basmati Rice", Price: 92.5, Stock: 12},
			},
		},
		{
			name: "empty catalog is an empty slice",
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name").
					WithArgs("7").
					WillReturnRows(sqlmock.NewRows(productColumns))
			},
			want: []models.Product{},
		},
		{
			name: "query failure",
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name").
					WithArgs("7").
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: "list products for user 7",
		},
		{
			name: "scan failure",
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(productColumns).AddRow("x", "Sugar", 40, 1, "kg")
				mock.ExpectQuery("SELECT id, name").WithArgs("7").WillReturnRows(rows)
			},
			wantErr: "scan product",
		},
		{
			name: "row iteration failure",
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(productColumns).
					AddRow(1, "Sugar", 40, 1, "kg").
					RowError(0, errors.New("network"))
				mock.ExpectQuery("SELECT id, name").WithArgs("7").WillReturnRows(rows)
			},
			wantErr: "iterate products",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.mockQuery(mock)

			got, err := repo.ListProducts(context.Background(), "7")

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_ListProducts_RequiresUser(t *testing.T) {
	repo, mock := newMockRepository(t)

	_, err := repo.ListProducts(context.Background(), "")

	assert.ErrorIs(t, err, ErrMissingUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListProducts_ReadsFreshEveryCall(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT id, name").WithArgs("7").
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(1, "Sugar", 40, 1, "kg"))
	mock.ExpectQuery("SELECT id, name").WithArgs("7").
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(2, "Milk", 30, 5, "l").
			AddRow(1, "Sugar", 40, 1, "kg"))

	first, err := repo.ListProducts(context.Background(), "7")
	require.NoError(t, err)
	second, err := repo.ListProducts(context.Background(), "7")
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
	assert.Equal(t, "Milk", second[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceFunc(t *testing.T) {
	src := SourceFunc(func(_ context.Context, userID string) ([]models.Product, error) {
		return []models.Product{{ID: 1, Name: userID}}, nil
	})

	got, err := src.ListProducts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got[0].Name)
}
