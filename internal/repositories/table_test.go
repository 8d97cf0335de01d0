package repositories

import (
	"encoding/json"
	"testing"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSetClause(t *testing.T) {
	writable := filter.Columns{"title": "title", "price": "price", "userId": "user_id", "products": "products"}

	tests := []struct {
		name         string
		patch        map[string]any
		expectedSQL  string
		expectedArgs []any
		expectedKind apperrors.Kind
		expectError  bool
	}{
		{
			name:         "ordered columns",
			patch:        map[string]any{"title": "Book", "price": json.Number("20")},
			expectedSQL:  "price = ?, title = ?",
			expectedArgs: []any{int64(20), "Book"},
		},
		{
			name:         "null value",
			patch:        map[string]any{"userId": nil},
			expectedSQL:  "user_id = ?",
			expectedArgs: []any{nil},
		},
		{
			name:         "list stored as json",
			patch:        map[string]any{"products": []any{map[string]any{"id": json.Number("1")}}},
			expectedSQL:  "products = ?",
			expectedArgs: []any{`[{"id":1}]`},
		},
		{
			name:         "empty patch",
			patch:        map[string]any{},
			expectError:  true,
			expectedKind: apperrors.KindBadRequest,
		},
		{
			name:         "read-only field",
			patch:        map[string]any{"id": 3},
			expectError:  true,
			expectedKind: apperrors.KindBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args, err := buildSetClause(tt.patch, writable)
			if tt.expectError {
				assert.Equal(t, tt.expectedKind, apperrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSQL, clause)
			assert.Equal(t, tt.expectedArgs, args)
		})
	}
}

func TestTable_SelectQuery(t *testing.T) {
	t.Run("nil filter", func(t *testing.T) {
		query, args, err := productsTable.selectQuery(nil)
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, title, image, price, user_id FROM products ORDER BY id ASC", query)
		assert.Empty(t, args)
	})

	t.Run("where order and page", func(t *testing.T) {
		f, err := filter.Parse(`{"where":{"userId":4},"order":"price DESC","limit":2,"skip":4}`)
		require.NoError(t, err)

		query, args, err := productsTable.selectQuery(f)
		require.NoError(t, err)
		assert.Equal(t, "SELECT id, title, image, price, user_id FROM products WHERE user_id = ? ORDER BY price DESC LIMIT 2 OFFSET 4", query)
		assert.Equal(t, []any{int64(4)}, args)
	})

	t.Run("password is not filterable", func(t *testing.T) {
		f, err := filter.Parse(`{"where":{"password":"x"}}`)
		require.NoError(t, err)

		_, _, err = usersTable.selectQuery(f)
		assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
	})
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []int{3, 1}, uniqueIDs([]int{3, 1, 3, 1}))
	assert.Empty(t, uniqueIDs(nil))
}
