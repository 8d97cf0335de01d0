package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupMockDB creates a mock database for repository tests
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *zap.Logger) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	return db, mock, logger
}

func intPtr(i int) *int { return &i }

var userColumns = []string{"id", "email", "password", "role_id"}

func TestNewUserRepository(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	db := &sql.DB{}

	repo := NewUserRepository(db, logger)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		user          *models.User
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedID    int
	}{
		{
			name: "success",
			user: &models.User{Email: "buyer@shop.com", Password: "$2a$10$hash", RoleID: intPtr(models.RoleIDUser)},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (email, password, role_id) VALUES (?, ?, ?)`)).
					WithArgs("buyer@shop.com", "$2a$10$hash", models.RoleIDUser).
					WillReturnResult(sqlmock.NewResult(12, 1))
			},
			expectedID: 12,
		},
		{
			name: "database error",
			user: &models.User{Email: "buyer@shop.com", Password: "hash"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("duplicate entry"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, logger := setupMockDB(t)
			repo := NewUserRepository(db, logger)
			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.user)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, tt.user.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT id, email, password, role_id FROM users WHERE email = ? LIMIT 1`)

	tests := []struct {
		name         string
		setupMock    func(sqlmock.Sqlmock)
		expectedKind apperrors.Kind
		expectError  bool
		expectedRole *int
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("buyer@shop.com").
					WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "buyer@shop.com", "hash", 3))
			},
			expectedRole: intPtr(3),
		},
		{
			name: "found without role",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("buyer@shop.com").
					WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "buyer@shop.com", "hash", nil))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("buyer@shop.com").WillReturnError(sql.ErrNoRows)
			},
			expectError:  true,
			expectedKind: apperrors.KindNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("buyer@shop.com").WillReturnError(errors.New("connection lost"))
			},
			expectError:  true,
			expectedKind: apperrors.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, logger := setupMockDB(t)
			repo := NewUserRepository(db, logger)
			tt.setupMock(mock)

			user, err := repo.FindByEmail(context.Background(), "buyer@shop.com")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, user)
				assert.Equal(t, tt.expectedKind, apperrors.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, "buyer@shop.com", user.Email)
				assert.Equal(t, tt.expectedRole, user.RoleID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db, mock, logger := setupMockDB(t)
	repo := NewUserRepository(db, logger)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT * FROM users WHERE email = ?)`)).
		WithArgs("buyer@shop.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "buyer@shop.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByIDs(t *testing.T) {
	db, mock, logger := setupMockDB(t)
	repo := NewUserRepository(db, logger)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, password, role_id FROM users WHERE id IN (?,?) ORDER BY id ASC`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "a@shop.com", "h1", 3).
			AddRow(2, "b@shop.com", "h2", 2))

	users, err := repo.FindByIDs(context.Background(), []int{1, 2, 1})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Find(t *testing.T) {
	db, mock, logger := setupMockDB(t)
	repo := NewUserRepository(db, logger)

	f, err := filter.Parse(`{"where":{"email":{"like":"%@shop.com"}},"limit":10}`)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, password, role_id FROM users WHERE email LIKE ? ORDER BY id ASC LIMIT 10`)).
		WithArgs("%@shop.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "a@shop.com", "h1", nil))

	users, err := repo.Find(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Nil(t, users[0].RoleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Count(t *testing.T) {
	db, mock, logger := setupMockDB(t)
	repo := NewUserRepository(db, logger)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users WHERE role_id = ?`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.Count(context.Background(), filter.Where{"roleId": 3})
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateByID(t *testing.T) {
	query := regexp.QuoteMeta(`UPDATE users SET email = ? WHERE id = ?`)

	tests := []struct {
		name         string
		setupMock    func(sqlmock.Sqlmock)
		expectError  bool
		expectedKind apperrors.Kind
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).WithArgs("new@shop.com", 1).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).WithArgs("new@shop.com", 1).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectError:  true,
			expectedKind: apperrors.KindNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).WithArgs("new@shop.com", 1).WillReturnError(errors.New("deadlock"))
			},
			expectError:  true,
			expectedKind: apperrors.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, logger := setupMockDB(t)
			repo := NewUserRepository(db, logger)
			tt.setupMock(mock)

			err := repo.UpdateByID(context.Background(), 1, map[string]any{"email": "new@shop.com"})

			if tt.expectError {
				assert.Equal(t, tt.expectedKind, apperrors.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_ReplaceByID(t *testing.T) {
	db, mock, logger := setupMockDB(t)
	repo := NewUserRepository(db, logger)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET email = ?, password = ?, role_id = ? WHERE id = ?`)).
		WithArgs("a@shop.com", "hash", nil, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReplaceByID(context.Background(), 4, &models.User{Email: "a@shop.com", Password: "hash"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteByID(t *testing.T) {
	db, mock, logger := setupMockDB(t)
	repo := NewUserRepository(db, logger)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = ?`)).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteByID(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
