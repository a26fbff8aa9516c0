package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fbellini/daybook-server/internal/apierrors"
	"github.com/fbellini/daybook-server/internal/model"
	"github.com/fbellini/daybook-server/internal/testutil"
)

const (
	testMasterEmail = "boss@example.com"
	testEmailDomain = "example.com"
)

func newAccountService(accounts *MockAccountStore, tokens *MockRefreshTokenStore) *Account {
	return NewAccount(accounts, tokens, &MockTokenManager{}, testMasterEmail, testEmailDomain, testutil.MakeNoopLogger())
}

func TestAccount_IsMaster(t *testing.T) {
	svc := newAccountService(&MockAccountStore{}, &MockRefreshTokenStore{})

	assert.True(t, svc.IsMaster(model.Account{Email: testMasterEmail}))
	assert.False(t, svc.IsMaster(model.Account{Email: "alice@example.com"}))
	assert.False(t, svc.IsMaster(model.Account{}))
}

func TestAccount_Create(t *testing.T) {
	tests := []struct {
		name       string
		handle     string
		secret     string
		mockSetup  func(*MockAccountStore)
		wantEmail  string
		wantStatus int
		wantErr    bool
	}{
		{
			name:   "derives the contact address from the handle",
			handle: "Mario Rossi",
			secret: "secret",
			mockSetup: func(accounts *MockAccountStore) {
				accounts.On("GetByHandle", mock.Anything, "Mario Rossi").Return(model.Account{}, model.ErrNotFound)
				accounts.On("Create", mock.Anything, mock.MatchedBy(func(a model.Account) bool {
					return a.Handle == "Mario Rossi" &&
						a.Email == "mariorossi@example.com" &&
						a.Status == model.AccountStatusActive &&
						bcrypt.CompareHashAndPassword(a.PasswordHash, []byte("secret")) == nil
				})).Return(model.Account{
					ID:     uuid.New(),
					Handle: "Mario Rossi",
					Email:  "mariorossi@example.com",
					Status: model.AccountStatusActive,
				}, nil)
			},
			wantEmail: "mariorossi@example.com",
		},
		{
			name:   "taken handle",
			handle: "alice",
			secret: "secret",
			mockSetup: func(accounts *MockAccountStore) {
				accounts.On("GetByHandle", mock.Anything, "alice").Return(model.Account{ID: uuid.New(), Handle: "alice"}, nil)
			},
			wantStatus: 409,
			wantErr:    true,
		},
		{
			name:   "lost create race also reports the handle as taken",
			handle: "alice",
			secret: "secret",
			mockSetup: func(accounts *MockAccountStore) {
				accounts.On("GetByHandle", mock.Anything, "alice").Return(model.Account{}, model.ErrNotFound)
				accounts.On("Create", mock.Anything, mock.Anything).Return(model.Account{}, model.ErrAlreadyExists)
			},
			wantStatus: 409,
			wantErr:    true,
		},
		{
			name:       "blank handle",
			handle:     "   ",
			secret:     "secret",
			mockSetup:  func(accounts *MockAccountStore) {},
			wantStatus: 400,
			wantErr:    true,
		},
		{
			name:       "blank secret",
			handle:     "alice",
			secret:     " ",
			mockSetup:  func(accounts *MockAccountStore) {},
			wantStatus: 400,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &MockAccountStore{}
			tt.mockSetup(accounts)

			svc := newAccountService(accounts, &MockRefreshTokenStore{})
			created, err := svc.Create(context.Background(), tt.handle, tt.secret)

			if tt.wantErr {
				require.Error(t, err)
				var apiErr *apierrors.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.wantStatus, apiErr.Status)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantEmail, created.Email)
			}

			accounts.AssertExpectations(t)
		})
	}
}

func TestAccount_SetStatus(t *testing.T) {
	accountID := uuid.New()

	t.Run("blocking revokes live sessions", func(t *testing.T) {
		accounts := &MockAccountStore{}
		tokens := &MockRefreshTokenStore{}

		accounts.On("GetByID", mock.Anything, accountID).Return(model.Account{
			ID: accountID, Handle: "alice", Email: "alice@example.com", Status: model.AccountStatusActive,
		}, nil)
		accounts.On("UpdateStatus", mock.Anything, accountID, model.AccountStatusBlocked).Return(nil)
		tokens.On("RevokeAllByAccount", mock.Anything, accountID).Return(nil)

		svc := newAccountService(accounts, tokens)
		updated, err := svc.SetStatus(context.Background(), accountID, model.AccountStatusBlocked)
		require.NoError(t, err)
		assert.Equal(t, model.AccountStatusBlocked, updated.Status)

		tokens.AssertExpectations(t)
	})

	t.Run("unblocking does not touch sessions", func(t *testing.T) {
		accounts := &MockAccountStore{}
		tokens := &MockRefreshTokenStore{}

		accounts.On("GetByID", mock.Anything, accountID).Return(model.Account{
			ID: accountID, Email: "alice@example.com", Status: model.AccountStatusBlocked,
		}, nil)
		accounts.On("UpdateStatus", mock.Anything, accountID, model.AccountStatusActive).Return(nil)

		svc := newAccountService(accounts, tokens)
		updated, err := svc.SetStatus(context.Background(), accountID, model.AccountStatusActive)
		require.NoError(t, err)
		assert.Equal(t, model.AccountStatusActive, updated.Status)

		tokens.AssertNotCalled(t, "RevokeAllByAccount", mock.Anything, mock.Anything)
	})

	t.Run("master account cannot be blocked", func(t *testing.T) {
		accounts := &MockAccountStore{}
		accounts.On("GetByID", mock.Anything, accountID).Return(model.Account{
			ID: accountID, Email: testMasterEmail, Status: model.AccountStatusActive,
		}, nil)

		svc := newAccountService(accounts, &MockRefreshTokenStore{})
		_, err := svc.SetStatus(context.Background(), accountID, model.AccountStatusBlocked)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 403, apiErr.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc := newAccountService(&MockAccountStore{}, &MockRefreshTokenStore{})
		_, err := svc.SetStatus(context.Background(), accountID, "suspended")

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.Status)
	})

	t.Run("missing account", func(t *testing.T) {
		accounts := &MockAccountStore{}
		accounts.On("GetByID", mock.Anything, accountID).Return(model.Account{}, model.ErrNotFound)

		svc := newAccountService(accounts, &MockRefreshTokenStore{})
		_, err := svc.SetStatus(context.Background(), accountID, model.AccountStatusBlocked)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 404, apiErr.Status)
	})
}

func TestAccount_Delete(t *testing.T) {
	accountID := uuid.New()

	t.Run("deletes a regular account", func(t *testing.T) {
		accounts := &MockAccountStore{}
		accounts.On("GetByID", mock.Anything, accountID).Return(model.Account{
			ID: accountID, Email: "alice@example.com",
		}, nil)
		accounts.On("Delete", mock.Anything, accountID).Return(nil)

		svc := newAccountService(accounts, &MockRefreshTokenStore{})
		require.NoError(t, svc.Delete(context.Background(), accountID))
		accounts.AssertExpectations(t)
	})

	t.Run("master account cannot be deleted", func(t *testing.T) {
		accounts := &MockAccountStore{}
		accounts.On("GetByID", mock.Anything, accountID).Return(model.Account{
			ID: accountID, Email: testMasterEmail,
		}, nil)

		svc := newAccountService(accounts, &MockRefreshTokenStore{})
		err := svc.Delete(context.Background(), accountID)

		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 403, apiErr.Status)
		accounts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestAccount_EnsureMaster(t *testing.T) {
	t.Run("creates the master account when missing", func(t *testing.T) {
		accounts := &MockAccountStore{}
		accounts.On("GetByEmail", mock.Anything, testMasterEmail).Return(model.Account{}, model.ErrNotFound)
		accounts.On("Create", mock.Anything, mock.MatchedBy(func(a model.Account) bool {
			return a.Email == testMasterEmail && a.Handle == "boss" && a.Status == model.AccountStatusActive
		})).Return(model.Account{}, nil)

		svc := newAccountService(accounts, &MockRefreshTokenStore{})
		require.NoError(t, svc.EnsureMaster(context.Background(), "boss", "master-secret"))
		accounts.AssertExpectations(t)
	})

	t.Run("no-op when the master exists", func(t *testing.T) {
		accounts := &MockAccountStore{}
		accounts.On("GetByEmail", mock.Anything, testMasterEmail).Return(model.Account{ID: uuid.New()}, nil)

		svc := newAccountService(accounts, &MockRefreshTokenStore{})
		require.NoError(t, svc.EnsureMaster(context.Background(), "boss", "master-secret"))
		accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing master password is an error", func(t *testing.T) {
		accounts := &MockAccountStore{}
		accounts.On("GetByEmail", mock.Anything, testMasterEmail).Return(model.Account{}, model.ErrNotFound)

		svc := newAccountService(accounts, &MockRefreshTokenStore{})
		require.Error(t, svc.EnsureMaster(context.Background(), "boss", ""))
	})

	t.Run("concurrent create by another replica is fine", func(t *testing.T) {
		accounts := &MockAccountStore{}
		accounts.On("GetByEmail", mock.Anything, testMasterEmail).Return(model.Account{}, model.ErrNotFound)
		accounts.On("Create", mock.Anything, mock.Anything).Return(model.Account{}, model.ErrAlreadyExists)

		svc := newAccountService(accounts, &MockRefreshTokenStore{})
		require.NoError(t, svc.EnsureMaster(context.Background(), "boss", "master-secret"))
	})
}
