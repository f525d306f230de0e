package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"retailbilling-backend/internal/config"
	"retailbilling-backend/internal/domain"
	"retailbilling-backend/internal/repository"
)

type mockAccountStore struct {
	mock.Mock
}

func (m *mockAccountStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockAccountStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockAccountStore) TouchLastLogin(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

const testSecret = "test-secret"

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newAuthService(store *mockAccountStore, now time.Time) AuthService {
	return AuthService{
		Config: config.Config{JWTSecret: testSecret, AccessTokenTTL: time.Hour},
		Users:  store,
		Now:    func() time.Time { return now },
	}
}

func TestLoginIssuesAccessToken(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	store := new(mockAccountStore)
	user := &domain.User{ID: 7, Username: "meera", PasswordHash: hashed(t, "s3cret"), Role: domain.RoleCashier, Status: domain.UserActive}
	store.On("GetByUsername", mock.Anything, "meera").Return(user, nil)
	store.On("TouchLastLogin", mock.Anything, int64(7)).Return(nil)

	res, err := newAuthService(store, now).Login(context.Background(), LoginInput{Username: " meera ", Password: "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, now.Add(time.Hour), res.ExpiresAt)
	require.NotNil(t, res.User.LastLogin)

	parsed, err := jwt.Parse(res.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "7", claims["sub"])
	assert.Equal(t, "meera", claims["username"])
	assert.Equal(t, "CASHIER", claims["role"])
	assert.Equal(t, "access", claims["token_type"])
	assert.NotEmpty(t, claims["jti"])
	store.AssertExpectations(t)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := new(mockAccountStore)
	user := &domain.User{ID: 7, Username: "meera", PasswordHash: hashed(t, "s3cret"), Status: domain.UserActive}
	store.On("GetByUsername", mock.Anything, "meera").Return(user, nil)
	store.On("GetByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)
	svc := newAuthService(store, time.Now())

	_, err := svc.Login(context.Background(), LoginInput{Username: "meera", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Username: "ghost", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Username: "", Password: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	store.AssertNotCalled(t, "TouchLastLogin", mock.Anything, mock.Anything)
}

func TestLoginRejectsInactiveAccounts(t *testing.T) {
	for _, status := range []domain.UserStatus{domain.UserInactive, domain.UserLocked} {
		t.Run(string(status), func(t *testing.T) {
			store := new(mockAccountStore)
			user := &domain.User{ID: 3, Username: "ravi", PasswordHash: hashed(t, "pw"), Status: status}
			store.On("GetByUsername", mock.Anything, "ravi").Return(user, nil)

			_, err := newAuthService(store, time.Now()).Login(context.Background(), LoginInput{Username: "ravi", Password: "pw"})
			assert.ErrorIs(t, err, ErrAccountDisabled)
		})
	}
}

func TestLoginSurvivesLastLoginFailure(t *testing.T) {
	store := new(mockAccountStore)
	user := &domain.User{ID: 7, Username: "meera", PasswordHash: hashed(t, "pw"), Status: domain.UserActive}
	store.On("GetByUsername", mock.Anything, "meera").Return(user, nil)
	store.On("TouchLastLogin", mock.Anything, int64(7)).Return(errors.New("timeout"))

	res, err := newAuthService(store, time.Now()).Login(context.Background(), LoginInput{Username: "meera", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Nil(t, res.User.LastLogin)
}

func TestMeResolvesCallerByUsername(t *testing.T) {
	store := new(mockAccountStore)
	store.On("GetByUsername", mock.Anything, "meera").Return(&domain.User{ID: 7, Username: "meera"}, nil)
	store.On("GetByUsername", mock.Anything, "gone").Return(nil, repository.ErrNotFound)
	svc := newAuthService(store, time.Now())

	u, err := svc.Me(context.Background(), domain.CurrentUser{ID: 7, Username: "meera"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)

	_, err = svc.Me(context.Background(), domain.CurrentUser{ID: 8, Username: "gone"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoginUnknownUserStillComparesPassword(t *testing.T) {
	store := new(mockAccountStore)
	store.On("GetByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

	_, err := newAuthService(store, time.Now()).Login(context.Background(), LoginInput{Username: "ghost", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	cost, err := bcrypt.Cost(dummyHash())
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.Same(t, &dummyHash()[0], &dummyHash()[0])
	store.AssertExpectations(t)
}
