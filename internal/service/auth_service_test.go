package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"reviewhub/internal/config"
	"reviewhub/internal/models"
	"reviewhub/internal/repository"
	"reviewhub/internal/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func newAuthService(users UserStore) *AuthService {
	svc := NewAuthService(users, config.SecurityConfig{
		JWTSecret: testSecret,
		TokenTTL:  24 * time.Hour,
	}, zerolog.Nop())
	svc.hashPassword = func(password string) ([]byte, error) {
		return security.HashPasswordWithCost(password, bcrypt.MinCost)
	}
	svc.dummyHash = func() []byte {
		hash, _ := bcrypt.GenerateFromPassword([]byte("nobody"), bcrypt.MinCost)
		return hash
	}
	return svc
}

func storedUser(t *testing.T, password string) models.User {
	t.Helper()
	hash, err := security.HashPasswordWithCost(password, bcrypt.MinCost)
	require.NoError(t, err)
	return models.User{
		ID:           "user-ann",
		FirstName:    "Ann",
		LastName:     "Lee",
		Email:        "ann@x.com",
		PasswordHash: hash,
	}
}

func annRegistration() RegisterInput {
	return RegisterInput{
		FirstName:   "Ann",
		LastName:    "Lee",
		Email:       " Ann@X.com ",
		Password:    "secret",
		PhoneNumber: "555-0100",
	}
}

func TestRegister_Success(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)

	users.On("FindByEmail", mock.Anything, "ann@x.com").Return(models.User{}, repository.ErrUserNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		ok, _ := security.VerifyPassword("secret", u.PasswordHash)
		return u.ID != "" && u.Email == "ann@x.com" && u.FirstName == "Ann" &&
			u.PhoneNumber != nil && *u.PhoneNumber == "555-0100" && ok
	})).Return(nil)

	result, err := svc.Register(context.Background(), annRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "ann@x.com", result.User.Email)

	claims, err := security.ParseAccessToken(result.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	users.AssertExpectations(t)
}

func TestRegister_OptionalPhone(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)

	users.On("FindByEmail", mock.Anything, "ann@x.com").Return(models.User{}, repository.ErrUserNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.PhoneNumber == nil
	})).Return(nil)

	input := annRegistration()
	input.PhoneNumber = "  "
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)

	users.On("FindByEmail", mock.Anything, "ann@x.com").Return(storedUser(t, "secret"), nil)

	_, err := svc.Register(context.Background(), annRegistration())
	assert.ErrorIs(t, err, ErrEmailTaken)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmailRace(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)

	users.On("FindByEmail", mock.Anything, "ann@x.com").Return(models.User{}, repository.ErrUserNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrEmailExists)

	_, err := svc.Register(context.Background(), annRegistration())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	cases := map[string]func(*RegisterInput){
		"missing first name": func(in *RegisterInput) { in.FirstName = " " },
		"missing last name":  func(in *RegisterInput) { in.LastName = "" },
		"missing email":      func(in *RegisterInput) { in.Email = "" },
		"invalid email":      func(in *RegisterInput) { in.Email = "not-an-email" },
		"display name email": func(in *RegisterInput) { in.Email = "Ann <ann@x.com>" },
		"short password":     func(in *RegisterInput) { in.Password = "abc" },
		"long password":      func(in *RegisterInput) { in.Password = strings.Repeat("p", 80) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			users := new(mockUserStore)
			svc := newAuthService(users)

			input := annRegistration()
			mutate(&input)

			_, err := svc.Register(context.Background(), input)
			assert.ErrorIs(t, err, ErrInvalidInput)
			users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_ValidationMessages(t *testing.T) {
	svc := newAuthService(new(mockUserStore))

	input := annRegistration()
	input.FirstName = ""
	_, err := svc.Register(context.Background(), input)
	assert.EqualError(t, err, "invalid input: first name is required")

	input = annRegistration()
	input.Password = "abc"
	_, err = svc.Register(context.Background(), input)
	assert.EqualError(t, err, "invalid input: password must be at least 6 characters")
}

// 40 two-byte runes pass the rune-counted max but exceed bcrypt's byte limit.
func TestRegister_MultibytePasswordOverBcryptLimit(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)
	users.On("FindByEmail", mock.Anything, "ann@x.com").Return(models.User{}, repository.ErrUserNotFound)

	input := annRegistration()
	input.Password = strings.Repeat("é", 40)

	_, err := svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrInvalidInput)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_StoreFailure(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)
	boom := errors.New("db down")

	users.On("FindByEmail", mock.Anything, "ann@x.com").Return(models.User{}, boom)

	_, err := svc.Register(context.Background(), annRegistration())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)
	ann := storedUser(t, "secret")

	users.On("FindByEmail", mock.Anything, "ann@x.com").Return(ann, nil)

	result, err := svc.Login(context.Background(), LoginInput{Email: "ANN@x.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, ann.ID, result.User.ID)

	claims, err := security.ParseAccessToken(result.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, ann.ID, claims.UserID)
}

func TestLogin_WrongPasswordAndUnknownEmailAreIndistinguishable(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)

	users.On("FindByEmail", mock.Anything, "ann@x.com").Return(storedUser(t, "secret"), nil)
	users.On("FindByEmail", mock.Anything, "ghost@x.com").Return(models.User{}, repository.ErrUserNotFound)

	_, wrongPassword := svc.Login(context.Background(), LoginInput{Email: "ann@x.com", Password: "nope"})
	_, unknownEmail := svc.Login(context.Background(), LoginInput{Email: "ghost@x.com", Password: "secret"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogin_UnknownEmailStillComparesHash(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)
	calls := 0
	svc.dummyHash = func() []byte {
		calls++
		hash, _ := bcrypt.GenerateFromPassword([]byte("nobody"), bcrypt.MinCost)
		return hash
	}

	users.On("FindByEmail", mock.Anything, "ghost@x.com").Return(models.User{}, repository.ErrUserNotFound)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@x.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, calls)
}

func TestLogin_CorruptHash(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)

	users.On("FindByEmail", mock.Anything, "ann@x.com").Return(models.User{ID: "u", PasswordHash: []byte("garbage")}, nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ann@x.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_StoreFailure(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)

	users.On("FindByEmail", mock.Anything, "ann@x.com").Return(models.User{}, errors.New("db down"))

	_, err := svc.Login(context.Background(), LoginInput{Email: "ann@x.com", Password: "secret"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	users := new(mockUserStore)
	svc := newAuthService(users)
	ann := storedUser(t, "secret")

	users.On("GetByID", mock.Anything, ann.ID).Return(ann, nil)
	users.On("GetByID", mock.Anything, "gone").Return(models.User{}, repository.ErrUserNotFound)

	got, err := svc.Profile(context.Background(), ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)

	_, err = svc.Profile(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
