package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/garage-hub/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       "4f0c6e1a-2f9e-4b6a-9a53-0d2f8b7c1e11",
		Username: "manager",
		Role:     models.RoleManager,
	}
}

func TestNewService_Defaults(t *testing.T) {
	service := NewService("", 0)
	assert.Equal(t, []byte(DefaultSecret), service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)

	custom := NewService("s3cret", time.Hour)
	assert.Equal(t, []byte("s3cret"), custom.jwtSecret)
	assert.Equal(t, time.Hour, custom.tokenExp)
}

func TestService_HashAndCheckPassword(t *testing.T) {
	service := NewService("", 0)

	password := "testpassword123"
	hash, err := service.HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hash)

	assert.True(t, service.CheckPassword(password, hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_ValidateToken(t *testing.T) {
	service := NewService("test-secret", time.Hour)
	user := testUser()

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)

	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)

	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)

	other := NewService("another-secret", time.Hour)
	_, err = other.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err, "signature from another secret")
}

func TestService_ValidateToken_Expired(t *testing.T) {
	service := NewService("test-secret", time.Minute)
	issued := time.Date(2024, 2, 21, 8, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return issued }

	token, err := service.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Minute).Unix(), claims.Exp)

	service.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = service.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestService_ValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	service := NewService("test-secret", time.Hour)
	claims := tokenClaims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateToken(unsigned)
	assert.Equal(t, ErrInvalidToken, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = service.ValidateToken(hs512)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := NewService("", 0)

	extracted, err := service.ExtractTokenFromHeader("Bearer valid-token")
	require.NoError(t, err)
	assert.Equal(t, "valid-token", extracted)

	for _, header := range []string{"", "InvalidFormat", "Bearer ", "Basic abc"} {
		_, err := service.ExtractTokenFromHeader(header)
		assert.Equal(t, ErrInvalidToken, err, "header %q", header)
	}
}

func TestService_ValidatePassword(t *testing.T) {
	service := NewService("", 0)

	assert.NoError(t, service.ValidatePassword("validpassword123"))

	err := service.ValidatePassword("short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestService_ValidateEmail(t *testing.T) {
	service := NewService("", 0)

	assert.NoError(t, service.ValidateEmail("john@email.com"))

	for _, email := range []string{"testexample.com", "test@", "test", "Dave <dave@garage.co.nz>", "dave@localhost"} {
		err := service.ValidateEmail(email)
		require.Error(t, err, email)
		assert.Contains(t, err.Error(), "invalid email format")
	}
}

func TestService_ValidateUsername(t *testing.T) {
	service := NewService("", 0)

	assert.NoError(t, service.ValidateUsername("testuser"))

	err := service.ValidateUsername("ab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 3 characters")

	err = service.ValidateUsername(strings.Repeat("a", 51))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "less than 50 characters")
}

func TestService_GenerateRefreshToken(t *testing.T) {
	service := NewService("", 0)

	token, err := service.GenerateRefreshToken()
	require.NoError(t, err)
	assert.Len(t, token, 44)

	again, _ := service.GenerateRefreshToken()
	assert.NotEqual(t, token, again)
}
