package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/allrev/internal/models"
)

func testUser() *models.User {
	return &models.User{
		BaseModel: models.BaseModel{ID: uuid.New()},
		TenantID:  uuid.New(),
		Role:      models.RoleAdmin,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	user := testUser()

	token, err := GenerateToken("secret", user, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.TenantID.String(), claims.TenantID)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", testUser(), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other", token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", testUser(), -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected Pagination
	}{
		{"defaults", "", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"explicit window", "page=3&limit=10", Pagination{Page: 3, Limit: 10, Offset: 20}},
		{"limit clamped", "limit=9999", Pagination{Page: 1, Limit: 100, Offset: 0}},
		{"invalid values fall back", "page=-2&limit=zero", Pagination{Page: 1, Limit: 20, Offset: 0}},
	}

	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		return nil
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.Test(httptest.NewRequest("GET", "/?"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
