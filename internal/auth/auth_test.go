package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)

	token, err := m.GenerateAccessToken("user-1", "a@b.c", RoleStadiumOwner)
	require.NoError(t, err)

	claims, err := m.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, RoleStadiumOwner, claims.Role)

	other := NewJWTManager("other", time.Minute)
	_, err = other.ParseAndValidate(token)
	assert.Error(t, err, "token signed with another secret must fail")

	expired := NewJWTManager("secret", -time.Minute)
	old, err := expired.GenerateAccessToken("user-1", "a@b.c", RolePlayer)
	require.NoError(t, err)
	_, err = m.ParseAndValidate(old)
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptPasswordHasherWithCost(4)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.Error(t, h.Compare(hash, "wrong"))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewJWTManager("secret", time.Minute)

	r := gin.New()
	r.GET("/me", AuthRequired(m), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "role": GetUserRole(c), "admin": IsAdmin(c)})
	})
	r.GET("/admin", AuthRequired(m), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	playerToken, _ := m.GenerateAccessToken("p1", "p@x.y", RolePlayer)
	adminToken, _ := m.GenerateAccessToken("a1", "a@x.y", RoleAdmin)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "missing header", path: "/me", want: http.StatusUnauthorized},
		{name: "bad scheme", path: "/me", header: "Token abc", want: http.StatusUnauthorized},
		{name: "bad token", path: "/me", header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "valid", path: "/me", header: "Bearer " + playerToken, want: http.StatusOK},
		{name: "role denied", path: "/admin", header: "Bearer " + playerToken, want: http.StatusForbidden},
		{name: "role allowed", path: "/admin", header: "Bearer " + adminToken, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
