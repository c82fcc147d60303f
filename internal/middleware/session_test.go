package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/codebaseshow/codebaseshow/internal/models"
)

type stubResolver struct {
	users map[string]*models.User
}

func (r *stubResolver) GetAuthenticatedUser(token string) *models.User {
	return r.users[token]
}

func newTestRouter(resolver UserResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionMiddleware(resolver))

	router.GET("/public", func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.Username})
	})
	router.GET("/private", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	router.GET("/admin", AdminRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	return router
}

func TestSessionMiddleware(t *testing.T) {
	member := models.NewUser(2002, "bob", "bob@example.com", "Bob", "", nil)
	admin := models.NewUser(1001, "alice", "alice@example.com", "Alice", "", nil)
	admin.IsAdmin = true

	resolver := &stubResolver{users: map[string]*models.User{
		"member-token": member,
		"admin-token":  admin,
	}}
	router := newTestRouter(resolver)

	request := func(path, token string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("GET", path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Valid token resolves the user", func(t *testing.T) {
		w := request("/public", "member-token")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "bob")
	})

	t.Run("Missing token is anonymous, not an error", func(t *testing.T) {
		w := request("/public", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Unknown token is anonymous", func(t *testing.T) {
		w := request("/private", "garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("AuthRequired admits authenticated users", func(t *testing.T) {
		w := request("/private", "member-token")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("AuthRequired rejects anonymous requests", func(t *testing.T) {
		w := request("/private", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("AdminRequired rejects non-admins", func(t *testing.T) {
		w := request("/admin", "member-token")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("AdminRequired admits admins", func(t *testing.T) {
		w := request("/admin", "admin-token")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
