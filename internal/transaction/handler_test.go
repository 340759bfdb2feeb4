package transaction

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"timebank/internal/api"
	"timebank/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandler_ListMine(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := new(MockRepository)
	repo.On("ListByUser", mock.Anything, int64(8), api.PageRequest{Page: 1, Size: 5}).
		Return([]Transaction{{ID: 3, UserID: 8, Type: TypeEarn}}, int64(6), nil)

	router := gin.New()
	router.GET("/api/transactions/my", func(c *gin.Context) {
		auth.WithIdentity(c, auth.Identity{UserID: 8, Role: auth.RoleStudent})
		c.Next()
	}, NewHandler(NewService(repo)).ListMine)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/transactions/my?page=1&size=5", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body api.Page[Transaction]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(6), body.TotalElements)
	assert.Equal(t, 2, body.TotalPages)
	require.Len(t, body.Content, 1)
	assert.Equal(t, TypeEarn, body.Content[0].Type)
}

func TestHandler_ListMine_BadPage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/api/transactions/my", func(c *gin.Context) {
		auth.WithIdentity(c, auth.Identity{UserID: 8, Role: auth.RoleStudent})
		c.Next()
	}, NewHandler(NewService(new(MockRepository))).ListMine)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/transactions/my?page=-1", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
