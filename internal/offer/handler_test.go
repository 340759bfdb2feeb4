package offer

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"timebank/internal/api"
	"timebank/internal/auth"
	"timebank/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupRouter(repo *MockRepository, users *MockUsers, callerID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if callerID != 0 {
			auth.WithIdentity(c, auth.Identity{UserID: callerID, Role: auth.RoleStudent})
		}
		c.Next()
	})

	h := NewHandler(NewService(repo, users))
	offers := router.Group("/api/offers")
	offers.POST("", h.Create)
	offers.GET("", h.List)
	offers.GET("/active/list", h.ListActive)
	offers.GET("/my-offers", h.ListMine)
	offers.GET("/owner/:ownerId", h.ListByOwner)
	offers.GET("/:offerId", h.Get)
	offers.PUT("/:offerId", h.Update)
	offers.PUT("/:offerId/activate", h.Activate)
	offers.PUT("/:offerId/deactivate", h.Deactivate)
	return router
}

func TestHandler_Create(t *testing.T) {
	repo, users := new(MockRepository), new(MockUsers)
	users.On("FindByID", mock.Anything, int64(1)).Return(&user.User{ID: 1, FirstName: "O", LastName: "P"}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	body := `{"title":"Tutoring","description":"Maths","hours_rate":"1.50"}`
	req := httptest.NewRequest("POST", "/api/offers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(repo, users, 1).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ACTIVE"`)
}

func TestHandler_Create_TitleWithLineBreak(t *testing.T) {
	repo := new(MockRepository)

	body := `{"title":"Tutoring\r\nBcc: x@evil.test","description":"Maths","hours_rate":"1.50"}`
	req := httptest.NewRequest("POST", "/api/offers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(repo, new(MockUsers), 1).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"tag":"singleline"`)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandler_Create_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/offers", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	setupRouter(new(MockRepository), new(MockUsers), 0).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Get(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, int64(5)).Return(&Offer{ID: 5, Title: "Yoga"}, nil)
	repo.On("GetByID", mock.Anything, int64(6)).Return(nil, ErrOfferNotFound)
	router := setupRouter(repo, new(MockUsers), 0)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/offers/5", http.StatusOK},
		{"/api/offers/6", http.StatusNotFound},
		{"/api/offers/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
		assert.Equal(t, tt.status, w.Code, tt.path)
	}
}

func TestHandler_ListActive(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListActive", mock.Anything, api.PageRequest{Page: 0, Size: api.DefaultPageSize}).Return([]Offer{}, int64(0), nil)

	w := httptest.NewRecorder()
	setupRouter(repo, new(MockUsers), 0).ServeHTTP(w, httptest.NewRequest("GET", "/api/offers/active/list", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"content":[]`)
}

func TestHandler_Deactivate(t *testing.T) {
	t.Run("owner gets no content", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(5)).Return(&Offer{ID: 5, OwnerID: 1, Status: StatusActive, Available: true}, nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		w := httptest.NewRecorder()
		setupRouter(repo, new(MockUsers), 1).ServeHTTP(w, httptest.NewRequest("PUT", "/api/offers/5/deactivate", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(5)).Return(&Offer{ID: 5, OwnerID: 1}, nil)

		w := httptest.NewRecorder()
		setupRouter(repo, new(MockUsers), 2).ServeHTTP(w, httptest.NewRequest("PUT", "/api/offers/5/deactivate", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
