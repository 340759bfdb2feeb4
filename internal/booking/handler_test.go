package booking

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"timebank/internal/api"
	"timebank/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) booking(args mock.Arguments) (*Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockService) page(args mock.Arguments) (api.Page[Booking], error) {
	return args.Get(0).(api.Page[Booking]), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, caller auth.Identity, req CreateRequest) (*Booking, error) {
	return m.booking(m.Called(ctx, caller, req))
}

func (m *MockService) Confirm(ctx context.Context, caller auth.Identity, bookingID int64) (*Booking, error) {
	return m.booking(m.Called(ctx, caller, bookingID))
}

func (m *MockService) Complete(ctx context.Context, caller auth.Identity, bookingID int64) (*Booking, error) {
	return m.booking(m.Called(ctx, caller, bookingID))
}

func (m *MockService) Cancel(ctx context.Context, caller auth.Identity, bookingID int64, reason string) (*Booking, error) {
	return m.booking(m.Called(ctx, caller, bookingID, reason))
}

func (m *MockService) GetByID(ctx context.Context, bookingID int64) (*Booking, error) {
	return m.booking(m.Called(ctx, bookingID))
}

func (m *MockService) ListMineAsRequester(ctx context.Context, caller auth.Identity, page api.PageRequest) (api.Page[Booking], error) {
	return m.page(m.Called(ctx, caller, page))
}

func (m *MockService) ListMineAsOwner(ctx context.Context, caller auth.Identity, page api.PageRequest) (api.Page[Booking], error) {
	return m.page(m.Called(ctx, caller, page))
}

func (m *MockService) ListByOffer(ctx context.Context, offerID int64, page api.PageRequest) (api.Page[Booking], error) {
	return m.page(m.Called(ctx, offerID, page))
}

func (m *MockService) ListByStatus(ctx context.Context, rawStatus string, page api.PageRequest) (api.Page[Booking], error) {
	return m.page(m.Called(ctx, rawStatus, page))
}

func setupRouter(svc Service, callerID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if callerID != 0 {
			auth.WithIdentity(c, auth.Identity{UserID: callerID, Role: auth.RoleStudent})
		}
		c.Next()
	})

	h := NewHandler(svc)
	bookings := router.Group("/api/bookings")
	bookings.POST("", h.Create)
	bookings.GET("/my/as-requester", h.ListMineAsRequester)
	bookings.GET("/my/as-owner", h.ListMineAsOwner)
	bookings.GET("/offer/:offerId", h.ListByOffer)
	bookings.GET("/status/:status", h.ListByStatus)
	bookings.GET("/:bookingId", h.Get)
	bookings.PUT("/:bookingId/confirm", h.Confirm)
	bookings.PUT("/:bookingId/complete", h.Complete)
	bookings.PUT("/:bookingId/cancel", h.Cancel)
	return router
}

func callerWithID(id int64) interface{} {
	return mock.MatchedBy(func(i auth.Identity) bool { return i.UserID == id })
}

func TestHandler_Create(t *testing.T) {
	svc := new(MockService)
	svc.On("Create", mock.Anything, callerWithID(2), mock.MatchedBy(func(req CreateRequest) bool {
		return req.OfferID == 3 && req.Hours.Equal(hours("2"))
	})).Return(newBooking(StatusPending), nil)

	req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBufferString(`{"offer_id":3,"hours":"2.00"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(svc, 2).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"PENDING"`)
	svc.AssertExpectations(t)
}

func TestHandler_Create_MissingOffer(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBufferString(`{"hours":"2"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(new(MockService), 2).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Create_SelfBooking(t *testing.T) {
	svc := new(MockService)
	svc.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, ErrSelfBooking)

	req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBufferString(`{"offer_id":3}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupRouter(svc, 1).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "cannot book your own offer")
}

func TestHandler_Get(t *testing.T) {
	svc := new(MockService)
	svc.On("GetByID", mock.Anything, int64(7)).Return(newBooking(StatusConfirmed), nil)
	svc.On("GetByID", mock.Anything, int64(8)).Return(nil, ErrBookingNotFound)

	w := httptest.NewRecorder()
	setupRouter(svc, 0).ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reserved_hours":"4"`)
	assert.NotContains(t, w.Body.String(), "campus.edu")

	w = httptest.NewRecorder()
	setupRouter(svc, 0).ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings/8", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	setupRouter(svc, 0).ServeHTTP(w, httptest.NewRequest("GET", "/api/bookings/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Transitions(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		err    error
		want   int
	}{
		{"confirm", "Confirm", "/api/bookings/7/confirm", nil, http.StatusOK},
		{"confirm by requester", "Confirm", "/api/bookings/7/confirm", ErrNotOfferOwner, http.StatusForbidden},
		{"confirm without hours", "Confirm", "/api/bookings/7/confirm", ErrInsufficientHours, http.StatusConflict},
		{"complete", "Complete", "/api/bookings/7/complete", nil, http.StatusOK},
		{"complete pending", "Complete", "/api/bookings/7/complete", ErrNotConfirmed, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.err != nil {
				svc.On(tt.method, mock.Anything, callerWithID(1), int64(7)).Return(nil, tt.err)
			} else {
				svc.On(tt.method, mock.Anything, callerWithID(1), int64(7)).Return(newBooking(StatusConfirmed), nil)
			}

			w := httptest.NewRecorder()
			setupRouter(svc, 1).ServeHTTP(w, httptest.NewRequest("PUT", tt.path, nil))

			assert.Equal(t, tt.want, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Cancel(t *testing.T) {
	t.Run("with reason", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Cancel", mock.Anything, callerWithID(2), int64(7), "Exam moved").Return(newBooking(StatusCanceled), nil)

		w := httptest.NewRecorder()
		setupRouter(svc, 2).ServeHTTP(w, httptest.NewRequest("PUT", "/api/bookings/7/cancel?reason=Exam+moved", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("default reason", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Cancel", mock.Anything, mock.Anything, int64(7), DefaultCancelReason).Return(newBooking(StatusCanceled), nil)

		w := httptest.NewRecorder()
		setupRouter(svc, 2).ServeHTTP(w, httptest.NewRequest("PUT", "/api/bookings/7/cancel", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupRouter(new(MockService), 0).ServeHTTP(w, httptest.NewRequest("PUT", "/api/bookings/7/cancel", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_Lists(t *testing.T) {
	empty := api.NewPage([]Booking{}, api.PageRequest{Size: 20}, 0)

	svc := new(MockService)
	svc.On("ListMineAsRequester", mock.Anything, callerWithID(2), api.PageRequest{Page: 0, Size: 20}).Return(empty, nil)
	svc.On("ListMineAsOwner", mock.Anything, callerWithID(2), api.PageRequest{Page: 1, Size: 5}).Return(empty, nil)
	svc.On("ListByOffer", mock.Anything, int64(3), api.PageRequest{Size: 20}).Return(empty, nil)
	svc.On("ListByStatus", mock.Anything, "nope", api.PageRequest{Size: 20}).Return(api.Page[Booking]{}, ErrInvalidStatus)

	router := setupRouter(svc, 2)
	for path, want := range map[string]int{
		"/api/bookings/my/as-requester":           http.StatusOK,
		"/api/bookings/my/as-owner?page=1&size=5": http.StatusOK,
		"/api/bookings/offer/3":                   http.StatusOK,
		"/api/bookings/status/nope":               http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, want, w.Code, path)
	}
	svc.AssertExpectations(t)
}
