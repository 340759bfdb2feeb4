package booking

import (
	"context"
	"net/http"
	"strconv"

	"timebank/internal/api"
	"timebank/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid " + name})
		return 0, false
	}
	return id, true
}

func currentCaller(c *gin.Context) (auth.Identity, bool) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
	}
	return identity, ok
}

// Create godoc
// @Summary      Request a booking
// @Description  Creates a PENDING booking on an available offer. Hours default to the offer's hours rate.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequest  true  "Booking request"
// @Success      201      {object}  Booking
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /api/bookings [post]
func (h *Handler) Create(c *gin.Context) {
	identity, ok := currentCaller(c)
	if !ok {
		return
	}

	var req CreateRequest
	if !api.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Create(c.Request.Context(), identity, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// Get godoc
// @Summary      Get booking
// @Tags         bookings
// @Produce      json
// @Param        bookingId  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      404        {object}  api.ErrorResponse
// @Router       /api/bookings/{bookingId} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c, "bookingId")
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// ListByOffer godoc
// @Summary      List bookings of an offer
// @Tags         bookings
// @Produce      json
// @Param        offerId  path      int  true   "Offer ID"
// @Param        page     query     int  false  "Page number, zero based"
// @Param        size     query     int  false  "Page size"
// @Success      200      {object}  api.Page[Booking]
// @Router       /api/bookings/offer/{offerId} [get]
func (h *Handler) ListByOffer(c *gin.Context) {
	offerID, ok := parseID(c, "offerId")
	if !ok {
		return
	}
	h.respondPage(c, func(ctx context.Context, page api.PageRequest) (api.Page[Booking], error) {
		return h.service.ListByOffer(ctx, offerID, page)
	})
}

// ListByStatus godoc
// @Summary      List bookings by status
// @Tags         bookings
// @Produce      json
// @Param        status  path      string  true   "PENDING, CONFIRMED, COMPLETED or CANCELED"
// @Param        page    query     int     false  "Page number, zero based"
// @Param        size    query     int     false  "Page size"
// @Success      200     {object}  api.Page[Booking]
// @Failure      400     {object}  api.ErrorResponse
// @Router       /api/bookings/status/{status} [get]
func (h *Handler) ListByStatus(c *gin.Context) {
	status := c.Param("status")
	h.respondPage(c, func(ctx context.Context, page api.PageRequest) (api.Page[Booking], error) {
		return h.service.ListByStatus(ctx, status, page)
	})
}

// ListMineAsRequester godoc
// @Summary      Bookings I requested
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        page  query     int  false  "Page number, zero based"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  api.Page[Booking]
// @Router       /api/bookings/my/as-requester [get]
func (h *Handler) ListMineAsRequester(c *gin.Context) {
	identity, ok := currentCaller(c)
	if !ok {
		return
	}
	h.respondPage(c, func(ctx context.Context, page api.PageRequest) (api.Page[Booking], error) {
		return h.service.ListMineAsRequester(ctx, identity, page)
	})
}

// ListMineAsOwner godoc
// @Summary      Bookings on my offers
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        page  query     int  false  "Page number, zero based"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  api.Page[Booking]
// @Router       /api/bookings/my/as-owner [get]
func (h *Handler) ListMineAsOwner(c *gin.Context) {
	identity, ok := currentCaller(c)
	if !ok {
		return
	}
	h.respondPage(c, func(ctx context.Context, page api.PageRequest) (api.Page[Booking], error) {
		return h.service.ListMineAsOwner(ctx, identity, page)
	})
}

// Confirm godoc
// @Summary      Confirm booking
// @Description  Offer owner accepts a PENDING booking; the requester's hours are reserved.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingId  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /api/bookings/{bookingId}/confirm [put]
func (h *Handler) Confirm(c *gin.Context) {
	h.transition(c, h.service.Confirm)
}

// Complete godoc
// @Summary      Complete booking
// @Description  Offer owner marks a CONFIRMED booking done and receives the reserved hours.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingId  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /api/bookings/{bookingId}/complete [put]
func (h *Handler) Complete(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

// Cancel godoc
// @Summary      Cancel booking
// @Description  Requester or owner cancels a PENDING or CONFIRMED booking.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingId  path      int     true   "Booking ID"
// @Param        reason     query     string  false  "Cancel reason"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /api/bookings/{bookingId}/cancel [put]
func (h *Handler) Cancel(c *gin.Context) {
	reason := c.DefaultQuery("reason", DefaultCancelReason)
	h.transition(c, func(ctx context.Context, caller auth.Identity, id int64) (*Booking, error) {
		return h.service.Cancel(ctx, caller, id, reason)
	})
}

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, caller auth.Identity, id int64) (*Booking, error)) {
	identity, ok := currentCaller(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "bookingId")
	if !ok {
		return
	}

	b, err := op(c.Request.Context(), identity, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (h *Handler) respondPage(c *gin.Context, list func(ctx context.Context, page api.PageRequest) (api.Page[Booking], error)) {
	page, err := api.ParsePageRequest(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := list(c.Request.Context(), page)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
