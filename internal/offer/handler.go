package offer

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

func caller(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
	}
	return id, ok
}

// Create godoc
// @Summary      Create offer
// @Description  Publishes a new ACTIVE offer owned by the caller.
// @Tags         offers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      OfferRequest  true  "Offer data"
// @Success      201      {object}  Offer
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /api/offers [post]
func (h *Handler) Create(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	var req OfferRequest
	if !api.BindJSON(c, &req) {
		return
	}

	o, err := h.service.Create(c.Request.Context(), identity, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, o)
}

// Get godoc
// @Summary      Get offer
// @Tags         offers
// @Produce      json
// @Param        offerId  path      int  true  "Offer ID"
// @Success      200      {object}  Offer
// @Failure      404      {object}  api.ErrorResponse
// @Router       /api/offers/{offerId} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c, "offerId")
	if !ok {
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

// ListActive godoc
// @Summary      List bookable offers
// @Description  Offers that are ACTIVE and available, newest first.
// @Tags         offers
// @Produce      json
// @Param        page  query     int  false  "Page number, zero based"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  api.Page[Offer]
// @Router       /api/offers/active/list [get]
func (h *Handler) ListActive(c *gin.Context) {
	page, err := api.ParsePageRequest(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.ListActive(c.Request.Context(), page)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// List godoc
// @Summary      List all offers
// @Tags         offers
// @Produce      json
// @Param        page  query     int  false  "Page number, zero based"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  api.Page[Offer]
// @Router       /api/offers [get]
func (h *Handler) List(c *gin.Context) {
	page, err := api.ParsePageRequest(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListByOwner godoc
// @Summary      List offers of a user
// @Tags         offers
// @Produce      json
// @Param        ownerId  path      int  true   "Owner user ID"
// @Param        page     query     int  false  "Page number, zero based"
// @Param        size     query     int  false  "Page size"
// @Success      200      {object}  api.Page[Offer]
// @Failure      404      {object}  api.ErrorResponse
// @Router       /api/offers/owner/{ownerId} [get]
func (h *Handler) ListByOwner(c *gin.Context) {
	ownerID, ok := parseID(c, "ownerId")
	if !ok {
		return
	}

	page, err := api.ParsePageRequest(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.ListByOwner(c.Request.Context(), ownerID, page)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListMine godoc
// @Summary      List my offers
// @Tags         offers
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Offer
// @Failure      401  {object}  api.ErrorResponse
// @Router       /api/offers/my-offers [get]
func (h *Handler) ListMine(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}

	offers, err := h.service.ListMine(c.Request.Context(), identity)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, offers)
}

// Update godoc
// @Summary      Update offer
// @Tags         offers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        offerId  path      int           true  "Offer ID"
// @Param        request  body      OfferRequest  true  "Offer data"
// @Success      200      {object}  Offer
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /api/offers/{offerId} [put]
func (h *Handler) Update(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "offerId")
	if !ok {
		return
	}

	var req OfferRequest
	if !api.BindJSON(c, &req) {
		return
	}

	o, err := h.service.Update(c.Request.Context(), identity, id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

// Activate godoc
// @Summary      Activate offer
// @Tags         offers
// @Security     BearerAuth
// @Param        offerId  path  int  true  "Offer ID"
// @Success      204
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/offers/{offerId}/activate [put]
func (h *Handler) Activate(c *gin.Context) {
	h.toggle(c, h.service.Activate)
}

// Deactivate godoc
// @Summary      Deactivate offer
// @Tags         offers
// @Security     BearerAuth
// @Param        offerId  path  int  true  "Offer ID"
// @Success      204
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/offers/{offerId}/deactivate [put]
func (h *Handler) Deactivate(c *gin.Context) {
	h.toggle(c, h.service.Deactivate)
}

func (h *Handler) toggle(c *gin.Context, op func(ctx context.Context, caller auth.Identity, id int64) error) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "offerId")
	if !ok {
		return
	}

	if err := op(c.Request.Context(), identity, id); err != nil {
		api.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
