package admin

import (
	"net/http"
	"strconv"
	"time"

	"timebank/internal/api"
	"timebank/internal/auth"
	"timebank/internal/user"

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

func actor(c *gin.Context) (auth.Identity, bool) {
	identity, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
	}
	return identity, ok
}

// parseDate accepts RFC 3339 timestamps or plain dates. A plain end date covers the whole day.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// CreateAdmin godoc
// @Summary      Create admin account
// @Description  Open while no admin exists; afterwards requires an admin bearer token.
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      user.RegisterRequest  true  "Admin details"
// @Success      201      {object}  user.AuthResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Router       /api/admin/create-admin [post]
func (h *Handler) CreateAdmin(c *gin.Context) {
	var req user.RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	var caller *auth.Identity
	if identity, ok := auth.CurrentIdentity(c); ok {
		caller = &identity
	}

	resp, err := h.service.CreateAdmin(c.Request.Context(), caller, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        page  query     int  false  "Page number, zero based"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  api.Page[user.User]
// @Failure      403   {object}  api.ErrorResponse
// @Router       /api/admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	identity, ok := actor(c)
	if !ok {
		return
	}
	page, err := api.ParsePageRequest(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.ListUsers(c.Request.Context(), identity, page)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetUser godoc
// @Summary      Get user with wallet
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path      int  true  "User ID"
// @Success      200     {object}  user.Profile
// @Failure      404     {object}  api.ErrorResponse
// @Router       /api/admin/users/{userId} [get]
func (h *Handler) GetUser(c *gin.Context) {
	identity, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "userId")
	if !ok {
		return
	}

	profile, err := h.service.GetUser(c.Request.Context(), identity, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ActivateUser godoc
// @Summary      Activate user
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path      int  true  "User ID"
// @Success      200     {object}  user.User
// @Failure      404     {object}  api.ErrorResponse
// @Router       /api/admin/users/{userId}/activate [put]
func (h *Handler) ActivateUser(c *gin.Context) {
	identity, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "userId")
	if !ok {
		return
	}

	u, err := h.service.ActivateUser(c.Request.Context(), identity, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeactivateUser godoc
// @Summary      Deactivate user
// @Description  Admin accounts cannot be deactivated.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path      int  true  "User ID"
// @Success      200     {object}  user.User
// @Failure      400     {object}  api.ErrorResponse
// @Failure      404     {object}  api.ErrorResponse
// @Router       /api/admin/users/{userId}/deactivate [put]
func (h *Handler) DeactivateUser(c *gin.Context) {
	identity, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "userId")
	if !ok {
		return
	}

	u, err := h.service.DeactivateUser(c.Request.Context(), identity, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateRole godoc
// @Summary      Change user role
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userId   path      int                true  "User ID"
// @Param        request  body      UpdateRoleRequest  true  "New role"
// @Success      200      {object}  user.User
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /api/admin/users/{userId}/role [put]
func (h *Handler) UpdateRole(c *gin.Context) {
	identity, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "userId")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if !api.BindJSON(c, &req) {
		return
	}

	u, err := h.service.UpdateRole(c.Request.Context(), identity, id, req.Role)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// ListTransactions godoc
// @Summary      List all transactions
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        page  query     int  false  "Page number, zero based"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  api.Page[transaction.Transaction]
// @Router       /api/admin/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	identity, ok := actor(c)
	if !ok {
		return
	}
	page, err := api.ParsePageRequest(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.ListTransactions(c.Request.Context(), identity, page)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTransaction godoc
// @Summary      Get transaction
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        transactionId  path      int  true  "Transaction ID"
// @Success      200            {object}  transaction.Transaction
// @Failure      404            {object}  api.ErrorResponse
// @Router       /api/admin/transactions/{transactionId} [get]
func (h *Handler) GetTransaction(c *gin.Context) {
	identity, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "transactionId")
	if !ok {
		return
	}

	t, err := h.service.GetTransaction(c.Request.Context(), identity, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// ListUserTransactions godoc
// @Summary      List transactions of a user
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path      int  true   "User ID"
// @Param        page    query     int  false  "Page number, zero based"
// @Param        size    query     int  false  "Page size"
// @Success      200     {object}  api.Page[transaction.Transaction]
// @Router       /api/admin/transactions/user/{userId} [get]
func (h *Handler) ListUserTransactions(c *gin.Context) {
	identity, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "userId")
	if !ok {
		return
	}
	page, err := api.ParsePageRequest(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.ListUserTransactions(c.Request.Context(), identity, id, page)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListTransactionsByType godoc
// @Summary      List transactions by type
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        type  path      string  true   "RESERVE, COMMIT, RELEASE, EARN or REFUND"
// @Param        page  query     int     false  "Page number, zero based"
// @Param        size  query     int     false  "Page size"
// @Success      200   {object}  api.Page[transaction.Transaction]
// @Failure      400   {object}  api.ErrorResponse
// @Router       /api/admin/transactions/type/{type} [get]
func (h *Handler) ListTransactionsByType(c *gin.Context) {
	identity, ok := actor(c)
	if !ok {
		return
	}
	page, err := api.ParsePageRequest(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.ListTransactionsByType(c.Request.Context(), identity, c.Param("type"), page)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListTransactionsByDateRange godoc
// @Summary      List transactions in a date range
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query     string  true   "RFC 3339 timestamp or YYYY-MM-DD"
// @Param        end_date    query     string  true   "RFC 3339 timestamp or YYYY-MM-DD, inclusive"
// @Param        page        query     int     false  "Page number, zero based"
// @Param        size        query     int     false  "Page size"
// @Success      200         {object}  api.Page[transaction.Transaction]
// @Failure      400         {object}  api.ErrorResponse
// @Router       /api/admin/transactions/date-range [get]
func (h *Handler) ListTransactionsByDateRange(c *gin.Context) {
	identity, ok := actor(c)
	if !ok {
		return
	}

	from, err := parseDate(c.Query("start_date"), false)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	to, err := parseDate(c.Query("end_date"), true)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	page, err := api.ParsePageRequest(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.ListTransactionsByDateRange(c.Request.Context(), identity, from, to, page)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
