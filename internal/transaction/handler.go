package transaction

import (
	"net/http"

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

// ListMine godoc
// @Summary      List my transactions
// @Description  Returns the audit trail of the authenticated user, newest first.
// @Tags         transactions
// @Security     BearerAuth
// @Produce      json
// @Param        page  query     int  false  "Page number, zero based"
// @Param        size  query     int  false  "Page size"
// @Success      200   {object}  api.Page[Transaction]
// @Failure      400   {object}  api.ErrorResponse
// @Failure      401   {object}  api.ErrorResponse
// @Router       /api/transactions/my [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	page, err := api.ParsePageRequest(c)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	result, err := h.service.ListByUser(c.Request.Context(), userID, page)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
