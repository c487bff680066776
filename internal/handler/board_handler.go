package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetline/fleetline-api/internal/service"
	"github.com/fleetline/fleetline-api/pkg/response"
)

// BoardHandler wires the schedule board to HTTP routes.
type BoardHandler struct {
	board          *service.BoardService
	exportsEnabled bool
}

// NewBoardHandler constructs a new BoardHandler.
func NewBoardHandler(board *service.BoardService, exportsEnabled bool) *BoardHandler {
	return &BoardHandler{board: board, exportsEnabled: exportsEnabled}
}

// List godoc
// @Summary Get the schedule board
// @Tags Board
// @Produce json
// @Param from query string false "Occurrence window start (YYYY-MM-DD)"
// @Param to query string false "Occurrence window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /board [get]
func (h *BoardHandler) List(c *gin.Context) {
	from, to, err := dateRangeFromQuery(c, 7)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.board.List(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{
		"from": from.Format(dateLayout),
		"to":   to.Format(dateLayout),
	})
}

// Refresh godoc
// @Summary Rebuild the schedule board view
// @Tags Board
// @Success 204
// @Router /board/refresh [post]
func (h *BoardHandler) Refresh(c *gin.Context) {
	if err := h.board.Refresh(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the schedule board
// @Tags Board
// @Produce octet-stream
// @Param format query string true "Export format (csv,pdf)"
// @Param from query string false "Occurrence window start (YYYY-MM-DD)"
// @Param to query string false "Occurrence window end (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /board/export [get]
func (h *BoardHandler) Export(c *gin.Context) {
	if !h.exportsEnabled {
		c.Status(http.StatusNotFound)
		return
	}
	from, to, err := dateRangeFromQuery(c, 7)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.board.Export(c.Request.Context(), from, to, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("schedule-board-%s-%s.%s", from.Format(dateLayout), to.Format(dateLayout), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
