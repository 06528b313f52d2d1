package handler

import (
	"net/http"
	"strconv"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/dto"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/infra"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/middleware"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductionHandler serves the per-event production sheet. Every call
// recomputes from current data; nothing is cached between requests.
type ProductionHandler struct{ svc service.ProductionService }

func NewProductionHandler(svc service.ProductionService) *ProductionHandler {
	return &ProductionHandler{svc: svc}
}

// Report godoc
// @Summary      Production sheet for an event
// @Tags         production
// @Security     BearerAuth
// @Param        id          path   string true  "Event UUID"
// @Param        menu_type   query  string false "guests | staff | all (default guests)"
// @Param        portions    query  int    false "Portion count (default guest count)"
// @Param        pricing     query  string false "reference | latest_purchase (default reference)"
// @Param        request_id  query  string false "Echoed back to discard stale responses"
// @Success      200 {object} dto.ProductionReport
// @Router       /v1/events/{id}/production [get]
func (h *ProductionHandler) Report(c *gin.Context) {
	id, ok := parseID(c, "id", "event")
	if !ok {
		return
	}
	q := productionQuery(c)
	if !validateStruct(c, &q) {
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), id, q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Products lists the event's products and whether each has a recipe.
func (h *ProductionHandler) Products(c *gin.Context) {
	id, ok := parseID(c, "id", "event")
	if !ok {
		return
	}
	q := productionQuery(c)
	if !validateStruct(c, &q) {
		return
	}
	resp, err := h.svc.Products(c.Request.Context(), id, q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF streams the rendered production sheet.
func (h *ProductionHandler) PDF(c *gin.Context) {
	id, ok := parseID(c, "id", "event")
	if !ok {
		return
	}
	q := productionQuery(c)
	if !validateStruct(c, &q) {
		return
	}
	rep, pdf, err := h.svc.RenderSheet(c.Request.Context(), id, q)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(infra.SheetFileName(rep)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Send queues the sheet for e-mail delivery and answers 202 immediately.
func (h *ProductionHandler) Send(c *gin.Context) {
	id, ok := parseID(c, "id", "event")
	if !ok {
		return
	}
	var req dto.SendSheetRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.RequestID == "" {
		req.RequestID = middleware.GetRequestID(c)
	}
	resp, err := h.svc.Send(c.Request.Context(), id, req, middleware.OperatorName(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
