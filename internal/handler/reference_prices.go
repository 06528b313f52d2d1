package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/apierror"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/dto"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/middleware"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// maxCSVBytes caps reference price uploads.
const maxCSVBytes = 2 << 20

type ReferencePricesHandler struct{ svc service.PricingService }

func NewReferencePricesHandler(svc service.PricingService) *ReferencePricesHandler {
	return &ReferencePricesHandler{svc: svc}
}

func (h *ReferencePricesHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Set replaces one ingredient's reference price and records the change.
func (h *ReferencePricesHandler) Set(c *gin.Context) {
	id, ok := parseID(c, "id", "ingredient")
	if !ok {
		return
	}
	var req dto.SetReferencePriceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Set(c.Request.Context(), id, *req.Price, middleware.OperatorName(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary  Reference price history of one ingredient, newest first
// @Tags     reference-prices
// @Param    id    path  string true  "Ingredient UUID"
// @Param    page  query int    false "Page (default 1)"
// @Param    limit query int    false "Rows per page (default 50, max 200)"
// @Success  200 {object} dto.PriceHistoryResponse
// @Router   /v1/reference-prices/{id}/history [get]
func (h *ReferencePricesHandler) History(c *gin.Context) {
	id, ok := parseID(c, "id", "ingredient")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.svc.History(c.Request.Context(), id, page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Bulk raises or lowers reference prices by a percentage. With preview set
// nothing is written.
func (h *ReferencePricesHandler) Bulk(c *gin.Context) {
	var req dto.BulkAdjustRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.BulkAdjust(c.Request.Context(), req, middleware.OperatorName(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImportCSV accepts a multipart "file" field or a raw text/csv body with
// ingredient_id,price rows.
func (h *ReferencePricesHandler) ImportCSV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCSVBytes)

	var data []byte
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("cannot read uploaded file").WithRequest(middleware.GetRequestID(c)))
			return
		}
		defer f.Close()
		data, err = io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("cannot read uploaded file").WithRequest(middleware.GetRequestID(c)))
			return
		}
	} else {
		data, err = io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, apierror.New("CSV too large").WithRequest(middleware.GetRequestID(c)))
			return
		}
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("empty CSV").WithRequest(middleware.GetRequestID(c)))
		return
	}

	resp, err := h.svc.ImportCSV(c.Request.Context(), data, middleware.OperatorName(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
