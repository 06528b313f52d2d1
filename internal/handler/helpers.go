package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/apierror"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/costing"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/dto"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/infra"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/middleware"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Let tags like min=0 work on decimal.Decimal fields.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs the validator tags.
// On failure it writes the response and returns false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()).WithRequest(middleware.GetRequestID(c)))
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()).WithRequest(middleware.GetRequestID(c)))
			return false
		}
		fields := make(map[string]string, len(ves))
		for _, fe := range ves {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID reads a UUID path parameter, answering 400 when malformed.
func parseID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+what+" id").WithRequest(middleware.GetRequestID(c)))
		return uuid.Nil, false
	}
	return id, true
}

// productionQuery reads the recomputation controls from the query string.
// A missing portions value stays 0 (the guest count is used); a value that
// is not a number becomes 1, the same as any other out-of-range input.
func productionQuery(c *gin.Context) dto.ProductionQuery {
	q := dto.ProductionQuery{
		MenuType:  strings.TrimSpace(c.Query("menu_type")),
		Pricing:   strings.TrimSpace(c.Query("pricing")),
		RequestID: c.Query("request_id"),
	}
	if raw, ok := c.GetQuery("portions"); ok && strings.TrimSpace(raw) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			n = 1
		}
		q.Portions = costing.ClampPortions(n)
	}
	if q.RequestID == "" {
		q.RequestID = middleware.GetRequestID(c)
	}
	return q
}

// writeServiceError maps domain errors to status codes. Unknown errors are
// attached to the context for ErrorHandler to log and answer with a 500.
func writeServiceError(c *gin.Context, err error) {
	rid := middleware.GetRequestID(c)
	switch {
	case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrIngredientNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()).WithRequest(rid))
	case errors.Is(err, service.ErrInvalidMenuType),
		errors.Is(err, service.ErrNegativePrice),
		errors.Is(err, costing.ErrUnknownPricingMode),
		errors.Is(err, costing.ErrInvalidPortions):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()).WithRequest(rid))
	case errors.Is(err, service.ErrDeliveryDisabled):
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()).WithRequest(rid))
	case errors.Is(err, infra.ErrCircuitOpen):
		c.Header("Retry-After", "30")
		c.JSON(http.StatusServiceUnavailable, apierror.New("data store temporarily unavailable").WithRequest(rid))
	default:
		_ = c.Error(err)
	}
}
