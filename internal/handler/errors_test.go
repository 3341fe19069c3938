package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/dto"
	"storefront/internal/pricing"
	"storefront/internal/service"
)

func respond(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, respondError(c, zap.NewNop(), err))

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestRespondErrorBusinessCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"empty order", service.ErrEmptyOrder, http.StatusBadRequest, "EMPTY_ORDER"},
		{"line not found", service.ErrLineNotFound, http.StatusNotFound, "LINE_NOT_FOUND"},
		{"duplicate line", service.ErrDuplicateLine, http.StatusConflict, "DUPLICATE_LINE"},
		{"coupon not found", service.ErrCouponNotFound, http.StatusNotFound, "COUPON_NOT_FOUND"},
		{"coupon expired", service.ErrCouponExpired, http.StatusUnprocessableEntity, "COUPON_EXPIRED"},
		{"coupon exhausted", service.ErrCouponExhausted, http.StatusUnprocessableEntity, "COUPON_EXHAUSTED"},
		{"coupon already applied", service.ErrCouponAlreadyApplied, http.StatusConflict, "COUPON_ALREADY_APPLIED"},
		{"coupon not applied", service.ErrCouponNotApplied, http.StatusNotFound, "COUPON_NOT_APPLIED"},
		{"out of stock", &service.OutOfStockError{ProductID: 7}, http.StatusUnprocessableEntity, "OUT_OF_STOCK"},
		{"insufficient stock", &service.InsufficientStockError{ProductID: 7, Requested: 3, Available: 1}, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := respond(t, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

// Wrapped business errors still map to their code.
func TestRespondErrorUnwraps(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), service.ErrCouponExpired)
	status, body := respond(t, wrapped)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "COUPON_EXPIRED", body.Error.Code)
}

// Invariant violations and infrastructure failures surface as a generic
// internal error with no business detail.
func TestRespondErrorInternal(t *testing.T) {
	for _, err := range []error{
		errors.New("connection refused"),
		&pricing.InvalidCouponTypeError{Type: "BOGOF"},
	} {
		status, body := respond(t, err)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "INTERNAL", body.Error.Code)
		assert.Equal(t, "internal server error", body.Error.Message)
	}
}
