package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/toolrent/rental-system/internal/api/metrics"
	"github.com/toolrent/rental-system/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry an order without booking twice.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

type OrderHandler struct {
	orders ports.OrderService
}

func NewOrderHandler(orders ports.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type orderRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Duration int     `json:"duration"`
}

type orderResponse struct {
	Message   string `json:"message"`
	BookingID int64  `json:"bookingId"`
}

// Place books a tool for the authenticated user.
//
// @Summary      Place order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        Idempotency-Key  header    string        false  "Retry key"
// @Param        body             body      orderRequest  true   "Order"
// @Success      201  {object}  orderResponse
// @Success      200  {object}  orderResponse  "replayed"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /order [post]
func (h *OrderHandler) Place(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidOrder)
	}

	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLen {
		return echo.NewHTTPError(http.StatusBadRequest, "Idempotency-Key is too long.")
	}

	res, err := h.orders.PlaceOrder(c.Request().Context(), ports.PlaceOrderInput{
		UserID:         userID,
		Name:           req.Name,
		Price:          req.Price,
		Quantity:       req.Quantity,
		Duration:       req.Duration,
		IdempotencyKey: key,
	})
	if err != nil {
		metrics.OrdersPlacedTotal.WithLabelValues("error").Inc()
		return err
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
		metrics.OrdersPlacedTotal.WithLabelValues("replayed").Inc()
	} else {
		metrics.OrdersPlacedTotal.WithLabelValues("created").Inc()
	}
	return c.JSON(status, orderResponse{Message: "Order placed successfully.", BookingID: res.BookingID})
}
