package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toolrent/rental-system/internal/core/ports"
)

type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type addToolRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

// AddTool adds a tool to the catalog.
//
// @Summary      Add tool
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        body  body      addToolRequest  true  "Tool"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /admin/add-tool [post]
func (h *AdminHandler) AddTool(c echo.Context) error {
	var req addToolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidBody)
	}

	if _, err := h.admin.AddTool(c.Request().Context(), ports.AddToolInput{
		Name:        req.Name,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Image:       req.Image,
		Description: req.Description,
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: "Tool added successfully."})
}

// RemoveTool deletes a tool from the catalog.
//
// @Summary      Remove tool
// @Tags         admin
// @Produce      json
// @Security     SessionToken
// @Param        id   path      int  true  "Tool ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/remove-tool/{id} [delete]
func (h *AdminHandler) RemoveTool(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.admin.RemoveTool(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Tool removed successfully."})
}

// RentalSummary reports total, rented and available quantity per tool.
//
// @Summary      Rental summary
// @Tags         admin
// @Produce      json
// @Security     SessionToken
// @Success      200  {array}   domain.RentalSummaryItem
// @Router       /admin/rental-summary [get]
func (h *AdminHandler) RentalSummary(c echo.Context) error {
	summary, err := h.admin.RentalSummary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
