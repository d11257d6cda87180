package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/toolrent/rental-system/internal/core/ports"
)

type ProductHandler struct {
	catalog ports.CatalogService
}

func NewProductHandler(catalog ports.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// List returns every tool in the catalog.
//
// @Summary      List tools
// @Tags         products
// @Produce      json
// @Success      200  {array}   domain.Tool
// @Failure      500  {object}  ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	tools, err := h.catalog.ListTools(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tools)
}

// Get returns a single tool.
//
// @Summary      Get tool
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Tool ID"
// @Success      200  {object}  domain.Tool
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	tool, err := h.catalog.GetTool(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tool)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be numeric")
	}
	return id, nil
}
