package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agromarket/marketplace-api/internal/api/metrics"
	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
)

const defaultProductPageLimit = 50

// ProductHandler handles HTTP requests for product listings.
type ProductHandler struct {
	service   ports.ProductService
	validator *echoValidator
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service, validator: NewValidator()}
}

// List handles GET /produtos/.
//
// @Summary      List products
// @Tags         produtos
// @Produce      json
// @Param        skip   query     int  false  "Rows to skip"  default(0)
// @Param        limit  query     int  false  "Page size"     default(50)
// @Success      200    {array}   domain.Product
// @Failure      422    {object}  map[string]string
// @Router       /produtos/ [get]
func (h *ProductHandler) List(c echo.Context) error {
	page, err := parsePage(c, defaultProductPageLimit)
	if err != nil {
		return err
	}

	products, err := h.service.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Get handles GET /produtos/:id.
//
// @Summary      Get a product
// @Tags         produtos
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  map[string]string
// @Router       /produtos/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Mine handles GET /produtos/me.
//
// @Summary      List the caller's products
// @Tags         produtos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Product
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /produtos/me [get]
func (h *ProductHandler) Mine(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	products, err := h.service.ListMine(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Create handles POST /produtos/.
//
// @Summary      Create a product
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product details"
// @Success      201   {object}  domain.Product
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /produtos/ [post]
func (h *ProductHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Validate has already checked the amount.
	price, _ := domain.ParseMoney(req.Price.String())
	product, err := h.service.Create(c.Request().Context(), actor, ports.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Quantity:    *req.Quantity,
		Category:    domain.Category(req.Category),
		Location:    req.Location,
	})
	if err != nil {
		return err
	}

	metrics.ProductMutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, product)
}

// Update handles PUT /produtos/:id.
//
// @Summary      Update a product
// @Description  Sparse update: omitted fields are left unchanged; descricao and localizacao accept null.
// @Tags         produtos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Product ID"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  domain.Product
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /produtos/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}
	patch, err := req.toPatch(h.validator)
	if err != nil {
		return err
	}

	product, err := h.service.Update(c.Request().Context(), actor, id, patch)
	if err != nil {
		return err
	}

	metrics.ProductMutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /produtos/:id.
//
// @Summary      Delete a product
// @Tags         produtos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  domain.Product
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /produtos/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.service.Delete(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}

	metrics.ProductMutationsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, product)
}
