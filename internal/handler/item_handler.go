package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"itemhub/internal/model"
	"itemhub/internal/service"
)

// ItemHandler serves the items resource.
type ItemHandler struct {
	svc service.ItemService
}

// NewItemHandler creates an item handler.
func NewItemHandler(svc service.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// ListItems godoc
// @Summary List items
// @Tags items
// @Produce json
// @Param skip query int false "Records to skip" default(0)
// @Param limit query int false "Page size (max 100)" default(10)
// @Success 200 {object} Response{data=[]model.Item}
// @Failure 422 {object} errors.ErrorResponse
// @Router /items [get]
func (h *ItemHandler) ListItems(c echo.Context) error {
	skip, limit, err := parsePage(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListItems(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, items)
}

// GetItem godoc
// @Summary Get item by id
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} Response{data=model.Item}
// @Failure 404 {object} errors.ErrorResponse
// @Router /items/{id} [get]
func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	item, err := h.svc.GetItem(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, item)
}

// CreateItem godoc
// @Summary Create item
// @Tags items
// @Accept json
// @Produce json
// @Param item body model.ItemCreate true "Item payload"
// @Success 201 {object} Response{data=model.Item}
// @Failure 422 {object} errors.ErrorResponse
// @Router /items [post]
func (h *ItemHandler) CreateItem(c echo.Context) error {
	var in model.ItemCreate
	if err := bind(c, &in); err != nil {
		return err
	}
	item, err := h.svc.CreateItem(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, item)
}

// UpdateItem godoc
// @Summary Partially update item
// @Tags items
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param item body model.ItemUpdate true "Fields to change"
// @Success 200 {object} Response{data=model.Item}
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /items/{id} [put]
func (h *ItemHandler) UpdateItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in model.ItemUpdate
	if err := bind(c, &in); err != nil {
		return err
	}
	item, err := h.svc.UpdateItem(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete item
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} errors.ErrorResponse
// @Router /items/{id} [delete]
func (h *ItemHandler) DeleteItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if _, err := h.svc.DeleteItem(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, MessageResponse{Message: "Item deleted successfully"})
}
