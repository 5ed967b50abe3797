package handlers

import (
	"context"
	"errors"

	apierrors "bookstand/internal/errors"
	"bookstand/internal/library"
	"bookstand/internal/models"
)

// InventoryHandler exposes the admin inventory mutations. Every entry point
// first checks that an identity is present; anonymous callers are bounced to
// the sign-in flow.
type InventoryHandler struct {
	lib *library.Library
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(lib *library.Library) *InventoryHandler {
	return &InventoryHandler{lib: lib}
}

// AddItemRequest is a request to add a book to a store's inventory.
type AddItemRequest struct {
	StoreID string    `path:"storeID"`
	BookID  models.ID `json:"book_id"`
	Price   *float64  `json:"price"`
}

// AddItemResponse carries the created item, including its generated invId.
type AddItemResponse struct {
	Item models.InventoryItem `json:"item"`
}

// AddItem appends a new priced listing. The invId is generated here, before
// the remote create is issued.
func (h *InventoryHandler) AddItem(ctx context.Context, req AddItemRequest) (*AddItemResponse, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	if req.BookID.IsZero() || req.Price == nil {
		return nil, apierrors.Validation("Select a book and enter price")
	}
	storeID := models.ID(req.StoreID)
	if h.lib.CurrentStore(storeID) == nil {
		return nil, apierrors.NotFound(apierrors.ErrStoreNotFound, "Store not found")
	}

	item, err := h.lib.Add(storeID, req.BookID, *req.Price)
	if err != nil {
		return nil, apierrors.InternalWithError("Failed to add inventory item", err)
	}
	return &AddItemResponse{Item: item}, nil
}

// UpdatePriceRequest is a request to change one listing's price.
type UpdatePriceRequest struct {
	InvID string   `path:"invID"`
	Price *float64 `json:"price"`
}

// UpdatePriceResponse acknowledges the update.
type UpdatePriceResponse struct {
	Updated bool `json:"updated"`
}

// UpdatePrice replaces the targeted item's price.
func (h *InventoryHandler) UpdatePrice(ctx context.Context, req UpdatePriceRequest) (*UpdatePriceResponse, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}
	if req.Price == nil {
		return nil, apierrors.MissingField("price")
	}

	if err := h.lib.UpdatePrice(models.ID(req.InvID), *req.Price); err != nil {
		if errors.Is(err, library.ErrItemNotFound) {
			return nil, apierrors.NotFound(apierrors.ErrInventoryNotFound, "Inventory item not found")
		}
		return nil, apierrors.InternalWithError("Failed to update price", err)
	}
	return &UpdatePriceResponse{Updated: true}, nil
}

// DeleteItemRequest is a request to remove one listing.
type DeleteItemRequest struct {
	InvID string `path:"invID"`
}

// DeleteItemResponse acknowledges the removal.
type DeleteItemResponse struct {
	Deleted bool `json:"deleted"`
}

// DeleteItem drops the targeted item.
func (h *InventoryHandler) DeleteItem(ctx context.Context, req DeleteItemRequest) (*DeleteItemResponse, error) {
	if _, err := identityFrom(ctx); err != nil {
		return nil, err
	}

	if err := h.lib.Remove(models.ID(req.InvID)); err != nil {
		if errors.Is(err, library.ErrItemNotFound) {
			return nil, apierrors.NotFound(apierrors.ErrInventoryNotFound, "Inventory item not found")
		}
		return nil, apierrors.InternalWithError("Failed to delete inventory item", err)
	}
	return &DeleteItemResponse{Deleted: true}, nil
}
