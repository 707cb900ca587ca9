package handlers

import (
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/ghuser/brigade/pkg/httpx"
	pkgvalidator "github.com/ghuser/brigade/pkg/validator"
	appsvcs "github.com/ghuser/brigade/services/inventory/application/services"
	"github.com/ghuser/brigade/services/inventory/domain/models"
	"github.com/ghuser/brigade/services/inventory/domain/repositories"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func clampLimit(n int) int {
	if n == 0 {
		return defaultPageSize
	}
	return min(n, maxPageSize)
}

// CreateItemRequest is the request body for POST /inventory/items.
type CreateItemRequest struct {
	Code            string  `json:"code" validate:"required,max=64,itemcode" example:"ERA-HELMET-01"`
	Name            string  `json:"name" validate:"required,notblank,max=255" example:"Structural helmet"`
	Category        string  `json:"category" validate:"required,max=64" example:"PPE"`
	Unit            string  `json:"unit" validate:"required,notblank,max=32" example:"unit"`
	InitialQuantity int     `json:"initial_quantity" validate:"gte=0,max=2147483647" example:"5"`
	MinStock        *int    `json:"min_stock" validate:"omitempty,gte=0,max=2147483647" example:"2"`
	IsPPE           bool    `json:"is_ppe" example:"true"`
	ExpiryDate      *string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02" example:"2027-03-31"`
} // @name CreateItemRequest

// PostItemHandler handles POST /inventory/items.
type PostItemHandler struct{ base }

// NewPostItemHandler returns a PostItemHandler.
func NewPostItemHandler(svc *appsvcs.Services, opts Options) *PostItemHandler {
	return &PostItemHandler{base{svc, opts}}
}

// Execute creates an item with its opening stock.
//
//	@Summary		Create item
//	@Description	Registers an inventory item. Quantity starts at initial_quantity and only changes through stock operations.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	errhttp.ErrorResponse
//	@Failure		404		{object}	errhttp.ErrorResponse	"Unknown category"
//	@Failure		409		{object}	errhttp.ErrorResponse	"Duplicate code"
//	@Failure		422		{object}	errhttp.ErrorResponse
//	@Router			/inventory/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	p := models.NewItemParams{
		Code:            req.Code,
		Name:            req.Name,
		Category:        req.Category,
		Unit:            req.Unit,
		InitialQuantity: req.InitialQuantity,
		MinStock:        req.MinStock,
		IsPPE:           req.IsPPE,
	}
	if req.ExpiryDate != nil {
		d, err := time.Parse(dateLayout, *req.ExpiryDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid expiry_date")
			return
		}
		p.ExpiryDate = &d
	}

	item, err := h.svc.Catalog.CreateItem(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.Created(w, path.Join(r.URL.Path, strconv.FormatInt(item.ID, 10)), toItemResponse(item))
}

// ListItemsHandler handles GET /inventory/items.
type ListItemsHandler struct{ base }

// NewListItemsHandler returns a ListItemsHandler.
func NewListItemsHandler(svc *appsvcs.Services, opts Options) *ListItemsHandler {
	return &ListItemsHandler{base{svc, opts}}
}

// Execute lists items ordered by code.
//
//	@Summary	List items
//	@Tags		items
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (max 200)"	default(50)
//	@Param		offset	query		int	false	"Offset"				default(0)
//	@Success	200		{object}	ItemListResponse
//	@Failure	400		{object}	errhttp.ErrorResponse
//	@Router		/inventory/items [get]
func (h *ListItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", defaultPageSize)
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset", 0)
	if !ok {
		return
	}
	limit = clampLimit(limit)

	items, total, err := h.svc.Catalog.ListItems(r.Context(), repositories.QueryOpts{Limit: limit, Offset: offset})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := ItemListResponse{Items: make([]ItemResponse, 0, len(items)), Total: total, Limit: limit, Offset: offset}
	for _, it := range items {
		resp.Items = append(resp.Items, toItemResponse(it))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// GetItemHandler handles GET /inventory/items/{id}.
type GetItemHandler struct{ base }

// NewGetItemHandler returns a GetItemHandler.
func NewGetItemHandler(svc *appsvcs.Services, opts Options) *GetItemHandler {
	return &GetItemHandler{base{svc, opts}}
}

// Execute returns one item.
//
//	@Summary	Get item
//	@Tags		items
//	@Produce	json
//	@Param		id	path		int	true	"Item ID"
//	@Success	200	{object}	ItemResponse
//	@Failure	404	{object}	errhttp.ErrorResponse
//	@Router		/inventory/items/{id} [get]
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.svc.Catalog.GetItem(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// DeleteItemHandler handles DELETE /inventory/items/{id}.
type DeleteItemHandler struct{ base }

// NewDeleteItemHandler returns a DeleteItemHandler.
func NewDeleteItemHandler(svc *appsvcs.Services, opts Options) *DeleteItemHandler {
	return &DeleteItemHandler{base{svc, opts}}
}

// Execute deletes an item that has no history.
//
//	@Summary	Delete item
//	@Tags		items
//	@Param		id	path	int	true	"Item ID"
//	@Success	204
//	@Failure	404	{object}	errhttp.ErrorResponse
//	@Failure	409	{object}	errhttp.ErrorResponse	"Item has movements or assignments"
//	@Router		/inventory/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Catalog.DeleteItem(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// ItemMovementsHandler handles GET /inventory/items/{id}/movements.
type ItemMovementsHandler struct{ base }

// NewItemMovementsHandler returns an ItemMovementsHandler.
func NewItemMovementsHandler(svc *appsvcs.Services, opts Options) *ItemMovementsHandler {
	return &ItemMovementsHandler{base{svc, opts}}
}

// Execute returns the item's journal, newest first.
//
//	@Summary	Item movements
//	@Tags		items
//	@Produce	json
//	@Param		id		path	int	true	"Item ID"
//	@Param		limit	query	int	false	"Maximum entries (max 200)"	default(50)
//	@Success	200		{array}	MovementResponse
//	@Failure	404		{object}	errhttp.ErrorResponse
//	@Router		/inventory/items/{id}/movements [get]
func (h *ItemMovementsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", defaultPageSize)
	if !ok {
		return
	}
	limit = clampLimit(limit)

	if _, err := h.svc.Catalog.GetItem(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]MovementResponse, 0, limit)
	for m, err := range h.svc.Catalog.GetMovementsForItem(r.Context(), id) {
		if err != nil {
			h.fail(w, r, err)
			return
		}
		out = append(out, toMovementResponse(m))
		if len(out) == limit {
			break
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

// ItemAssignmentsHandler handles GET /inventory/items/{id}/assignments.
type ItemAssignmentsHandler struct{ base }

// NewItemAssignmentsHandler returns an ItemAssignmentsHandler.
func NewItemAssignmentsHandler(svc *appsvcs.Services, opts Options) *ItemAssignmentsHandler {
	return &ItemAssignmentsHandler{base{svc, opts}}
}

// Execute lists every assignment of the item.
//
//	@Summary	Item assignments
//	@Tags		items
//	@Produce	json
//	@Param		id	path	int	true	"Item ID"
//	@Success	200	{array}	AssignmentResponse
//	@Failure	404	{object}	errhttp.ErrorResponse
//	@Router		/inventory/items/{id}/assignments [get]
func (h *ItemAssignmentsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	as, err := h.svc.Catalog.GetAssignmentsForItem(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssignmentResponses(as))
}

// ReconciliationHandler handles GET /inventory/items/{id}/reconciliation.
type ReconciliationHandler struct{ base }

// NewReconciliationHandler returns a ReconciliationHandler.
func NewReconciliationHandler(svc *appsvcs.Services, opts Options) *ReconciliationHandler {
	return &ReconciliationHandler{base{svc, opts}}
}

// Execute checks the item's stock against its journal and assignments.
//
//	@Summary	Reconcile item
//	@Tags		items
//	@Produce	json
//	@Param		id	path		int	true	"Item ID"
//	@Success	200	{object}	ReconciliationResponse
//	@Failure	404	{object}	errhttp.ErrorResponse
//	@Router		/inventory/items/{id}/reconciliation [get]
func (h *ReconciliationHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rep, err := h.svc.Catalog.Reconcile(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toReconciliationResponse(rep))
}
