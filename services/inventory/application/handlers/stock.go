package handlers

import (
	"context"
	"net/http"

	"github.com/ghuser/brigade/pkg/httpx"
	pkgvalidator "github.com/ghuser/brigade/pkg/validator"
	appsvcs "github.com/ghuser/brigade/services/inventory/application/services"
)

// Stock operations accepted by POST /inventory/items/{id}/stock.
const (
	StockReceive = "receive"
	StockConsume = "consume"
	StockAdjust  = "adjust"
)

// StockRequest is the request body for POST /inventory/items/{id}/stock.
// Quantity is a positive count for receive and consume and a non-zero signed
// delta for adjust.
type StockRequest struct {
	Operation string  `json:"operation" validate:"required,oneof=receive consume adjust" example:"receive"`
	Quantity  int     `json:"quantity" validate:"required,min=-2147483647,max=2147483647" example:"10"`
	Notes     *string `json:"notes" validate:"omitempty,max=500" example:"Delivery note 2024-117"`
} // @name StockRequest

// PostStockHandler handles POST /inventory/items/{id}/stock.
type PostStockHandler struct{ base }

// NewPostStockHandler returns a PostStockHandler.
func NewPostStockHandler(svc *appsvcs.Services, opts Options) *PostStockHandler {
	return &PostStockHandler{base{svc, opts}}
}

// Execute receives, consumes or adjusts stock of an item in one atomic step.
//
//	@Summary		Change stock
//	@Description	Books a purchase, a usage or a manual adjustment and journals one movement.
//	@Tags			stock
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Item ID"
//	@Param			request	body		StockRequest	true	"Stock change"
//	@Success		200		{object}	StockChangeResponse
//	@Failure		404		{object}	errhttp.ErrorResponse
//	@Failure		409		{object}	errhttp.ErrorResponse	"Insufficient stock"
//	@Failure		422		{object}	errhttp.ErrorResponse
//	@Failure		503		{object}	errhttp.ErrorResponse	"Rolled back; retry"
//	@Router			/inventory/items/{id}/stock [post]
func (h *PostStockHandler) Execute(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	person, ok := responsible(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[StockRequest](w, r)
	if !ok {
		return
	}

	var run func(context.Context) (*appsvcs.StockResult, error)
	cmd := appsvcs.StockCommand{ItemID: itemID, Quantity: req.Quantity, ResponsiblePersonID: person, Notes: emptyToNil(req.Notes)}
	switch req.Operation {
	case StockReceive:
		run = func(ctx context.Context) (*appsvcs.StockResult, error) { return h.svc.Stock.ReceiveStock(ctx, cmd) }
	case StockConsume:
		run = func(ctx context.Context) (*appsvcs.StockResult, error) { return h.svc.Stock.ConsumeStock(ctx, cmd) }
	case StockAdjust:
		run = func(ctx context.Context) (*appsvcs.StockResult, error) {
			return h.svc.Stock.AdjustStock(ctx, appsvcs.AdjustCommand{
				ItemID: itemID, Delta: req.Quantity, ResponsiblePersonID: person, Notes: cmd.Notes,
			})
		}
	}

	res, err := run(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, StockChangeResponse{
		Item:     toItemResponse(res.Item),
		Movement: toMovementResponse(res.Movement),
	})
}
