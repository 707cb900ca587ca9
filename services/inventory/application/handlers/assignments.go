package handlers

import (
	"net/http"
	"time"

	"github.com/ghuser/brigade/pkg/httpx"
	pkgvalidator "github.com/ghuser/brigade/pkg/validator"
	appsvcs "github.com/ghuser/brigade/services/inventory/application/services"
	"github.com/ghuser/brigade/services/inventory/domain/models"
)

// AssignRequest is the request body for POST /inventory/assignments.
type AssignRequest struct {
	ItemID   int64   `json:"item_id" validate:"required,gt=0" example:"7"`
	PersonID int64   `json:"person_id" validate:"required,gt=0" example:"3"`
	Quantity int     `json:"quantity" validate:"required,max=2147483647" example:"3"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02" example:"2024-07-01"`
	Notes    *string `json:"notes" validate:"omitempty,max=500" example:"Issued for winter season"`
} // @name AssignRequest

// ReturnRequest is the request body for POST /inventory/assignments/{id}/returns.
type ReturnRequest struct {
	Quantity int     `json:"quantity" validate:"required,max=2147483647" example:"1"`
	Notes    *string `json:"notes" validate:"omitempty,max=500"`
} // @name ReturnRequest

// WriteOffRequest is the request body for POST /inventory/assignments/{id}/write-off.
type WriteOffRequest struct {
	Status string  `json:"status" validate:"required,oneof=Lost Damaged" example:"Lost"`
	Notes  *string `json:"notes" validate:"omitempty,max=500" example:"Lost during structure fire 24-0113"`
} // @name WriteOffRequest

func toAssignmentChange(res *appsvcs.AssignmentResult) StockChangeResponse {
	a := toAssignmentResponse(res.Assignment)
	return StockChangeResponse{
		Item:       toItemResponse(res.Item),
		Assignment: &a,
		Movement:   toMovementResponse(res.Movement),
	}
}

// PostAssignmentHandler handles POST /inventory/assignments.
type PostAssignmentHandler struct{ base }

// NewPostAssignmentHandler returns a PostAssignmentHandler.
func NewPostAssignmentHandler(svc *appsvcs.Services, opts Options) *PostAssignmentHandler {
	return &PostAssignmentHandler{base{svc, opts}}
}

// Execute hands PPE units to a person.
//
//	@Summary		Assign PPE
//	@Description	Deducts stock, opens an assignment and journals a ppe-assignment-out movement atomically.
//	@Tags			assignments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AssignRequest	true	"Assignment"
//	@Success		201		{object}	StockChangeResponse
//	@Failure		404		{object}	errhttp.ErrorResponse
//	@Failure		409		{object}	errhttp.ErrorResponse	"Not PPE or insufficient stock"
//	@Failure		422		{object}	errhttp.ErrorResponse
//	@Failure		503		{object}	errhttp.ErrorResponse	"Rolled back; retry"
//	@Router			/inventory/assignments [post]
func (h *PostAssignmentHandler) Execute(w http.ResponseWriter, r *http.Request) {
	person, ok := responsible(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[AssignRequest](w, r)
	if !ok {
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid date")
		return
	}

	res, err := h.svc.Stock.AssignToPerson(r.Context(), appsvcs.AssignCommand{
		ItemID:              req.ItemID,
		PersonID:            req.PersonID,
		Quantity:            req.Quantity,
		Date:                date,
		ResponsiblePersonID: person,
		Notes:               emptyToNil(req.Notes),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAssignmentChange(res))
}

// PostReturnHandler handles POST /inventory/assignments/{id}/returns.
type PostReturnHandler struct{ base }

// NewPostReturnHandler returns a PostReturnHandler.
func NewPostReturnHandler(svc *appsvcs.Services, opts Options) *PostReturnHandler {
	return &PostReturnHandler{base{svc, opts}}
}

// Execute returns units of an assignment to stock.
//
//	@Summary	Return PPE
//	@Tags		assignments
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int				true	"Assignment ID"
//	@Param		request	body		ReturnRequest	true	"Return"
//	@Success	200		{object}	StockChangeResponse
//	@Failure	404		{object}	errhttp.ErrorResponse
//	@Failure	409		{object}	errhttp.ErrorResponse	"Assignment closed or quantity exceeds holding"
//	@Failure	422		{object}	errhttp.ErrorResponse
//	@Router		/inventory/assignments/{id}/returns [post]
func (h *PostReturnHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	person, ok := responsible(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ReturnRequest](w, r)
	if !ok {
		return
	}

	res, err := h.svc.Stock.ReturnFromPerson(r.Context(), appsvcs.ReturnCommand{
		AssignmentID:        id,
		Quantity:            req.Quantity,
		ResponsiblePersonID: person,
		Notes:               emptyToNil(req.Notes),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssignmentChange(res))
}

// PostWriteOffHandler handles POST /inventory/assignments/{id}/write-off.
type PostWriteOffHandler struct{ base }

// NewPostWriteOffHandler returns a PostWriteOffHandler.
func NewPostWriteOffHandler(svc *appsvcs.Services, opts Options) *PostWriteOffHandler {
	return &PostWriteOffHandler{base{svc, opts}}
}

// Execute closes the outstanding units of an assignment as Lost or Damaged.
//
//	@Summary		Write off PPE
//	@Description	Stock is not restored. A zero-delta ppe-write-off movement is journaled.
//	@Tags			assignments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Assignment ID"
//	@Param			request	body		WriteOffRequest	true	"Write-off"
//	@Success		200		{object}	StockChangeResponse
//	@Failure		404		{object}	errhttp.ErrorResponse
//	@Failure		409		{object}	errhttp.ErrorResponse	"Assignment closed"
//	@Failure		422		{object}	errhttp.ErrorResponse
//	@Router			/inventory/assignments/{id}/write-off [post]
func (h *PostWriteOffHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	person, ok := responsible(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[WriteOffRequest](w, r)
	if !ok {
		return
	}

	res, err := h.svc.Stock.WriteOffAssignment(r.Context(), appsvcs.WriteOffCommand{
		AssignmentID:        id,
		Status:              models.AssignmentStatus(req.Status),
		ResponsiblePersonID: person,
		Notes:               emptyToNil(req.Notes),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssignmentChange(res))
}

// PersonAssignmentsHandler handles GET /inventory/persons/{id}/assignments.
type PersonAssignmentsHandler struct{ base }

// NewPersonAssignmentsHandler returns a PersonAssignmentsHandler.
func NewPersonAssignmentsHandler(svc *appsvcs.Services, opts Options) *PersonAssignmentsHandler {
	return &PersonAssignmentsHandler{base{svc, opts}}
}

// Execute lists what a person currently holds.
//
//	@Summary	Active assignments of a person
//	@Tags		assignments
//	@Produce	json
//	@Param		id	path	int	true	"Person ID"
//	@Success	200	{array}	AssignmentResponse
//	@Failure	404	{object}	errhttp.ErrorResponse
//	@Router		/inventory/persons/{id}/assignments [get]
func (h *PersonAssignmentsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	as, err := h.svc.Catalog.GetActiveAssignmentsForPerson(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssignmentResponses(as))
}
