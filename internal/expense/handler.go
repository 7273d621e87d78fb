package expense

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitlyapp/splitly/internal/expense/split"
	"github.com/splitlyapp/splitly/pkg/middleware"
	"github.com/splitlyapp/splitly/pkg/response"
)

// isSplitValidationError reports whether err is one of the split package's
// input validation failures.
func isSplitValidationError(err error) bool {
	for _, target := range []error{
		split.ErrNoParticipants,
		split.ErrInvalidPercentages,
		split.ErrNonPositiveAmount,
		split.ErrNegativeAmount,
		split.ErrNonPositiveSplit,
		split.ErrMissingPercentage,
		split.ErrMissingExactAmount,
		split.ErrPercentageOutOfRange,
		split.ErrDuplicateParticipant,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Handler handles HTTP requests for expenses.
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints. All of them require an
// authenticated caller; the middleware is mounted by the parent router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/mine", h.ListMine)
	r.Get("/group/{groupID}", h.ListByGroup)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)

	return r
}

// Create handles POST /expenses
// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense to record"
// @Success      201 {object} response.APIResponse{data=CreateExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.GroupID == "" {
		response.BadRequest(w, "group_id is required")
		return
	}

	id, err := h.service.Create(r.Context(), actorID, req)
	if err != nil {
		var notMember *NotAMemberError
		var mismatch *SplitMismatchError
		switch {
		case errors.As(err, &notMember):
			response.Forbidden(w, err.Error())
		case errors.As(err, &mismatch):
			response.UnprocessableEntity(w, err.Error())
		case errors.Is(err, ErrMissingPayer),
			errors.Is(err, ErrInvalidAmount),
			errors.Is(err, ErrNoSplits),
			errors.Is(err, ErrInvalidSplit),
			isSplitValidationError(err):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to create expense")
		}
		return
	}

	response.JSON(w, http.StatusCreated, CreateExpenseResponse{ID: id})
}

// GetByID handles GET /expenses/{id}
// @Summary      Get an expense with its splits
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      401 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	id := chi.URLParam(r, "id")

	expense, splits, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get expense")
		return
	}

	resp := expense.ToResponse()
	resp.Splits = make([]*SplitResponse, 0, len(splits))
	for _, s := range splits {
		resp.Splits = append(resp.Splits, s.ToResponse())
	}

	response.JSON(w, http.StatusOK, resp)
}

// ListByGroup handles GET /expenses/group/{groupID}
// @Summary      List a group's expenses
// @Tags         expenses
// @Produce      json
// @Param        groupID path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      401 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /expenses/group/{groupID} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	groupID := chi.URLParam(r, "groupID")

	expenses, err := h.service.ListByGroup(r.Context(), groupID)
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	out := make([]*ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, e.ToResponse())
	}

	response.JSON(w, http.StatusOK, out)
}

// ListMine handles GET /expenses/mine
// @Summary      List the caller's splits across all groups
// @Tags         expenses
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]UserSplitResponse}
// @Failure      401 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /expenses/mine [get]
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	results, err := h.service.ListUserSplits(r.Context(), actorID)
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	out := make([]*UserSplitResponse, 0, len(results))
	for _, u := range results {
		out = append(out, u.ToResponse())
	}

	response.JSON(w, http.StatusOK, out)
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id, actorID); err != nil {
		switch {
		case errors.Is(err, ErrExpenseNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrForbidden):
			response.Forbidden(w, err.Error())
		default:
			response.InternalError(w, "Failed to delete expense")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}
