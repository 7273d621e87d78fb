package group

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitlyapp/splitly/pkg/middleware"
	"github.com/splitlyapp/splitly/pkg/response"
)

// Handler handles HTTP requests for groups.
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints. All of them require an
// authenticated caller; the middleware is mounted by the parent router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.ListMine)
	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/members", h.AddMember)
	r.Delete("/{id}/members/{userId}", h.RemoveMember)

	return r
}

// Create handles POST /groups
// @Summary      Create a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group to create"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.Create(r.Context(), actorID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidName) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create group")
		return
	}

	response.JSON(w, http.StatusCreated, group.ToResponse())
}

// ListMine handles GET /groups
// @Summary      List the caller's groups
// @Tags         groups
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]MyGroupResponse}
// @Failure      401 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups [get]
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groups, err := h.service.ListMyGroups(r.Context(), actorID)
	if err != nil {
		response.InternalError(w, "Failed to list groups")
		return
	}

	out := make([]*MyGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.ToResponse())
	}

	response.JSON(w, http.StatusOK, out)
}

// GetByID handles GET /groups/{id}
// @Summary      Get a group with its members
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	groupID := chi.URLParam(r, "id")

	group, members, err := h.service.GetByIDWithMembers(r.Context(), groupID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrForbidden):
			response.Forbidden(w, err.Error())
		default:
			response.InternalError(w, "Failed to get group")
		}
		return
	}

	resp := group.ToResponse()
	resp.Members = make([]*MemberResponse, 0, len(members))
	for _, m := range members {
		resp.Members = append(resp.Members, m.ToResponse())
	}

	response.JSON(w, http.StatusOK, resp)
}

// AddMember handles POST /groups/{id}/members
// @Summary      Add a member to a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body AddMemberRequest true "Member to add"
// @Success      201 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	groupID := chi.URLParam(r, "id")

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.UserID == "" {
		response.BadRequest(w, "user_id is required")
		return
	}

	if err := h.service.AddMember(r.Context(), groupID, actorID, req); err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrUserNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrForbidden):
			response.Forbidden(w, err.Error())
		case errors.Is(err, ErrMemberAlreadyExists):
			response.Conflict(w, err.Error())
		case errors.Is(err, ErrInvalidRole):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to add member")
		}
		return
	}

	response.JSON(w, http.StatusCreated, map[string]string{"message": "Member added successfully"})
}

// RemoveMember handles DELETE /groups/{id}/members/{userId}
// @Summary      Remove a member from a group
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        userId path string true "User ID"
// @Success      200 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /groups/{id}/members/{userId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	groupID := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userId")

	if err := h.service.RemoveMember(r.Context(), groupID, actorID, userID); err != nil {
		switch {
		case errors.Is(err, ErrNotAMember):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrForbidden):
			response.Forbidden(w, err.Error())
		case errors.Is(err, ErrMemberHasExpenses):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to remove member")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Member removed successfully"})
}
