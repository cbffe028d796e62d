package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"tripsplit/internal/apperr"
	"tripsplit/internal/middleware"
	"tripsplit/internal/service"
)

// GroupHandler serves group CRUD and roster management.
type GroupHandler struct {
	groups *service.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type createGroupRequest struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	StartDate    string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	MemberEmails []string `json:"memberEmails" validate:"dive,email"`
}

type renameGroupRequest struct {
	Name string `json:"name" validate:"required"`
}

type updateMembersRequest struct {
	MemberEmails []string `json:"memberEmails" validate:"required,dive,email"`
}

// Create handles POST /api/groups.
func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	if end.Before(start) {
		respondError(c, apperr.Invalid("endDate must not be before startDate"))
		return
	}

	detail, err := h.groups.Create(c.Request.Context(), middleware.UserID(c), service.GroupInput{
		Name:         req.Name,
		Description:  req.Description,
		StartDate:    start,
		EndDate:      end,
		MemberEmails: req.MemberEmails,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "group created", detail)
}

// Get handles GET /api/groups/:groupId.
func (h *GroupHandler) Get(c *gin.Context) {
	detail, err := h.groups.Get(c.Request.Context(), c.Param("groupId"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "group", detail)
}

// Rename handles PATCH /api/groups/:groupId.
func (h *GroupHandler) Rename(c *gin.Context) {
	var req renameGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.groups.Rename(c.Request.Context(), c.Param("groupId"), middleware.UserID(c), req.Name); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "group renamed", nil)
}

// UpdateMembers handles PUT /api/groups/:groupId/members.
func (h *GroupHandler) UpdateMembers(c *gin.Context) {
	var req updateMembersRequest
	if !bindJSON(c, &req) {
		return
	}

	detail, err := h.groups.UpdateMembers(c.Request.Context(), c.Param("groupId"), middleware.UserID(c), req.MemberEmails)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "members updated", detail)
}

// List handles GET /api/groups.
func (h *GroupHandler) List(c *gin.Context) {
	summaries, err := h.groups.ListByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "groups", summaries)
}
