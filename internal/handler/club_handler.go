package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dormdigest/internal/model"
	"dormdigest/internal/service"
)

type ClubHandler struct {
	svc   *service.ClubService
	users *service.UserService
}

type ClubCreateReq struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbrev"`
	ExecEmail    string `json:"exec_email"`
}

type MemberReq struct {
	UserID    uint64 `json:"user_id" binding:"required"`
	Privilege int    `json:"member_privilege"`
}

func NewClubHandler(svc *service.ClubService, users *service.UserService) *ClubHandler {
	return &ClubHandler{svc: svc, users: users}
}

func (h *ClubHandler) Create(c *gin.Context) {
	var req ClubCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	club, err := h.svc.CreateClub(c.Request.Context(), req.Name, req.Abbreviation, req.ExecEmail)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, club)
}

func (h *ClubHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	list, err := h.svc.ListClubs(c.Request.Context(), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// AddMember is open to site admins and officers of the club.
func (h *ClubHandler) AddMember(c *gin.Context) {
	clubID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req MemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	ctx := c.Request.Context()
	allowed, err := h.users.IsAuthorized(ctx, currentUserID(c), &clubID)
	if err != nil {
		fail(c, err)
		return
	}
	if !allowed {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "authorization", "msg": "only officers may add members"})
		return
	}

	m, err := h.svc.AddMembership(ctx, req.UserID, clubID, model.MemberPrivilege(req.Privilege))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// Leave removes the caller from the club.
func (h *ClubHandler) Leave(c *gin.Context) {
	clubID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.LeaveClub(c.Request.Context(), currentUserID(c), clubID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *ClubHandler) Get(c *gin.Context) {
	clubID, ok := paramID(c, "id")
	if !ok {
		return
	}
	club, err := h.svc.GetClub(c.Request.Context(), clubID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, club)
}

func (h *ClubHandler) Members(c *gin.Context) {
	clubID, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Members(c.Request.Context(), clubID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// Mine lists the caller's memberships.
func (h *ClubHandler) Mine(c *gin.Context) {
	list, err := h.svc.Memberships(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}
