package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dormdigest/internal/model"
	"dormdigest/internal/service"
)

type UserHandler struct {
	svc      *service.UserService
	sessions *service.SessionService
}

// SessionReq is posted by the trusted SSO front once it has authenticated
// the caller's email.
type SessionReq struct {
	Email string `json:"email" binding:"required"`
}

type PrivilegeReq struct {
	Privilege int `json:"user_privilege"`
}

func NewUserHandler(svc *service.UserService, sessions *service.SessionService) *UserHandler {
	return &UserHandler{svc: svc, sessions: sessions}
}

// Login issues a session for an email vouched for by the SSO front and
// makes sure a user row exists for it.
func (h *UserHandler) Login(c *gin.Context) {
	var req SessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	ctx := c.Request.Context()
	user, err := h.svc.EnsureUser(ctx, req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.sessions.IssueSession(ctx, user.Email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": token, "user": user})
}

func (h *UserHandler) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if err := h.sessions.RevokeSession(c.Request.Context(), token); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPrivilege(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req PrivilegeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}

	err := h.svc.SetPrivilege(c.Request.Context(), targetID, model.UserPrivilege(req.Privilege), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
