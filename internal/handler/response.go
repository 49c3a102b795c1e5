package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dormdigest/internal/pkg"
)

var statusByCode = map[string]int{
	"validation":    http.StatusBadRequest,
	"reference":     http.StatusUnprocessableEntity,
	"conflict":      http.StatusConflict,
	"authorization": http.StatusForbidden,
	"not_found":     http.StatusNotFound,
	"expired":       http.StatusUnauthorized,
	"integrity":     http.StatusInternalServerError,
	"internal":      http.StatusInternalServerError,
}

// fail writes err as {"code","msg"} with the status of its taxonomy entry.
// Internal errors keep their detail out of the response.
func fail(c *gin.Context, err error) {
	code := pkg.Code(err)
	msg := err.Error()
	if code == "internal" {
		msg = "internal error"
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(statusByCode[code], gin.H{"code": code, "msg": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "validation", "msg": msg})
}

func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func currentUserID(c *gin.Context) uint64 {
	return c.GetUint64("user_id")
}
