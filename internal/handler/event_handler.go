package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dormdigest/internal/model"
	"dormdigest/internal/pkg"
	"dormdigest/internal/service"
)

type EventHandler struct {
	svc         *service.EventService
	users       *service.UserService
	feedDomain  string
	defaultSize int
}

// CreateEventReq mirrors what the ingestion side extracts from a message.
// Dates are YYYY-MM-DD and times HH:MM[:SS]; empty means unset.
type CreateEventReq struct {
	ClubID          *uint64 `json:"club_id"`
	Title           string  `json:"title"`
	Location        string  `json:"location"`
	Link            string  `json:"link"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	Tags            []int   `json:"tags"`
	Description     string  `json:"desc"`
	DescriptionHTML string  `json:"desc_html"`
}

func NewEventHandler(svc *service.EventService, users *service.UserService, feedDomain string) *EventHandler {
	return &EventHandler{svc: svc, users: users, feedDomain: feedDomain, defaultSize: 20}
}

func (r *CreateEventReq) toInput() (service.EventInput, error) {
	in := service.EventInput{
		ClubID:               r.ClubID,
		Title:                r.Title,
		Location:             r.Location,
		CTALink:              r.Link,
		Tags:                 r.Tags,
		DescriptionPlaintext: r.Description,
		DescriptionHTML:      r.DescriptionHTML,
	}
	var err error
	if in.StartDate, err = model.ParseDate(r.StartDate); err != nil {
		return in, err
	}
	if in.EndDate, err = model.ParseDate(r.EndDate); err != nil {
		return in, err
	}
	if in.StartTime, err = model.ParseClock(r.StartTime); err != nil {
		return in, err
	}
	if in.EndTime, err = model.ParseClock(r.EndTime); err != nil {
		return in, err
	}
	return in, nil
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	in, err := req.toInput()
	if err != nil {
		fail(c, err)
		return
	}

	id, err := h.svc.CreateEvent(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// filter reads club_id, approved, page and size. Unapproved events are
// listed only to callers who may moderate them.
func (h *EventHandler) filter(c *gin.Context) (service.EventFilter, bool) {
	f := service.EventFilter{ApprovedOnly: true}
	if s := c.Query("club_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			badRequest(c, "invalid club_id")
			return f, false
		}
		f.ClubID = &id
	}

	if c.Query("approved") == "false" {
		allowed, err := h.users.IsAuthorized(c.Request.Context(), currentUserID(c), f.ClubID)
		if err != nil {
			fail(c, err)
			return f, false
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "authorization", "msg": "pending events are visible to moderators only"})
			return f, false
		}
		f.ApprovedOnly = false
	}

	page, err1 := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, err2 := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(h.defaultSize)))
	if err1 != nil || err2 != nil || page <= 0 || size <= 0 || size > 100 {
		badRequest(c, "invalid page or size")
		return f, false
	}
	f.Offset = (page - 1) * size
	f.Limit = size
	return f, true
}

func (h *EventHandler) List(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	list, err := h.svc.ListSummaries(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *EventHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ev, err := h.svc.Full(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !h.visible(c, ev.Approved, ev.ClubID) {
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *EventHandler) Serialized(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	full, err := h.svc.Full(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	if !h.visible(c, full.Approved, full.ClubID) {
		return
	}
	ev, err := h.svc.Serialize(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// visible hides pending events from everyone but moderators, reporting them
// as missing.
func (h *EventHandler) visible(c *gin.Context, approved bool, clubID *uint64) bool {
	if approved {
		return true
	}
	allowed, err := h.users.IsAuthorized(c.Request.Context(), currentUserID(c), clubID)
	if err != nil {
		fail(c, err)
		return false
	}
	if !allowed {
		fail(c, pkg.NotFoundf("event"))
		return false
	}
	return true
}

func (h *EventHandler) Approve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Approve(c.Request.Context(), id, currentUserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteEvent(c.Request.Context(), id, currentUserID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// Calendar renders approved events as an iCalendar feed.
func (h *EventHandler) Calendar(c *gin.Context) {
	f := service.EventFilter{ApprovedOnly: true, Limit: 500}
	if s := c.Query("club_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			badRequest(c, "invalid club_id")
			return
		}
		f.ClubID = &id
	}

	list, err := h.svc.Feed(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	items := make([]pkg.CalendarItem, len(list))
	for i, ev := range list {
		items[i] = pkg.CalendarItem{
			ID:          ev.ID,
			Title:       ev.Name,
			Location:    ev.Location,
			Link:        ev.Link,
			Description: ev.DescriptionText,
			StartDate:   ev.StartDate,
			EndDate:     ev.EndDate,
			StartTime:   ev.StartTime,
			EndTime:     ev.EndTime,
		}
	}
	body, err := pkg.BuildCalendar(h.feedDomain, items, time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
