package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"tripsplit/internal/middleware"
	"tripsplit/internal/service"
)

// CalendarHandler serves the merged group calendar.
type CalendarHandler struct {
	calendar *service.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(calendar *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

type createEventRequest struct {
	Name     string `json:"name" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Location string `json:"location"`
}

// AddEvent handles POST /api/groups/:groupId/events.
func (h *CalendarHandler) AddEvent(c *gin.Context) {
	var req createEventRequest
	if !bindJSON(c, &req) {
		return
	}

	day, _ := time.Parse("2006-01-02", req.Date)
	event, err := h.calendar.AddEvent(c.Request.Context(), c.Param("groupId"), middleware.UserID(c), service.EventInput{
		Name:     req.Name,
		Date:     day,
		Location: req.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "event added", gin.H{"id": event.ID})
}

// List handles GET /api/groups/:groupId/calendar.
func (h *CalendarHandler) List(c *gin.Context) {
	entries, err := h.calendar.List(c.Request.Context(), c.Param("groupId"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "calendar", entries)
}
