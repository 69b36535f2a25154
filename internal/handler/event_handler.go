package handler

import (
	"net/http"

	"ticket-ledger/internal/model"
	"ticket-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service service.RegistryService
}

func NewEventHandler(service service.RegistryService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1", CallerIdentity())
	{
		router.POST("events", h.Create)
		router.GET("organizers/:organizer/events", h.List)
		router.GET("organizers/:organizer/events/:event_id", h.Get)
		router.PUT("organizers/:organizer/events/:event_id", h.Update)
		router.DELETE("organizers/:organizer/events/:event_id", h.Cancel)
		router.GET("organizers/:organizer/events/:event_id/availability", h.Availability)
	}
}

// CreateEventRequest is the organizer's creation payload. The date is a
// logical block height.
type CreateEventRequest struct {
	Name          string       `json:"name" binding:"required"`
	Description   string       `json:"description" binding:"required"`
	Venue         string       `json:"venue" binding:"required"`
	EventHeight   model.Height `json:"event_height" binding:"required"`
	BasePrice     int64        `json:"base_price" binding:"required"`
	Capacity      int          `json:"capacity" binding:"required"`
	ResaleAllowed bool         `json:"resale_allowed"`
	ResaleCeiling int64        `json:"resale_ceiling"`
}

type UpdateEventRequest struct {
	Name          string       `json:"name" binding:"required"`
	Description   string       `json:"description" binding:"required"`
	Venue         string       `json:"venue" binding:"required"`
	EventHeight   model.Height `json:"event_height" binding:"required"`
	ResaleAllowed bool         `json:"resale_allowed"`
	ResaleCeiling int64        `json:"resale_ceiling"`
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	created, err := h.service.CreateEvent(c, Caller(c), model.CreateEventParams{
		Name:          req.Name,
		Description:   req.Description,
		Venue:         req.Venue,
		EventHeight:   req.EventHeight,
		BasePrice:     req.BasePrice,
		Capacity:      req.Capacity,
		ResaleAllowed: req.ResaleAllowed,
		ResaleCeiling: req.ResaleCeiling,
	})
	if err != nil {
		handleError(c, err, "CreateEvent")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.ListEvents(c, c.Param("organizer"))
	if err != nil {
		handleError(c, err, "ListEvents")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Get(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	event, err := h.service.GetEvent(c, c.Param("organizer"), eventID)
	if err != nil {
		handleError(c, err, "GetEvent")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Update(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	updated, err := h.service.UpdateEventInfo(c, Caller(c), c.Param("organizer"), eventID, model.UpdateEventParams{
		Name:          req.Name,
		Description:   req.Description,
		Venue:         req.Venue,
		EventHeight:   req.EventHeight,
		ResaleAllowed: req.ResaleAllowed,
		ResaleCeiling: req.ResaleCeiling,
	})
	if err != nil {
		handleError(c, err, "UpdateEventInfo")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) Cancel(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	if err := h.service.CancelEvent(c, Caller(c), c.Param("organizer"), eventID); err != nil {
		handleError(c, err, "CancelEvent")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *EventHandler) Availability(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	remaining, err := h.service.Availability(c, c.Param("organizer"), eventID)
	if err != nil {
		handleError(c, err, "Availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining": remaining})
}
