package handler

import (
	"net/http"

	"ticket-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service service.TicketingService
}

func NewTicketHandler(service service.TicketingService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1", CallerIdentity())
	{
		events := router.Group("organizers/:organizer/events/:event_id")
		events.POST("tickets", h.Buy)
		events.GET("tickets/:ticket_id", h.Get)
		events.POST("tickets/:ticket_id/transfer", h.Transfer)
		events.POST("tickets/:ticket_id/validate", h.Validate)
		events.POST("tickets/:ticket_id/check-in", h.CheckIn)
		events.GET("tickets/:ticket_id/valid", h.Valid)
		events.POST("tickets/:ticket_id/verify", h.Verify)

		router.GET("owners/:owner/organizers/:organizer/events/:event_id/tickets", h.TicketsOf)
	}
}

type TransferTicketRequest struct {
	Recipient string `json:"recipient" binding:"required"`
}

type AuthCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// Buy mints the next ticket. The response carries the authentication code;
// it is not retrievable afterwards.
func (h *TicketHandler) Buy(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	ticket, code, err := h.service.BuyTicket(c, Caller(c), c.Param("organizer"), eventID)
	if err != nil {
		handleError(c, err, "BuyTicket")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"ticket":    ticket.Response(),
		"auth_code": code,
	})
}

func (h *TicketHandler) Get(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	ticketID, ok := ParamInt64(c, "ticket_id")
	if !ok {
		return
	}
	ticket, err := h.service.GetTicket(c, c.Param("organizer"), eventID, ticketID)
	if err != nil {
		handleError(c, err, "GetTicket")
		return
	}
	c.JSON(http.StatusOK, ticket.Response())
}

func (h *TicketHandler) Transfer(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	ticketID, ok := ParamInt64(c, "ticket_id")
	if !ok {
		return
	}
	var req TransferTicketRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	err := h.service.TransferTicket(c, Caller(c), c.Param("organizer"), eventID, ticketID, req.Recipient)
	if err != nil {
		handleError(c, err, "TransferTicket")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "transferred"})
}

func (h *TicketHandler) Validate(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	ticketID, ok := ParamInt64(c, "ticket_id")
	if !ok {
		return
	}
	var req AuthCodeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	err := h.service.ValidateTicket(c, Caller(c), c.Param("organizer"), eventID, ticketID, req.Code)
	if err != nil {
		handleError(c, err, "ValidateTicket")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "redeemed"})
}

func (h *TicketHandler) CheckIn(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	ticketID, ok := ParamInt64(c, "ticket_id")
	if !ok {
		return
	}
	err := h.service.CheckInAttendee(c, Caller(c), c.Param("organizer"), eventID, ticketID)
	if err != nil {
		handleError(c, err, "CheckInAttendee")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "checked_in"})
}

func (h *TicketHandler) Valid(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	ticketID, ok := ParamInt64(c, "ticket_id")
	if !ok {
		return
	}
	valid, err := h.service.IsTicketValid(c, c.Param("organizer"), eventID, ticketID)
	if err != nil {
		handleError(c, err, "IsTicketValid")
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

func (h *TicketHandler) Verify(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	ticketID, ok := ParamInt64(c, "ticket_id")
	if !ok {
		return
	}
	var req AuthCodeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	match, err := h.service.VerifyAuthCode(c, c.Param("organizer"), eventID, ticketID, req.Code)
	if err != nil {
		handleError(c, err, "VerifyAuthCode")
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": match})
}

func (h *TicketHandler) TicketsOf(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	ids, err := h.service.TicketsOf(c, c.Param("owner"), c.Param("organizer"), eventID)
	if err != nil {
		handleError(c, err, "TicketsOf")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket_ids": ids})
}
