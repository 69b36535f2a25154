package handler

import (
	"net/http"

	"ticket-ledger/internal/model"
	"ticket-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

type MarketplaceHandler struct {
	service service.MarketplaceService
}

func NewMarketplaceHandler(service service.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{service: service}
}

func (h *MarketplaceHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1/organizers/:organizer/events/:event_id", CallerIdentity())
	{
		router.POST("tickets/:ticket_id/listing", h.List)
		router.DELETE("tickets/:ticket_id/listing", h.Delist)
		router.POST("tickets/:ticket_id/purchase", h.Purchase)
		router.GET("listings", h.Listings)
	}
}

type ListForResaleRequest struct {
	Price int64 `json:"price"`
}

func (h *MarketplaceHandler) List(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	ticketID, ok := ParamInt64(c, "ticket_id")
	if !ok {
		return
	}
	var req ListForResaleRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	err := h.service.ListForResale(c, Caller(c), c.Param("organizer"), eventID, ticketID, req.Price)
	if err != nil {
		handleError(c, err, "ListForResale")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "listed"})
}

func (h *MarketplaceHandler) Delist(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	ticketID, ok := ParamInt64(c, "ticket_id")
	if !ok {
		return
	}
	err := h.service.RemoveFromSale(c, Caller(c), c.Param("organizer"), eventID, ticketID)
	if err != nil {
		handleError(c, err, "RemoveFromSale")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "delisted"})
}

func (h *MarketplaceHandler) Purchase(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	ticketID, ok := ParamInt64(c, "ticket_id")
	if !ok {
		return
	}
	ticket, err := h.service.BuyResaleTicket(c, Caller(c), c.Param("organizer"), eventID, ticketID)
	if err != nil {
		handleError(c, err, "BuyResaleTicket")
		return
	}
	c.JSON(http.StatusOK, ticket.Response())
}

func (h *MarketplaceHandler) Listings(c *gin.Context) {
	eventID, ok := ParamInt64(c, "event_id")
	if !ok {
		return
	}
	tickets, err := h.service.Listings(c, c.Param("organizer"), eventID)
	if err != nil {
		handleError(c, err, "Listings")
		return
	}

	responses := make([]model.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		responses = append(responses, t.Response())
	}
	c.JSON(http.StatusOK, responses)
}
