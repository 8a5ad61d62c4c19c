package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-server/models"
	"hostel-server/services"
)

// RegisterClientRoutes registers client registry routes
func RegisterClientRoutes(rg *gin.RouterGroup, svc *services.ClientService) {
	h := &clientHandler{svc: svc}
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
}

type clientHandler struct {
	svc *services.ClientService
}

func (h *clientHandler) list(c *gin.Context) {
	clients, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func (h *clientHandler) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	client, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (h *clientHandler) create(c *gin.Context) {
	var req models.ClientRequest
	if !bind(c, &req) {
		return
	}
	client, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Client registered",
		"client":   client,
		"redirect": "/clients",
	})
}

func (h *clientHandler) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.ClientRequest
	if !bind(c, &req) {
		return
	}
	client, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Client updated",
		"client":   client,
		"redirect": "/clients",
	})
}
