package routes

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hostel-server/middleware"
	"hostel-server/models"
	"hostel-server/services"
)

// RegisterReservationRoutes registers reservation and stay routes
func RegisterReservationRoutes(rg *gin.RouterGroup, h *reservationHandler) {
	rg.GET("/new", h.form)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.POST("/:id/cancel", h.cancel)
	rg.POST("/:id/check-in", h.checkIn)
	rg.POST("/:id/check-out", h.checkOut)
	rg.GET("/:id/voucher", h.voucher)
}

type reservationHandler struct {
	svc        *services.ReservationService
	stays      *services.StayService
	hostelName string
}

// reservationView adds the computed stay value to a reservation.
type reservationView struct {
	models.Reservation
	TotalValue decimal.Decimal `json:"total_value"`
}

func viewOf(res models.Reservation) reservationView {
	return reservationView{Reservation: res, TotalValue: res.TotalValue()}
}

// home is the landing page data: the logged-in worker, every reservation and the form choices.
func (h *reservationHandler) home(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.svc.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	form, err := h.svc.FormOptions(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]reservationView, len(list))
	for i := range list {
		views[i] = viewOf(list[i])
	}
	sess := middleware.CurrentSession(c)
	c.JSON(http.StatusOK, gin.H{
		"worker": gin.H{
			"id":   sess.WorkerID,
			"name": sess.WorkerName,
		},
		"reservations": views,
		"form":         form,
	})
}

func (h *reservationHandler) form(c *gin.Context) {
	form, err := h.svc.FormOptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

func (h *reservationHandler) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": viewOf(*res)})
}

func (h *reservationHandler) create(c *gin.Context) {
	var req models.ReservationRequest
	if !bind(c, &req) {
		return
	}
	sess := middleware.CurrentSession(c)
	res, err := h.svc.Create(c.Request.Context(), sess.WorkerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Reservation created",
		"reservation": viewOf(*res),
		"redirect":    "/",
	})
}

func (h *reservationHandler) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.ReservationRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Reservation updated",
		"reservation": viewOf(*res),
		"redirect":    "/",
	})
}

func (h *reservationHandler) cancel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Reservation cancelled",
		"reservation": viewOf(*res),
		"redirect":    "/",
	})
}

// checkIn accepts JSON or a multipart form carrying an optional "document_photo" file.
func (h *reservationHandler) checkIn(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.StayRequest
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}

	var photo io.Reader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if fh, err := c.FormFile("document_photo"); err == nil {
			f, err := fh.Open()
			if err != nil {
				respondError(c, fmt.Errorf("open upload: %w", err))
				return
			}
			defer f.Close()
			photo = f
		} else if err != http.ErrMissingFile {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid upload",
				"message": err.Error(),
			})
			return
		}
	}

	in, err := h.stays.CheckIn(c.Request.Context(), id, req.QRScanned, photo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Guest checked in", "check_in": in})
}

func (h *reservationHandler) checkOut(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.StayRequest
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	out, err := h.stays.CheckOut(c.Request.Context(), id, req.QRScanned)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Guest checked out", "check_out": out})
}

func (h *reservationHandler) voucher(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.RenderVoucher(&buf, res, h.hostelName); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="reservation-%d.pdf"`, res.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
