package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-server/middleware"
	"hostel-server/models"
	"hostel-server/services"
)

type authHandler struct {
	svc  *services.AuthService
	opts Options
}

// login handles worker authentication
func (h *authHandler) login(c *gin.Context) {
	var req models.LoginRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.RUT, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.SessionCookie, result.Token, int(h.opts.SessionTTL.Seconds()), "/", "", h.opts.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{
		"message":              "Login successful",
		"token":                result.Token,
		"expires_at":           result.Session.ExpiresAt,
		"worker":               result.Worker,
		"must_change_password": result.Worker.MustChangePassword,
		"redirect":             "/",
	})
}

// logout ends the current session
func (h *authHandler) logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := h.svc.Logout(c.Request.Context(), sess.ID); err != nil {
		respondError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.SessionCookie, "", -1, "/", "", h.opts.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Logged out",
		"redirect": "/login",
	})
}

func (h *authHandler) changePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !bind(c, &req) {
		return
	}
	sess := middleware.CurrentSession(c)
	if err := h.svc.ChangePassword(c.Request.Context(), sess.WorkerID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

func (h *authHandler) me(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	worker, err := h.svc.Worker(c.Request.Context(), sess.WorkerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"worker":  worker,
		"session": sess,
	})
}
