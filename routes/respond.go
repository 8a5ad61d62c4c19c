package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"hostel-server/models"
	"hostel-server/repository"
	"hostel-server/services"
	"hostel-server/utils"
)

type coded interface {
	Code() string
}

type normalizer interface {
	Normalize()
}

// bind decodes the request into dst and runs the struct validation.
// It writes the error response and returns false when either fails.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBind(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return false
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	if err := utils.Validate.Struct(dst); err != nil {
		if fields := utils.FieldMessages(err); fields != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "Validation failed",
				"fields": fields,
			})
			return false
		}
		respondError(c, err)
		return false
	}
	return true
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid ID",
			"message": "The ID in the path must be a positive number",
		})
		return 0, false
	}
	return uint(id), true
}

// respondError maps service and storage errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var (
		fields    services.FieldErrors
		rules     models.ValidationErrors
		rule      *services.RuleError
		duplicate *repository.DuplicateError
		single    coded
	)

	switch {
	case errors.As(err, &fields):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Validation failed",
			"fields": map[string]string(fields),
		})
	case errors.As(err, &rules):
		violations := make([]gin.H, 0, len(rules))
		for _, e := range rules {
			v := gin.H{"message": e.Error()}
			if cd, ok := e.(coded); ok {
				v["code"] = cd.Code()
			}
			violations = append(violations, v)
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Reservation rejected",
			"message":    rules.Error(),
			"violations": violations,
		})
	case errors.As(err, &rule):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   rule.Code,
			"message": rule.Message,
		})
	case errors.As(err, &single):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   single.Code(),
			"message": err.Error(),
		})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Duplicate " + duplicate.Field,
			"message": duplicate.Error(),
			"fields":  gin.H{duplicate.Field: duplicate.Error()},
		})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "The requested record does not exist",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Invalid credentials",
			"message": "Incorrect RUT or password",
		})
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("❌ Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "An unexpected error occurred",
		})
	}
}
