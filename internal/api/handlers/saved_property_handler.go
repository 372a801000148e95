package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PicassoPreem-86/subletly-sub000/internal/api/middleware"
	"github.com/PicassoPreem-86/subletly-sub000/internal/services"
)

// SavedPropertyHandler handles bookmark endpoints.
type SavedPropertyHandler struct {
	savedService services.ISavedPropertyService
}

// NewSavedPropertyHandler creates a new SavedPropertyHandler.
func NewSavedPropertyHandler(savedService services.ISavedPropertyService) *SavedPropertyHandler {
	return &SavedPropertyHandler{savedService: savedService}
}

// SaveRequest is the request body for POST /v1/saved-properties.
type SaveRequest struct {
	PropertyID string `json:"propertyId" binding:"required,uuid"`
}

// Save handles POST /v1/saved-properties.
func (h *SavedPropertyHandler) Save(c *gin.Context) {
	var req SaveRequest
	if !bindJSON(c, &req) {
		return
	}

	saved, err := h.savedService.Save(c.Request.Context(), middleware.CallerID(c), req.PropertyID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		case errors.Is(err, services.ErrAlreadySaved):
			c.JSON(http.StatusConflict, gin.H{"error": "Property already saved"})
		default:
			log.Printf("Error saving property %s: %v", req.PropertyID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save property"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// Unsave handles DELETE /v1/saved-properties/:propertyId.
func (h *SavedPropertyHandler) Unsave(c *gin.Context) {
	err := h.savedService.Unsave(c.Request.Context(), middleware.CallerID(c), c.Param("propertyId"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Saved property not found"})
			return
		}
		log.Printf("Error unsaving property %s: %v", c.Param("propertyId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsave property"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// List handles GET /v1/saved-properties.
func (h *SavedPropertyHandler) List(c *gin.Context) {
	saved, err := h.savedService.List(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		log.Printf("Error listing saved properties: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list saved properties"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": saved})
}
