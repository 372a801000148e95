package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/PicassoPreem-86/subletly-sub000/internal/api/middleware"
	"github.com/PicassoPreem-86/subletly-sub000/internal/config"
	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
	"github.com/PicassoPreem-86/subletly-sub000/internal/services"
	"github.com/PicassoPreem-86/subletly-sub000/internal/storage"
	"github.com/PicassoPreem-86/subletly-sub000/internal/tasks"
)

// PropertyHandler handles listing endpoints.
type PropertyHandler struct {
	cfg             *config.Config
	propertyService services.IPropertyService
	storageService  storage.IObjectStorage
	taskClient      IAsynqClient
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(cfg *config.Config, propertyService services.IPropertyService, storageService storage.IObjectStorage, taskClient IAsynqClient) *PropertyHandler {
	return &PropertyHandler{
		cfg:             cfg,
		propertyService: propertyService,
		storageService:  storageService,
		taskClient:      taskClient,
	}
}

// Search handles GET /v1/properties.
func (h *PropertyHandler) Search(c *gin.Context) {
	params := services.SearchParams{SortBy: c.Query("sort")}

	if city := strings.TrimSpace(c.Query("city")); city != "" {
		params.City = &city
	}
	if v := c.Query("minPrice"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			params.MinPrice = &n
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			params.MaxPrice = &n
		}
	}
	if v := c.Query("bedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			params.Bedrooms = &n
		}
	}
	if v := c.Query("bathrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			params.Bathrooms = &n
		}
	}
	if v := c.Query("availableFrom"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			params.AvailableFrom = &t
		}
	}
	if v := c.DefaultQuery("limit", "20"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			params.Offset = n
		}
	}

	properties, total, err := h.propertyService.Search(c.Request.Context(), params)
	if err != nil {
		log.Printf("Error searching properties: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search properties"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": properties, "total": total})
}

// GetByID handles GET /v1/properties/:id. Each fetch counts one view.
func (h *PropertyHandler) GetByID(c *gin.Context) {
	property, err := h.propertyService.FindByID(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		log.Printf("Error retrieving property %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve property"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property})
}

// PropertyRequest is the request body for creating or updating a listing.
type PropertyRequest struct {
	Title         string                `json:"title" binding:"required,max=255"`
	Description   string                `json:"description" binding:"max=10000"`
	Address       string                `json:"address" binding:"required,max=255"`
	City          string                `json:"city" binding:"required,max=100"`
	State         string                `json:"state" binding:"max=100"`
	Zip           string                `json:"zip" binding:"max=20"`
	Price         int64                 `json:"price" binding:"required,gt=0"`
	Bedrooms      int                   `json:"bedrooms" binding:"gte=0"`
	Bathrooms     int                   `json:"bathrooms" binding:"gte=0"`
	Amenities     []string              `json:"amenities"`
	AvailableFrom *time.Time            `json:"availableFrom"`
	AvailableTo   *time.Time            `json:"availableTo"`
	Status        models.PropertyStatus `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE RENTED INACTIVE"`
}

func (r *PropertyRequest) toInput() services.PropertyInput {
	return services.PropertyInput{
		Title:         r.Title,
		Description:   r.Description,
		Address:       r.Address,
		City:          r.City,
		State:         r.State,
		Zip:           r.Zip,
		Price:         r.Price,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		Amenities:     r.Amenities,
		AvailableFrom: r.AvailableFrom,
		AvailableTo:   r.AvailableTo,
		Status:        r.Status,
	}
}

// Create handles POST /v1/properties (landlord only).
func (h *PropertyHandler) Create(c *gin.Context) {
	var req PropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), middleware.CallerID(c), req.toInput())
	if err != nil {
		log.Printf("Error creating property: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"property": property})
}

// Update handles PUT /v1/properties/:id (owner only).
func (h *PropertyHandler) Update(c *gin.Context) {
	var req PropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.Update(c.Request.Context(), c.Param("id"), middleware.CallerID(c), req.toInput())
	if err != nil {
		h.respondError(c, err, "update")
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property})
}

// Delete handles DELETE /v1/properties/:id (owner only).
func (h *PropertyHandler) Delete(c *gin.Context) {
	if err := h.propertyService.Delete(c.Request.Context(), c.Param("id"), middleware.CallerID(c)); err != nil {
		h.respondError(c, err, "delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// MyProperties handles GET /v1/landlord/properties.
func (h *PropertyHandler) MyProperties(c *gin.Context) {
	properties, err := h.propertyService.ListByLandlord(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		log.Printf("Error listing landlord properties: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list properties"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": properties})
}

// UploadImage handles POST /v1/properties/:id/images. The original is
// stored as-is; the image worker normalizes it and attaches the processed
// URL to the listing.
func (h *PropertyHandler) UploadImage(c *gin.Context) {
	propertyID := c.Param("id")
	callerID := middleware.CallerID(c)

	property, err := h.propertyService.FindByID(c.Request.Context(), propertyID, false)
	if err != nil {
		h.respondError(c, err, "upload image to")
		return
	}
	if property.LandlordID != callerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owning landlord can modify this property"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": []FieldIssue{{Field: "image", Issue: "an image file is required"}},
		})
		return
	}
	if fileHeader.Size > h.cfg.ImageMaxSizeMB*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": []FieldIssue{{Field: "image", Issue: fmt.Sprintf("must be at most %dMB", h.cfg.ImageMaxSizeMB)}},
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": []FieldIssue{{Field: "image", Issue: "must be a jpg, png or gif file"}},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("Error opening uploaded image for property %s: %v", propertyID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	key := fmt.Sprintf("properties/%s/orig/%s%s", propertyID, uuid.NewString(), ext)
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := h.storageService.Upload(c.Request.Context(), key, contentType, file); err != nil {
		log.Printf("Error uploading image %s: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}

	payloadBytes, _ := json.Marshal(tasks.ImageTaskPayload{
		S3Key:      key,
		PropertyID: propertyID,
		LandlordID: callerID,
	})
	task := asynq.NewTask(tasks.TypeImageProcess, payloadBytes, asynq.Queue("images"))
	if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task); err != nil {
		log.Printf("ERROR enqueuing image processing task for key %s: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue image processing"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "processing", "key": key})
}

// respondError maps service errors for operations on an existing property.
func (h *PropertyHandler) respondError(c *gin.Context, err error, verb string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owning landlord can modify this property"})
	default:
		log.Printf("Error trying to %s property %s: %v", verb, c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + verb + " property"})
	}
}
