package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/PicassoPreem-86/subletly-sub000/internal/api/middleware"
	"github.com/PicassoPreem-86/subletly-sub000/internal/config"
	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
	"github.com/PicassoPreem-86/subletly-sub000/internal/services"
	"github.com/PicassoPreem-86/subletly-sub000/internal/tasks"
)

// IAsynqClient defines the interface for the Asynq client methods used by
// the handlers. Allows mocking in tests.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// InquiryHandler handles the inquiry/messaging endpoints.
type InquiryHandler struct {
	cfg            *config.Config
	inquiryService services.IInquiryService
	taskClient     IAsynqClient
}

// NewInquiryHandler creates a new InquiryHandler.
func NewInquiryHandler(cfg *config.Config, inquiryService services.IInquiryService, taskClient IAsynqClient) *InquiryHandler {
	return &InquiryHandler{cfg: cfg, inquiryService: inquiryService, taskClient: taskClient}
}

// CreateInquiryRequest is the request body for POST /v1/inquiries.
type CreateInquiryRequest struct {
	PropertyID string     `json:"propertyId" binding:"required,uuid"`
	Message    string     `json:"message" binding:"required,min=10,max=1000"`
	Phone      *string    `json:"phone" binding:"omitempty,max=32"`
	MoveInDate *time.Time `json:"moveInDate"`
}

// Create handles POST /v1/inquiries.
func (h *InquiryHandler) Create(c *gin.Context) {
	var req CreateInquiryRequest
	if !bindJSON(c, &req) {
		return
	}

	inquiry, err := h.inquiryService.Create(c.Request.Context(), middleware.CallerID(c), services.CreateInquiryInput{
		PropertyID: req.PropertyID,
		Message:    req.Message,
		Phone:      req.Phone,
		MoveInDate: req.MoveInDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		case errors.Is(err, services.ErrOwnProperty):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot inquire about your own property"})
		default:
			log.Printf("Error creating inquiry on property %s: %v", req.PropertyID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inquiry"})
		}
		return
	}

	// Notify the landlord. The inquiry is durably written, so a failure here
	// must never fail the request.
	h.enqueueNotification(c, newInquiryEmail(h.cfg, inquiry))

	c.JSON(http.StatusOK, gin.H{"inquiry": inquiry})
}

// ListRenter handles GET /v1/inquiries (renter view).
func (h *InquiryHandler) ListRenter(c *gin.Context) {
	summaries, totalUnread, err := h.inquiryService.ListForRenter(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		log.Printf("Error listing renter inquiries: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list inquiries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": summaries, "totalUnread": totalUnread})
}

// ListLandlord handles GET /v1/landlord/inquiries.
func (h *InquiryHandler) ListLandlord(c *gin.Context) {
	summaries, totalUnread, err := h.inquiryService.ListForLandlord(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		log.Printf("Error listing landlord inquiries: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list inquiries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": summaries, "totalUnread": totalUnread})
}

// GetByID handles GET /v1/inquiries/:id — the full thread.
func (h *InquiryHandler) GetByID(c *gin.Context) {
	thread, err := h.inquiryService.GetThread(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		h.respondError(c, err, "retrieve")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"inquiry":  thread.Inquiry,
		"messages": thread.Messages,
		"role":     thread.Role,
	})
}

// PostMessageRequest is the request body for POST /v1/inquiries/:id/messages.
type PostMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// PostMessage handles POST /v1/inquiries/:id/messages.
func (h *InquiryHandler) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID := middleware.CallerID(c)
	message, inquiry, err := h.inquiryService.PostReply(c.Request.Context(), c.Param("id"), callerID, req.Content)
	if err != nil {
		h.respondError(c, err, "reply to")
		return
	}

	// Notify the other participant after the transaction has committed.
	h.enqueueNotification(c, newMessageEmail(h.cfg, inquiry, callerID))

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// MarkRead handles PATCH /v1/inquiries/:id/read.
func (h *InquiryHandler) MarkRead(c *gin.Context) {
	count, err := h.inquiryService.MarkRead(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		h.respondError(c, err, "mark read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"markedAsRead": count})
}

// respondError maps service errors for operations on an existing inquiry.
// The 403 body carries no inquiry or message data.
func (h *InquiryHandler) respondError(c *gin.Context, err error, verb string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a participant in this inquiry"})
	default:
		log.Printf("Error trying to %s inquiry %s: %v", verb, c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + verb + " inquiry"})
	}
}

// enqueueNotification dispatches a best-effort email task. Failures are
// logged and swallowed: the triggering write has already succeeded.
func (h *InquiryHandler) enqueueNotification(c *gin.Context, payload *tasks.EmailTaskPayload) {
	if payload == nil {
		return
	}
	payloadBytes, _ := json.Marshal(payload)
	task := asynq.NewTask(tasks.TypeEmailDelivery, payloadBytes)
	if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task); err != nil {
		log.Printf("ERROR enqueuing notification email to %s: %v", payload.To, err)
	}
}

// newInquiryEmail builds the landlord notification for a fresh inquiry.
func newInquiryEmail(cfg *config.Config, inquiry *models.Inquiry) *tasks.EmailTaskPayload {
	if inquiry.Property == nil || inquiry.Property.Landlord == nil {
		return nil
	}
	title := inquiry.Property.Title
	return &tasks.EmailTaskPayload{
		To:      inquiry.Property.Landlord.Email,
		Subject: fmt.Sprintf("New inquiry about %s", title),
		HTML: fmt.Sprintf(
			"<p>You have a new inquiry about <strong>%s</strong>:</p><blockquote>%s</blockquote><p><a href=%q>View the conversation</a></p>",
			html.EscapeString(title),
			html.EscapeString(inquiry.Message),
			fmt.Sprintf("%s/inquiries/%s", cfg.AppBaseURL, inquiry.ID),
		),
	}
}

// newMessageEmail builds the notification for the participant who did not
// send the reply.
func newMessageEmail(cfg *config.Config, inquiry *models.Inquiry, senderID string) *tasks.EmailTaskPayload {
	if inquiry.Property == nil || inquiry.Property.Landlord == nil || inquiry.Renter == nil {
		return nil
	}
	recipient := inquiry.Renter
	if senderID == inquiry.RenterID {
		recipient = inquiry.Property.Landlord
	}
	title := inquiry.Property.Title
	return &tasks.EmailTaskPayload{
		To:      recipient.Email,
		Subject: fmt.Sprintf("New message about %s", title),
		HTML: fmt.Sprintf(
			"<p>You have a new message about <strong>%s</strong>.</p><p><a href=%q>View the conversation</a></p>",
			html.EscapeString(title),
			fmt.Sprintf("%s/inquiries/%s", cfg.AppBaseURL, inquiry.ID),
		),
	}
}
