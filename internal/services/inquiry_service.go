package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
)

// ErrOwnProperty is returned when a landlord tries to open an inquiry on
// their own listing. It is a domain rule, not an authorization failure, and
// maps to 400 rather than 403.
var ErrOwnProperty = errors.New("cannot inquire about your own property")

// ParticipantRole says which side of an inquiry thread the caller is on.
type ParticipantRole string

const (
	RoleRenter   ParticipantRole = "RENTER"
	RoleLandlord ParticipantRole = "LANDLORD"
)

// CreateInquiryInput carries the validated fields for a new inquiry.
type CreateInquiryInput struct {
	PropertyID string
	Message    string
	Phone      *string
	MoveInDate *time.Time
}

// InquirySummary is one row of a conversation list: the inquiry, the most
// recent message if any, and how many messages from the other party the
// caller has not read.
type InquirySummary struct {
	Inquiry     models.Inquiry  `json:"inquiry"`
	LastMessage *models.Message `json:"lastMessage,omitempty"`
	UnreadCount int64           `json:"unreadCount"`
}

// Thread is the full conversation view: the inquiry with its property (and
// landlord identity), the renter identity, and every message in creation
// order with sender identities preloaded.
type Thread struct {
	Inquiry  models.Inquiry   `json:"inquiry"`
	Messages []models.Message `json:"messages"`
	Role     ParticipantRole  `json:"role"`
}

// IInquiryService defines the interface for the inquiry/messaging core.
type IInquiryService interface {
	Create(ctx context.Context, renterID string, input CreateInquiryInput) (*models.Inquiry, error)
	ListForRenter(ctx context.Context, renterID string) ([]InquirySummary, int64, error)
	ListForLandlord(ctx context.Context, landlordID string) ([]InquirySummary, int64, error)
	GetThread(ctx context.Context, inquiryID, callerID string) (*Thread, error)
	PostReply(ctx context.Context, inquiryID, callerID, content string) (*models.Message, *models.Inquiry, error)
	MarkRead(ctx context.Context, inquiryID, callerID string) (int64, error)
}

type inquiryService struct {
	db *gorm.DB
}

// NewInquiryService creates a new InquiryService.
func NewInquiryService(db *gorm.DB) IInquiryService {
	return &inquiryService{db: db}
}

// resolve loads an inquiry with both participant identities and authorizes
// the caller. Every operation on an existing inquiry goes through this one
// check instead of re-deriving the two equality comparisons.
func (s *inquiryService) resolve(ctx context.Context, inquiryID, callerID string) (*models.Inquiry, ParticipantRole, error) {
	var inquiry models.Inquiry
	err := s.db.WithContext(ctx).
		Preload("Renter").
		Preload("Property").
		Preload("Property.Landlord").
		First(&inquiry, "id = ?", inquiryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("error finding inquiry %s: %w", inquiryID, err)
	}

	switch callerID {
	case inquiry.RenterID:
		return &inquiry, RoleRenter, nil
	case inquiry.Property.LandlordID:
		return &inquiry, RoleLandlord, nil
	}
	return nil, "", ErrForbidden
}

// Create opens a new inquiry on a property. Fails with ErrNotFound if the
// property does not exist and ErrOwnProperty if the caller owns it. The
// returned inquiry has Property.Landlord preloaded so the caller can
// dispatch the landlord notification without another lookup.
func (s *inquiryService) Create(ctx context.Context, renterID string, input CreateInquiryInput) (*models.Inquiry, error) {
	var property models.Property
	err := s.db.WithContext(ctx).Preload("Landlord").First(&property, "id = ?", input.PropertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding property %s: %w", input.PropertyID, err)
	}
	if property.LandlordID == renterID {
		return nil, ErrOwnProperty
	}

	inquiry := &models.Inquiry{
		ID:         uuid.NewString(),
		RenterID:   renterID,
		PropertyID: property.ID,
		Message:    input.Message,
		Phone:      input.Phone,
		MoveInDate: input.MoveInDate,
		Status:     models.InquiryStatusPending,
		// LastMessageAt stays unset until the first reply.
	}
	if err := s.db.WithContext(ctx).Create(inquiry).Error; err != nil {
		return nil, fmt.Errorf("error creating inquiry: %w", err)
	}
	inquiry.Property = &property
	return inquiry, nil
}

// inquiryListOrder sorts conversation lists: most recent activity first,
// inquiries that never had a reply last, newest-created as the tiebreak.
const inquiryListOrder = "last_message_at DESC NULLS LAST, created_at DESC"

func (s *inquiryService) ListForRenter(ctx context.Context, renterID string) ([]InquirySummary, int64, error) {
	var inquiries []models.Inquiry
	err := s.db.WithContext(ctx).
		Preload("Property").
		Preload("Property.Landlord").
		Where("renter_id = ?", renterID).
		Order(inquiryListOrder).
		Find(&inquiries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error listing inquiries for renter %s: %w", renterID, err)
	}
	return s.annotate(ctx, inquiries, renterID)
}

func (s *inquiryService) ListForLandlord(ctx context.Context, landlordID string) ([]InquirySummary, int64, error) {
	var inquiries []models.Inquiry
	err := s.db.WithContext(ctx).
		Select("inquiries.*").
		Preload("Property").
		Preload("Renter").
		Joins("JOIN properties ON properties.id = inquiries.property_id").
		Where("properties.landlord_id = ?", landlordID).
		Order("inquiries.last_message_at DESC NULLS LAST, inquiries.created_at DESC").
		Find(&inquiries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error listing inquiries for landlord %s: %w", landlordID, err)
	}
	return s.annotate(ctx, inquiries, landlordID)
}

// annotate attaches last message and unread count to each inquiry. Unread
// counts for the whole page come from one grouped query; the same goes for
// last messages. One query per inquiry would be an N+1.
func (s *inquiryService) annotate(ctx context.Context, inquiries []models.Inquiry, callerID string) ([]InquirySummary, int64, error) {
	summaries := make([]InquirySummary, 0, len(inquiries))
	if len(inquiries) == 0 {
		return summaries, 0, nil
	}

	ids := make([]string, len(inquiries))
	for i := range inquiries {
		ids[i] = inquiries[i].ID
	}

	unread, err := s.unreadCounts(ctx, ids, callerID)
	if err != nil {
		return nil, 0, err
	}

	lastByInquiry, err := s.lastMessages(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	var totalUnread int64
	for i := range inquiries {
		inq := inquiries[i]
		count := unread[inq.ID]
		totalUnread += count
		summaries = append(summaries, InquirySummary{
			Inquiry:     inq,
			LastMessage: lastByInquiry[inq.ID],
			UnreadCount: count,
		})
	}
	return summaries, totalUnread, nil
}

// lastMessages fetches only the newest message per inquiry via a grouped
// subquery, so listing cost is bounded by the number of inquiries rather
// than the length of their conversations.
func (s *inquiryService) lastMessages(ctx context.Context, inquiryIDs []string) (map[string]*models.Message, error) {
	newest := s.db.Model(&models.Message{}).
		Select("inquiry_id, MAX(created_at) AS created_at").
		Where("inquiry_id IN ?", inquiryIDs).
		Group("inquiry_id")

	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("(inquiry_id, created_at) IN (?)", newest).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("error loading last messages: %w", err)
	}

	lastByInquiry := make(map[string]*models.Message, len(inquiryIDs))
	for i := range messages {
		m := &messages[i]
		// A created_at tie within one inquiry yields multiple rows; keep one.
		if _, seen := lastByInquiry[m.InquiryID]; !seen {
			lastByInquiry[m.InquiryID] = m
		}
	}
	return lastByInquiry, nil
}

// unreadCounts computes, in a single grouped query, how many messages in
// each inquiry were sent by the other party and never read.
func (s *inquiryService) unreadCounts(ctx context.Context, inquiryIDs []string, callerID string) (map[string]int64, error) {
	type row struct {
		InquiryID string
		Count     int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Select("inquiry_id, COUNT(*) AS count").
		Where("inquiry_id IN ? AND sender_id <> ? AND read_at IS NULL", inquiryIDs, callerID).
		Group("inquiry_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error counting unread messages: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.InquiryID] = r.Count
	}
	return counts, nil
}

// GetThread returns the full conversation, messages in creation order with
// sender identities.
func (s *inquiryService) GetThread(ctx context.Context, inquiryID, callerID string) (*Thread, error) {
	inquiry, role, err := s.resolve(ctx, inquiryID, callerID)
	if err != nil {
		return nil, err
	}

	var messages []models.Message
	err = s.db.WithContext(ctx).
		Preload("Sender").
		Where("inquiry_id = ?", inquiryID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("error loading messages for inquiry %s: %w", inquiryID, err)
	}

	return &Thread{Inquiry: *inquiry, Messages: messages, Role: role}, nil
}

// PostReply inserts a message and updates the parent inquiry in one
// transaction, so a concurrent reader never sees the new message without the
// matching lastMessageAt/status update. Status flips PENDING -> RESPONDED
// only when the landlord replies to a still-pending inquiry. The returned
// inquiry carries both participant identities so the caller can notify the
// other party.
func (s *inquiryService) PostReply(ctx context.Context, inquiryID, callerID, content string) (*models.Message, *models.Inquiry, error) {
	inquiry, role, err := s.resolve(ctx, inquiryID, callerID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	message := &models.Message{
		ID:        uuid.NewString(),
		InquiryID: inquiry.ID,
		SenderID:  callerID,
		Content:   content,
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{"last_message_at": now}
		if role == RoleLandlord && inquiry.Status == models.InquiryStatusPending {
			updates["status"] = models.InquiryStatusResponded
		}
		return tx.Model(&models.Inquiry{}).Where("id = ?", inquiry.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error posting reply to inquiry %s: %w", inquiryID, err)
	}

	inquiry.LastMessageAt = &now
	if role == RoleLandlord && inquiry.Status == models.InquiryStatusPending {
		inquiry.Status = models.InquiryStatusResponded
	}
	return message, inquiry, nil
}

// MarkRead stamps readAt on every unread message in the inquiry that the
// caller did not send and returns how many rows changed. Calling it again
// with no new messages updates zero rows.
func (s *inquiryService) MarkRead(ctx context.Context, inquiryID, callerID string) (int64, error) {
	inquiry, _, err := s.resolve(ctx, inquiryID, callerID)
	if err != nil {
		return 0, err
	}

	res := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("inquiry_id = ? AND sender_id <> ? AND read_at IS NULL", inquiry.ID, callerID).
		Update("read_at", time.Now().UTC())
	if res.Error != nil {
		return 0, fmt.Errorf("error marking inquiry %s read: %w", inquiryID, res.Error)
	}
	return res.RowsAffected, nil
}
