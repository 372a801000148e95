package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"github.com/PicassoPreem-86/subletly-sub000/internal/api/middleware"
	"github.com/PicassoPreem-86/subletly-sub000/internal/models"
	"github.com/PicassoPreem-86/subletly-sub000/internal/services"
)

// --- Mocks ---

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email string, accountType models.AccountType, password string) (*models.User, error) {
	args := m.Called(ctx, email, accountType, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockInquiryService
type MockInquiryService struct {
	mock.Mock
}

func (m *MockInquiryService) Create(ctx context.Context, renterID string, input services.CreateInquiryInput) (*models.Inquiry, error) {
	args := m.Called(ctx, renterID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) ListForRenter(ctx context.Context, renterID string) ([]services.InquirySummary, int64, error) {
	args := m.Called(ctx, renterID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]services.InquirySummary), args.Get(1).(int64), args.Error(2)
}

func (m *MockInquiryService) ListForLandlord(ctx context.Context, landlordID string) ([]services.InquirySummary, int64, error) {
	args := m.Called(ctx, landlordID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]services.InquirySummary), args.Get(1).(int64), args.Error(2)
}

func (m *MockInquiryService) GetThread(ctx context.Context, inquiryID, callerID string) (*services.Thread, error) {
	args := m.Called(ctx, inquiryID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Thread), args.Error(1)
}

func (m *MockInquiryService) PostReply(ctx context.Context, inquiryID, callerID, content string) (*models.Message, *models.Inquiry, error) {
	args := m.Called(ctx, inquiryID, callerID, content)
	var message *models.Message
	var inquiry *models.Inquiry
	if args.Get(0) != nil {
		message = args.Get(0).(*models.Message)
	}
	if args.Get(1) != nil {
		inquiry = args.Get(1).(*models.Inquiry)
	}
	return message, inquiry, args.Error(2)
}

func (m *MockInquiryService) MarkRead(ctx context.Context, inquiryID, callerID string) (int64, error) {
	args := m.Called(ctx, inquiryID, callerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockPropertyService
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) Create(ctx context.Context, landlordID string, input services.PropertyInput) (*models.Property, error) {
	args := m.Called(ctx, landlordID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Update(ctx context.Context, propertyID, callerID string, input services.PropertyInput) (*models.Property, error) {
	args := m.Called(ctx, propertyID, callerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Delete(ctx context.Context, propertyID, callerID string) error {
	args := m.Called(ctx, propertyID, callerID)
	return args.Error(0)
}

func (m *MockPropertyService) FindByID(ctx context.Context, propertyID string, countView bool) (*models.Property, error) {
	args := m.Called(ctx, propertyID, countView)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Search(ctx context.Context, params services.SearchParams) ([]models.Property, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Property), args.Get(1).(int64), args.Error(2)
}

func (m *MockPropertyService) ListByLandlord(ctx context.Context, landlordID string) ([]models.Property, error) {
	args := m.Called(ctx, landlordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyService) AppendImage(ctx context.Context, propertyID, callerID, imageURL string) (*models.Property, error) {
	args := m.Called(ctx, propertyID, callerID, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockSavedPropertyService
type MockSavedPropertyService struct {
	mock.Mock
}

func (m *MockSavedPropertyService) Save(ctx context.Context, userID, propertyID string) (*models.SavedProperty, error) {
	args := m.Called(ctx, userID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SavedProperty), args.Error(1)
}

func (m *MockSavedPropertyService) Unsave(ctx context.Context, userID, propertyID string) error {
	args := m.Called(ctx, userID, propertyID)
	return args.Error(0)
}

func (m *MockSavedPropertyService) List(ctx context.Context, userID string) ([]models.SavedProperty, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SavedProperty), args.Error(1)
}

// MockObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

func (m *MockObjectStorage) Download(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStorage) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockAsynqClient
type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

// --- Helpers ---

// asUser fakes the auth middleware: it stamps the caller identity into the
// Gin context the way AuthMiddleware does after token validation.
func asUser(userID string, accountType models.AccountType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyAccountType, accountType)
		c.Next()
	}
}
