package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"github.com/PicassoPreem-86/subletly-sub000/internal/config"
	"github.com/PicassoPreem-86/subletly-sub000/internal/email"
	"github.com/PicassoPreem-86/subletly-sub000/internal/services"
	"github.com/PicassoPreem-86/subletly-sub000/internal/storage"
)

// Task types.
const (
	TypeEmailDelivery = "email:deliver"
	TypeImageProcess  = "image:process"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg             *config.Config
	emailSender     email.Sender
	storageService  storage.IObjectStorage
	propertyService services.IPropertyService
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	storageService storage.IObjectStorage,
	propertyService services.IPropertyService,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:             cfg,
		emailSender:     emailSender,
		storageService:  storageService,
		propertyService: propertyService,
	}
}

// SetupServer configures an Asynq server and the handler mux for the
// requested worker mode. The caller runs the returned server.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isImageWorker bool, isBgWorker bool) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
				"images":   5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				// Notification delivery is best effort: a task that keeps
				// failing is logged and dropped, never surfaced to a caller.
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	if isBgWorker {
		mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
	}
	if isImageWorker {
		mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)
	}

	return srv, mux
}

// --- Task Handlers ---

// EmailTaskPayload is the outbound notification contract: best effort,
// at-most-once from the caller's perspective, {to, subject, html}.
type EmailTaskPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// HandleEmailDeliveryTask processes email delivery tasks.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("email task payload missing recipient: %w", asynq.SkipRetry)
	}

	fromAddress := p.cfg.SmtpFromAddress
	if fromAddress == "" {
		fromAddress = "noreply@subletly.example"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", payload.To))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", fromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", payload.Subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(payload.HTML)
	sb.WriteString("\r\n")

	if err := p.emailSender.Send(ctx, []string{payload.To}, payload.Subject, []byte(sb.String())); err != nil {
		log.Printf("Email sending failed for %s: %v", payload.To, err)
		return err
	}
	return nil
}

// ImageTaskPayload identifies an uploaded original awaiting normalization.
type ImageTaskPayload struct {
	S3Key      string `json:"s3_key"`
	PropertyID string `json:"property_id"`
	LandlordID string `json:"landlord_id"`
}

// HandleImageProcessTask downloads an uploaded original, bounds it to the
// configured maximum dimension, re-encodes it as JPEG, uploads the processed
// copy and appends its URL to the property's image list.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	data, err := p.storageService.Download(ctx, payload.S3Key)
	if err != nil {
		return fmt.Errorf("failed to download original %s: %w", payload.S3Key, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// The upload is not an image we can decode; retrying won't help.
		return fmt.Errorf("failed to decode image %s: %v: %w", payload.S3Key, err, asynq.SkipRetry)
	}

	maxDim := uint(p.cfg.ImageMaxDimension)
	if maxDim == 0 {
		maxDim = 1600
	}
	processed := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode processed image for %s: %w", payload.S3Key, err)
	}

	processedKey := processedKeyFor(payload.S3Key)
	if err := p.storageService.Upload(ctx, processedKey, "image/jpeg", &buf); err != nil {
		return fmt.Errorf("failed to upload processed image %s: %w", processedKey, err)
	}

	url := p.storageService.PublicURL(processedKey)
	if _, err := p.propertyService.AppendImage(ctx, payload.PropertyID, payload.LandlordID, url); err != nil {
		return fmt.Errorf("failed to attach image to property %s: %w", payload.PropertyID, err)
	}

	log.Printf("Processed image %s for property %s", processedKey, payload.PropertyID)
	return nil
}

// processedKeyFor maps an original upload key to its processed counterpart.
func processedKeyFor(originalKey string) string {
	key := strings.Replace(originalKey, "/orig/", "/images/", 1)
	if idx := strings.LastIndex(key, "."); idx > strings.LastIndex(key, "/") {
		key = key[:idx]
	}
	return key + ".jpg"
}
