// Package alarm processes bioreactor alarm events from the broker rule:
// notify the configured recipients and keep a partitioned audit trail in
// object storage.
package alarm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"biorreator-telemetry/internal/models"
	"biorreator-telemetry/internal/partition"
)

// S3Client is the slice of the S3 API the processor needs.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ S3Client = (*s3.Client)(nil)

// Processor handles one alarm invocation: extract, notify, audit. Notifier
// failures are recorded in the audit document but do not fail the
// invocation; only a lost audit write does.
type Processor struct {
	storage          S3Client
	mailer           *Mailer
	webhook          *WebhookNotifier
	bucket           string
	prefix           string
	defaultRecipient string
	clock            func() time.Time
}

// NewProcessor creates a Processor. webhook may be nil; a nil clock defaults
// to UTC now.
func NewProcessor(storage S3Client, mailer *Mailer, webhook *WebhookNotifier, bucket, prefix, defaultRecipient string, clock func() time.Time) *Processor {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Processor{
		storage:          storage,
		mailer:           mailer,
		webhook:          webhook,
		bucket:           bucket,
		prefix:           prefix,
		defaultRecipient: defaultRecipient,
		clock:            clock,
	}
}

// Handle processes one raw alarm payload.
func (p *Processor) Handle(ctx context.Context, raw json.RawMessage) (models.AlarmResponse, error) {
	log.Printf("Processing alarm: %s", raw)

	var event models.AlarmEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return models.AlarmResponse{}, fmt.Errorf("decoding alarm payload: %w", err)
	}

	message := "Unknown alarm"
	if len(event.D.Alarm) > 0 && event.D.Alarm[0] != "" {
		message = event.D.Alarm[0]
	}

	recipients := event.D.Email
	if len(recipients) == 0 {
		log.Println("No email recipients specified, using default recipient")
		recipients = []string{p.defaultRecipient}
	}

	timestamp := event.TS
	eventTime, err := time.Parse(models.TimestampLayout, timestamp)
	if err != nil {
		eventTime = p.clock()
		timestamp = eventTime.Format(models.TimestampLayout)
	}

	equipment := event.Equipment
	if equipment == "" {
		equipment = "unknown"
	}

	log.Printf("Extracted - Alarm: %s, Recipients: %v, Equipment: %s", message, recipients, equipment)

	record := models.AlarmAuditRecord{
		AlarmMessage:    message,
		EmailRecipients: recipients,
		Timestamp:       timestamp,
		Equipment:       equipment,
		ProcessedAt:     p.clock().Format(models.TimestampLayout),
		RawPayload:      raw,
	}

	messageID, err := p.mailer.SendAlarm(ctx, equipment, timestamp, message, recipients)
	if err != nil {
		log.Printf("Error sending alarm email: %v", err)
		record.EmailError = err.Error()
	} else {
		record.EmailSent = true
		record.SESMessageID = messageID
	}

	if p.webhook != nil {
		if err := p.webhook.Notify(ctx, record); err != nil {
			log.Printf("Error notifying alarm webhook: %v", err)
			record.WebhookError = err.Error()
		} else {
			record.WebhookSent = true
		}
	}

	key := p.auditKey(eventTime, equipment)
	if err := p.writeAudit(ctx, key, record); err != nil {
		return models.AlarmResponse{}, err
	}

	return models.AlarmResponse{
		Status:       "success",
		S3Key:        key,
		Equipment:    equipment,
		AlarmMessage: message,
		Recipients:   recipients,
		EmailSent:    record.EmailSent,
	}, nil
}

// auditKey mirrors the sensor table's partition layout so alarm audits are
// prunable by the same predicates.
func (p *Processor) auditKey(eventTime time.Time, equipment string) string {
	key := partition.Keys(eventTime)
	return fmt.Sprintf("%syear=%s/month=%s/day=%s/equipment=%s/%s_%s_alarm.json",
		p.prefix, key.Year, key.Month, key.Day, equipment,
		eventTime.Format("20060102150405"), uuid.NewString())
}

func (p *Processor) writeAudit(ctx context.Context, key string, record models.AlarmAuditRecord) error {
	body, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding audit record: %w", err)
	}

	_, err = p.storage.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("writing audit record %s: %w", key, err)
	}
	return nil
}
