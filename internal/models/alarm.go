package models

import "encoding/json"

// AlarmEvent is the alarm payload the broker rule forwards from the
// PRO/+/alarm topic. The HMI wraps single values in arrays.
type AlarmEvent struct {
	D struct {
		Alarm []string `json:"alarm"`
		Email []string `json:"email"`
	} `json:"d"`
	TS        string `json:"ts"`
	Equipment string `json:"equipment"`
}

// AlarmAuditRecord is the document written to object storage for every
// processed alarm, whether or not the notification went out.
type AlarmAuditRecord struct {
	AlarmMessage    string          `json:"alarm_message"`
	EmailRecipients []string        `json:"email_recipients"`
	Timestamp       string          `json:"timestamp"`
	Equipment       string          `json:"equipment"`
	ProcessedAt     string          `json:"processed_at"`
	EmailSent       bool            `json:"email_sent"`
	EmailError      string          `json:"email_error,omitempty"`
	SESMessageID    string          `json:"ses_message_id,omitempty"`
	WebhookSent     bool            `json:"webhook_sent,omitempty"`
	WebhookError    string          `json:"webhook_error,omitempty"`
	RawPayload      json.RawMessage `json:"raw_payload"`
}

// AlarmResponse is what the invocation returns to the trigger infrastructure.
type AlarmResponse struct {
	Status       string   `json:"status"`
	S3Key        string   `json:"s3_key"`
	Equipment    string   `json:"equipment"`
	AlarmMessage string   `json:"alarm_message"`
	Recipients   []string `json:"recipients"`
	EmailSent    bool     `json:"email_sent"`
}
