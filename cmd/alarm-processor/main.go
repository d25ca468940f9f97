// The alarm-processor function handles bioreactor alarms from the broker
// rule: email via SES, optional webhook, partitioned audit record in S3.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"biorreator-telemetry/internal/alarm"
	"biorreator-telemetry/internal/config"
)

func main() {
	cfg, err := config.LoadAlarmConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Error loading AWS configuration: %v", err)
	}

	var webhook *alarm.WebhookNotifier
	if cfg.WebhookURL != "" {
		webhook = alarm.NewWebhookNotifier(cfg.WebhookURL)
	}

	processor := alarm.NewProcessor(
		s3.NewFromConfig(awsCfg),
		alarm.NewMailer(sesv2.NewFromConfig(awsCfg), cfg.SESFrom),
		webhook,
		cfg.S3Bucket,
		cfg.S3Prefix,
		cfg.DefaultRecipient,
		nil,
	)
	lambda.Start(processor.Handle)
}
