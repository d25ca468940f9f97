// The firehose-transform function normalizes raw bioreactor payloads for the
// delivery stream: explicit field types, equipment resolution, date partition
// keys. Malformed records are reported back as ProcessingFailed.
package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"biorreator-telemetry/internal/config"
	"biorreator-telemetry/internal/livefeed"
	"biorreator-telemetry/internal/transform"
)

func main() {
	cfg, err := config.LoadTransformConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	var mirror transform.Mirror
	if cfg.MirrorEnabled() {
		feed := livefeed.New(cfg.LivefeedURL, cfg.LivefeedToken, cfg.LivefeedOrg, cfg.LivefeedBucket)
		defer feed.Close()
		mirror = feed
		log.Println("Livefeed mirror enabled")
	}

	handler := transform.NewFirehoseHandler(transform.NewNormalizer(nil), mirror)
	lambda.Start(handler.Handle)
}
