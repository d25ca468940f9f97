package transform

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"biorreator-telemetry/internal/models"
)

// Mirror receives every successfully normalized reading for near-real-time
// consumers. Mirror failures never affect the delivery-stream result.
type Mirror interface {
	WriteReading(ctx context.Context, reading models.SensorReading) error
}

// FirehoseHandler is the record-transform invoked by the delivery stream.
// Each record is independent: a bad record is marked ProcessingFailed and the
// rest of the batch continues.
type FirehoseHandler struct {
	normalizer *Normalizer
	mirror     Mirror
}

// NewFirehoseHandler creates the handler. mirror may be nil.
func NewFirehoseHandler(normalizer *Normalizer, mirror Mirror) *FirehoseHandler {
	return &FirehoseHandler{normalizer: normalizer, mirror: mirror}
}

// Handle transforms one Firehose batch. The returned metadata carries the
// partition keys so dynamic partitioning routes each record to the matching
// year/month/day prefix.
func (h *FirehoseHandler) Handle(ctx context.Context, event events.KinesisFirehoseEvent) (events.KinesisFirehoseResponse, error) {
	response := events.KinesisFirehoseResponse{
		Records: make([]events.KinesisFirehoseResponseRecord, 0, len(event.Records)),
	}

	ok := 0
	for _, record := range event.Records {
		reading, err := h.normalizer.Normalize(record.Data)
		if err != nil {
			log.Printf("Error processing record %s: %v", record.RecordID, err)
			response.Records = append(response.Records, events.KinesisFirehoseResponseRecord{
				RecordID: record.RecordID,
				Result:   events.KinesisFirehoseTransformedStateProcessingFailed,
			})
			continue
		}

		line, err := json.Marshal(reading)
		if err != nil {
			log.Printf("Error encoding record %s: %v", record.RecordID, err)
			response.Records = append(response.Records, events.KinesisFirehoseResponseRecord{
				RecordID: record.RecordID,
				Result:   events.KinesisFirehoseTransformedStateProcessingFailed,
			})
			continue
		}

		response.Records = append(response.Records, events.KinesisFirehoseResponseRecord{
			RecordID: record.RecordID,
			Result:   events.KinesisFirehoseTransformedStateOk,
			Data:     append(line, '\n'),
			Metadata: events.KinesisFirehoseResponseRecordMetadata{
				PartitionKeys: map[string]string{
					"year":  reading.PartitionYear,
					"month": reading.PartitionMonth,
					"day":   reading.PartitionDay,
					"hour":  reading.PartitionHour,
				},
			},
		})
		ok++

		if h.mirror != nil {
			if err := h.mirror.WriteReading(ctx, reading); err != nil {
				log.Printf("Error mirroring record for equipment %s: %v", reading.Equipment, err)
			}
		}
	}

	log.Printf("Successfully processed %d of %d records", ok, len(event.Records))
	return response, nil
}
