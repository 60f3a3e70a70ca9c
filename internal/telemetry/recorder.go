package telemetry

import (
	"context"
	"strings"
	"time"

	"legaldoc/internal/models"

	"github.com/google/uuid"
)

// TimestampLayout is ISO-8601 with microseconds and a zone offset.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Recorder persists request outcomes and summaries. Records are append-only.
type Recorder interface {
	RecordLog(ctx context.Context, rec models.LogRecord) error
	RecordSummary(ctx context.Context, rec models.SummaryRecord) error
	ListSummaries(ctx context.Context) ([]models.SummaryRecord, error)
	GetSummary(ctx context.Context, id string) (models.SummaryRecord, error)
	Close() error
}

func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// NewSummaryID keeps the sortable sum_YYYYMMDD_HHMMSS prefix and adds a random
// suffix so two summaries in the same second do not collide.
func NewSummaryID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "sum_" + now.Format("20060102_150405") + "_" + suffix
}
