package analytics

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/enrolment/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportStorage is the object store reports are archived into
type ReportStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// Archiver renders a report and stores it, returning a temporary download link
type Archiver struct {
	renderer  *Renderer
	storage   ReportStorage
	prefix    string
	expiresIn time.Duration
	metrics   *telemetry.ReportMetrics
	logger    *zap.Logger
}

// NewArchiver creates a new Archiver. Keys are written under prefix and links
// stay valid for expiresIn.
func NewArchiver(renderer *Renderer, storage ReportStorage, prefix string, expiresIn time.Duration) *Archiver {
	return &Archiver{
		renderer:  renderer,
		storage:   storage,
		prefix:    prefix,
		expiresIn: expiresIn,
		metrics:   renderer.metrics,
		logger:    renderer.logger,
	}
}

// Archive renders the range, uploads the workbook and presigns a download URL
func (a *Archiver) Archive(ctx context.Context, req RangeRequest) (resp *ArchiveResponse, err error) {
	if a.storage == nil {
		return nil, errors.New("report storage is not configured")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", "archive")
	defer span.End()

	started := time.Now()
	days := a.renderer.resolve(req).Days()
	defer func() {
		telemetry.RecordError(span, err)
		a.metrics.RecordReport(ctx, telemetry.ReportKindArchive, days, req.StoreID != nil, time.Since(started), err)
	}()

	report, err := a.renderer.Render(ctx, req)
	if err != nil {
		return nil, err
	}

	key := a.key(req.StoreID, report.Filename)
	if err := a.storage.Upload(ctx, key, report.Content.Bytes(), ContentType); err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}

	url, expiresAt, err := a.storage.GenerateDownloadURL(ctx, key, a.expiresIn)
	if err != nil {
		return nil, fmt.Errorf("presign report: %w", err)
	}

	a.logger.Info("Analytics report archived", zap.String("key", key), zap.Time("expires_at", expiresAt))
	return &ArchiveResponse{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

// key is <prefix>/<store id or "all">/<random>/<filename>
func (a *Archiver) key(storeID *uuid.UUID, filename string) string {
	scope := "all"
	if storeID != nil {
		scope = storeID.String()
	}
	return path.Join(a.prefix, scope, uuid.NewString(), filename)
}
