// package tasks runs the subscription sync pipeline and schedules repeated runs.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsubs/internal/formatter"
	"github.com/desertthunder/ytsubs/internal/models"
	"github.com/desertthunder/ytsubs/internal/services"
	"github.com/desertthunder/ytsubs/internal/shared"
	"golang.org/x/oauth2"
)

// ExportResult holds the fetched subscriptions and their encoded document.
type ExportResult struct {
	Subscriptions []models.Subscription
	Document      []byte
}

// SyncResult contains all data from a full sync.
type SyncResult struct {
	ExportResult
	Summary  *services.ImportSummary
	Duration time.Duration
}

// SyncEngine defines the pipeline operations.
type SyncEngine interface {
	// Export authorizes, fetches every subscription and encodes them as OPML.
	Export(ctx context.Context, progress chan<- ProgressUpdate) (*ExportResult, error)

	// Run performs Export and uploads the document to the feed reader.
	Run(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error)
}

// SubscriptionEngine implements [SyncEngine].
type SubscriptionEngine struct {
	tokens   oauth2.TokenSource
	fetcher  services.SubscriptionFetcher
	importer services.Importer
	category string
	logger   *log.Logger
}

// NewSubscriptionEngine wires the pipeline. tokens may be nil, in which case the
// fetcher authorizes on its first request.
func NewSubscriptionEngine(
	tokens oauth2.TokenSource, fetcher services.SubscriptionFetcher, importer services.Importer, category string, logger *log.Logger,
) *SubscriptionEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SubscriptionEngine{
		tokens:   tokens,
		fetcher:  fetcher,
		importer: importer,
		category: category,
		logger:   logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SubscriptionEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Export runs the authorize, fetch and encode stages.
func (e *SubscriptionEngine) Export(ctx context.Context, progress chan<- ProgressUpdate) (*ExportResult, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: subscription fetcher", shared.ErrServiceUnavailable)
	}

	if e.tokens != nil {
		e.sendProgress(progress, authorizeUpdate())
		if _, err := e.tokens.Token(); err != nil {
			return nil, fmt.Errorf("%s: %w", Authorize, err)
		}
	}

	subs, err := e.fetcher.FetchAll(ctx, func(current, total int) {
		e.sendProgress(progress, fetchPageUpdate(current, total))
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FetchSubscriptions, err)
	}
	e.logger.Info("subscriptions fetched", "count", len(subs))

	doc, err := formatter.ExportToOPML(e.category, subs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EncodeOPML, err)
	}
	e.sendProgress(progress, encodeUpdate(len(subs), e.category))

	return &ExportResult{Subscriptions: subs, Document: doc}, nil
}

// Run performs the full sync. Every stage fails fast; nothing is imported
// unless all subscriptions were fetched and encoded.
func (e *SubscriptionEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if e.importer == nil {
		return nil, fmt.Errorf("%w: importer", shared.ErrServiceUnavailable)
	}
	start := time.Now()

	export, err := e.Export(ctx, progress)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, uploadUpdate(e.importer.Name(), len(export.Document)))
	summary, err := e.importer.Upload(ctx, export.Document)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ImportOPML, err)
	}

	result := &SyncResult{ExportResult: *export, Summary: summary, Duration: time.Since(start)}
	e.logger.Info("sync completed",
		"subscriptions", len(export.Subscriptions),
		"events", summary.Total,
		"added", len(summary.Added),
		"duplicated", len(summary.Duplicated),
		"duration", result.Duration.Round(time.Millisecond),
	)
	e.sendProgress(progress, completedUpdate(result))
	return result, nil
}

var _ SyncEngine = (*SubscriptionEngine)(nil)
