// package services defines the clients for the subscription source and the feed reader
package services

import (
	"context"

	"github.com/desertthunder/ytsubs/internal/models"
)

// ProgressFunc receives the number of subscriptions accumulated so far and the total
// reported by the source. It is invoked once per fetched page.
type ProgressFunc func(current, total int)

// SubscriptionFetcher retrieves every subscription of the authenticated user.
type SubscriptionFetcher interface {
	// FetchAll pages through the listing and returns the records in service order.
	FetchAll(ctx context.Context, progress ProgressFunc) ([]models.Subscription, error)
}

// Importer uploads an OPML document into a feed reader.
type Importer interface {
	// Upload logs in, imports document and reports the classified result.
	Upload(ctx context.Context, document []byte) (*ImportSummary, error)

	// Name returns the name of the service
	Name() string
}
