package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytsubs/internal/models"
	"github.com/desertthunder/ytsubs/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// MaxPageSize is the largest page the subscriptions endpoint serves.
const MaxPageSize = 50

type pageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

type resourceID struct {
	Kind      string `json:"kind"`
	ChannelID string `json:"channelId"`
}

type subscriptionSnippet struct {
	Title      string     `json:"title"`
	ResourceID resourceID `json:"resourceId"`
}

type subscriptionItem struct {
	ID      string              `json:"id"`
	Snippet subscriptionSnippet `json:"snippet"`
}

// subscriptionListResponse is the subset of youtube#subscriptionListResponse we read.
type subscriptionListResponse struct {
	NextPageToken string             `json:"nextPageToken"`
	PageInfo      *pageInfo          `json:"pageInfo"`
	Items         []subscriptionItem `json:"items"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// YouTubeService lists the authenticated user's channel subscriptions.
type YouTubeService struct {
	api     *APIService
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewYouTubeService creates a client for the Data API rooted at baseURL.
// Every request carries a bearer token drawn from ts.
func NewYouTubeService(baseURL string, ts oauth2.TokenSource, logger *log.Logger) *YouTubeService {
	if baseURL == "" {
		baseURL = shared.DefaultAPIURL
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	client := &http.Client{Transport: &oauth2.Transport{Source: ts}}
	return &YouTubeService{
		api:     NewAPIService(baseURL, client),
		limiter: rate.NewLimiter(rate.Limit(shared.DefaultRequestsPerSecond), 1),
		logger:  logger,
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// SetRateLimit paces page requests to rps. Zero or less disables pacing.
func (y *YouTubeService) SetRateLimit(rps float64) {
	if rps <= 0 {
		y.limiter = rate.NewLimiter(rate.Inf, 1)
		return
	}
	y.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// FetchPage requests a single page of subscriptions. An empty pageToken requests the first page.
func (y *YouTubeService) FetchPage(ctx context.Context, pageToken string) (*models.SubscriptionPage, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrFetchFailed, err)
	}

	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("mine", "true")
	query.Set("order", "alphabetical")
	query.Set("maxResults", strconv.Itoa(MaxPageSize))
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	resp, err := y.api.Get(ctx, "/subscriptions?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrFetchFailed, err)
	}

	if !resp.OK() {
		httpErr := &HTTPError{Kind: shared.ErrFetchFailed, StatusCode: resp.StatusCode, Body: resp.Body}
		var apiErr apiErrorResponse
		if resp.IsJSON && resp.Decode(&apiErr) == nil {
			httpErr.Message = apiErr.Error.Message
		}
		return nil, httpErr
	}

	var body subscriptionListResponse
	if err := resp.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode subscriptions page: %v", shared.ErrFetchFailed, err)
	}
	if body.PageInfo == nil {
		return nil, fmt.Errorf("%w: subscriptions page has no pageInfo", shared.ErrFetchFailed)
	}

	page := &models.SubscriptionPage{
		Items:         make([]models.Subscription, 0, len(body.Items)),
		NextPageToken: body.NextPageToken,
		TotalResults:  body.PageInfo.TotalResults,
		PerPage:       body.PageInfo.ResultsPerPage,
	}
	for i, item := range body.Items {
		if item.Snippet.ResourceID.ChannelID == "" {
			return nil, fmt.Errorf("%w: subscription %d on page has no channel id", shared.ErrFetchFailed, i)
		}
		page.Items = append(page.Items, models.Subscription{
			Title:     item.Snippet.Title,
			ChannelID: item.Snippet.ResourceID.ChannelID,
		})
	}
	return page, nil
}

// FetchAll follows nextPageToken until the last page and returns every subscription
// in the order served. progress, if non-nil, is called after each page.
//
// A failure on any page discards what was accumulated.
func (y *YouTubeService) FetchAll(ctx context.Context, progress ProgressFunc) ([]models.Subscription, error) {
	var (
		subs      []models.Subscription
		token     string
		total     int
		pageCount int
	)

	for {
		page, err := y.FetchPage(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageCount+1, err)
		}
		if pageCount == 0 {
			total = page.TotalResults
		}
		pageCount++

		subs = append(subs, page.Items...)
		y.logger.Debug("fetched subscriptions page", "page", pageCount, "items", len(page.Items), "total", len(subs))

		if progress != nil {
			progress(len(subs), page.TotalResults)
		}

		if page.Last() {
			break
		}
		token = page.NextPageToken
	}

	if len(subs) != total {
		y.logger.Warn("subscription count differs from reported total", "fetched", len(subs), "reported", total)
	}

	if subs == nil {
		subs = []models.Subscription{}
	}
	return subs, nil
}

// IsAuthError reports whether err came from obtaining a token rather than from the API.
func IsAuthError(err error) bool {
	for _, target := range []error{shared.ErrAuthFailed, shared.ErrMissingSecret, shared.ErrNoRefreshToken} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
