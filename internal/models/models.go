package models

import (
	"fmt"
	"net/url"
)

// YouTubeHost is the host used for generated feed and channel URLs.
const YouTubeHost = "www.youtube.com"

// Subscription is a single channel subscription of the authenticated user.
type Subscription struct {
	Title     string `json:"title"`
	ChannelID string `json:"channel_id"`
}

// SubscriptionPage is one page of the subscriptions listing.
type SubscriptionPage struct {
	Items         []Subscription
	NextPageToken string // Empty on the last page
	TotalResults  int
	PerPage       int
}

// Last reports whether no further pages follow this one.
func (p SubscriptionPage) Last() bool {
	return p.NextPageToken == ""
}

// FeedURL returns the channel's RSS feed URL.
func (s Subscription) FeedURL() string {
	return ChannelFeedURL(s.ChannelID)
}

// ChannelURL returns the channel's public page URL.
func (s Subscription) ChannelURL() string {
	return ChannelPageURL(s.ChannelID)
}

// ChannelFeedURL builds the videos feed URL for channelID.
func ChannelFeedURL(channelID string) string {
	return fmt.Sprintf("https://%s/feeds/videos.xml?channel_id=%s", YouTubeHost, channelID)
}

// ChannelPageURL builds the channel page URL for channelID.
func ChannelPageURL(channelID string) string {
	return fmt.Sprintf("https://%s/channel/%s", YouTubeHost, channelID)
}

// ChannelIDFromFeedURL extracts the channel ID from a feed URL built by [ChannelFeedURL].
func ChannelIDFromFeedURL(feedURL string) (string, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %q: %w", feedURL, err)
	}
	if u.Host != YouTubeHost || u.Path != "/feeds/videos.xml" {
		return "", fmt.Errorf("not a channel feed url: %s", feedURL)
	}

	id := u.Query().Get("channel_id")
	if id == "" {
		return "", fmt.Errorf("feed url has no channel_id: %s", feedURL)
	}
	return id, nil
}
