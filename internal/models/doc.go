// Package models defines the domain entities shared by the ytsubs pipeline.
//
// The package contains two types:
//   - [Subscription] : a channel the user is subscribed to, identified by its channel ID
//   - [SubscriptionPage] : one page of the subscriptions listing, discarded after merging
//
// Feed and channel URLs are derived from the channel ID on demand and never stored,
// see [Subscription.FeedURL] and [Subscription.ChannelURL]. [ChannelIDFromFeedURL]
// recovers the channel ID from a generated feed URL.
package models
