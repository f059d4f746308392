package types

import "fmt"

// PostFrequency describes how often a feed publishes.
type PostFrequency struct {
	Count   int      `json:"count"`
	PerWeek *float64 `json:"per_week,omitempty"`
	Period  string   `json:"period"` // day, week, month, year
}

// knownFrequencyPeriods lists the periods PostFrequency accepts.
var knownFrequencyPeriods = map[string]bool{
	"day":   true,
	"week":  true,
	"month": true,
	"year":  true,
}

// FeedSubscription is an RSS-like subscription. The id equals the feed URL,
// which makes repeated subscribe calls for the same feed converge on one
// record.
type FeedSubscription struct {
	ID          string `json:"id"`
	RSSURL      string `json:"rss_url"`
	Link        string `json:"link"`
	Domain      string `json:"domain"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`

	PostFrequency *PostFrequency `json:"post_frequency,omitempty"`

	TimeAdded    int64  `json:"time_added"`
	IsSubscribed bool   `json:"is_subscribed,omitempty"`
	LastFetched  *int64 `json:"last_fetched,omitempty"`
}

// EntityID implements Entity.
func (f *FeedSubscription) EntityID() string { return f.ID }

// Validate implements Entity.
func (f *FeedSubscription) Validate() error {
	if f.ID == "" {
		return ErrInvalidID
	}
	if f.RSSURL == "" {
		return fmt.Errorf("%w: subscription %s has empty rss_url", ErrInvalidData, f.ID)
	}
	if f.PostFrequency != nil && !knownFrequencyPeriods[f.PostFrequency.Period] {
		return fmt.Errorf("%w: subscription %s has unknown frequency period %q",
			ErrInvalidData, f.ID, f.PostFrequency.Period)
	}
	return nil
}
