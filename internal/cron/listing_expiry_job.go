package cron

import (
	"context"
	"fmt"
	"time"
)

type listingExpirer interface {
	ExpireListings(ctx context.Context, now time.Time) (int64, error)
}

// ListingExpiryJob flips active listings past their validity window to
// expired.
type ListingExpiryJob struct {
	listings listingExpirer
}

// NewListingExpiryJob builds the expiry job.
func NewListingExpiryJob(listings listingExpirer) (*ListingExpiryJob, error) {
	if listings == nil {
		return nil, fmt.Errorf("listings service required")
	}
	return &ListingExpiryJob{listings: listings}, nil
}

// Name identifies the job in logs and metrics.
func (j *ListingExpiryJob) Name() string {
	return "listing_expiry"
}

// Run executes one expiry sweep.
func (j *ListingExpiryJob) Run(ctx context.Context) error {
	_, err := j.listings.ExpireListings(ctx, time.Now())
	return err
}
