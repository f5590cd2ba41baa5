package controller

import (
	"context"

	"github.com/mithrel/topviews/internal/ranking"
)

// Drive runs req and its follow-up namespace lookup against src on the
// calling goroutine. It returns the controller's error state.
func Drive(ctx context.Context, c *Controller, src ranking.Source, req *FetchRequest) error {
	if req == nil {
		return c.Err()
	}
	entries, err := src.Rankings(ctx, req.Query)
	if lk := c.RankingsLoaded(req.Gen, entries, err); lk != nil {
		titles, err := src.NamespaceExcludes(ctx, lk.Project, lk.Titles)
		c.NamespaceLoaded(lk.Gen, titles, err)
	}
	return c.Err()
}
