package ghclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spiffcs/ghfeed/internal/constants"
	"github.com/spiffcs/ghfeed/internal/log"
	"github.com/spiffcs/ghfeed/internal/model"
)

// ReceivedEvents fetches one page of the events received by username.
// Pages are 1-based. HasNext follows the rel="next" link of the response.
func (c *Client) ReceivedEvents(ctx context.Context, username string, page, perPage int) (*model.EventPage, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = constants.DefaultPerPage
	}
	if perPage > constants.MaxPerPage {
		perPage = constants.MaxPerPage
	}

	u := fmt.Sprintf("users/%s/received_events?per_page=%d&page=%d", url.PathEscape(username), perPage, page)
	req, err := c.client.NewRequest("GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build received events request: %w", err)
	}

	var events []*model.Event
	resp, err := c.client.Do(ctx, req, &events)
	if err != nil {
		return nil, classify(resp, fmt.Errorf("failed to fetch received events page %d: %w", page, err))
	}

	log.Debug("fetched received events", "user", username, "page", page, "count", len(events), "next", resp.NextPage)

	return &model.EventPage{
		Events:   events,
		Page:     page,
		HasNext:  resp.NextPage != 0,
		LastPage: resp.LastPage,
	}, nil
}
