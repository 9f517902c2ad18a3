// Package constants provides a centralized location for all configuration
// values and magic numbers used throughout the ghfeed application.
package constants

import "time"

// Feed paging constants
const (
	// DefaultPerPage is the page size requested from the received events API.
	DefaultPerPage = 30

	// MaxPerPage is the largest page size the events API accepts.
	MaxPerPage = 100

	// MaxListedItems caps the commits of a push and the pages of a wiki
	// edit that are listed in a card body.
	MaxListedItems = 9

	// ShortSHALength is the length of abbreviated commit SHAs.
	ShortSHALength = 7
)

// Mount constants
const (
	// ContainerID is the id of the section that holds the rendered cards.
	ContainerID = "ghfeed-received-events"

	// LoadMoreID is the id of the "load more" affordance.
	LoadMoreID = "ghfeed-load-more"

	// DefaultSidebarSelector locates the secondary sidebar of the dashboard.
	DefaultSidebarSelector = "aside.feed-right-column"

	// DefaultMainSelector locates the primary content region of the dashboard.
	DefaultMainSelector = "div.news"

	// StickToBottomThreshold is the distance (in lines or pixels, whatever
	// unit the viewport uses) under which an append keeps the view pinned
	// to the bottom.
	StickToBottomThreshold = 3
)

// Readiness constants
const (
	// ReadinessTimeout bounds every readiness wait during startup.
	ReadinessTimeout = 5 * time.Second

	// ReadinessInterval is the polling interval of readiness waits.
	ReadinessInterval = 100 * time.Millisecond
)

// Notification constants
const (
	// NotifyMaxLength is the hard cap on notification text.
	NotifyMaxLength = 200

	// NotifyTitle is the title used for desktop notifications.
	NotifyTitle = "ghfeed"
)

// TUI update and display constants
const (
	// HeaderLines is the number of lines used for the feed view header.
	HeaderLines = 2

	// FooterLines is the number of lines used for the feed view footer.
	FooterLines = 3
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)
