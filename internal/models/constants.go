package models

const (
	// DefaultPageSize is used when a list endpoint gets no size.
	DefaultPageSize = 20

	// DefaultRequestsPageSize is the page size for other users' item requests.
	DefaultRequestsPageSize = 10

	// UserIDHeader carries the caller's identity. It is trusted as-is.
	UserIDHeader = "X-Sharer-User-Id"

	// WireTimeLayout is the zone-less timestamp layout used on the wire.
	WireTimeLayout = "2006-01-02T15:04:05"
)
