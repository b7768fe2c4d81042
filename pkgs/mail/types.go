package mail

import (
	"time"
)

// Email represents a message as returned by the listing, search and read
// engines. UID is the stable identifier a client must use for follow-up
// read or mutate calls. SeqNum is the ephemeral position within the folder
// at fetch time; it is informational only and must never be used to target
// a mutation.
type Email struct {
	UID    uint32 `json:"uid"`
	SeqNum uint32 `json:"seq_num,omitempty"`

	From    string    `json:"from"`
	To      []string  `json:"to,omitempty"`
	Subject string    `json:"subject"`
	Date    time.Time `json:"date"`

	Size           int64    `json:"size_bytes"`
	Flags          []string `json:"flags,omitempty"`
	HasAttachments bool     `json:"has_attachments"`

	// Content fields, populated by ReadMessages only.
	TextBody    string       `json:"text_body,omitempty"`
	HTMLBody    string       `json:"html_body,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment describes an attachment part of a fully-fetched message.
// Content bytes are not carried; only metadata.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// Folder describes a mailbox as returned by LIST.
type Folder struct {
	Name      string   `json:"name"`
	Delimiter string   `json:"delimiter,omitempty"`
	Flags     []string `json:"flags,omitempty"`
}

// ListResult is the outcome of listing a folder window.
type ListResult struct {
	Emails     []*Email `json:"emails"`
	TotalCount int      `json:"total_count"`
	Offset     int      `json:"offset"`
	Limit      int      `json:"limit"`
	Folder     string   `json:"folder"`
}

// SearchResult is the outcome of a search.
type SearchResult struct {
	Emails       []*Email `json:"emails"`
	TotalMatches int      `json:"total_matches"`
	Returned     int      `json:"returned"`
}

// ReadResult is the outcome of fetching full content for a UID set.
// MissingUIDs lists requested UIDs the server did not return; they are
// reported explicitly, never silently omitted.
type ReadResult struct {
	Emails      []*Email `json:"emails"`
	MissingUIDs []uint32 `json:"missing_uids,omitempty"`
}

// BatchFailure records why a single UID in a batch was not mutated.
type BatchFailure struct {
	UID    uint32 `json:"uid"`
	Reason string `json:"reason"`
}

// BatchResult is the outcome of applying one mutation across a UID set.
// Every deduplicated input UID appears exactly once, either in Succeeded
// or in Failed. SucceededCount is derived, never assumed equal to
// RequestedCount.
type BatchResult struct {
	Succeeded      []uint32       `json:"succeeded_uids"`
	Failed         []BatchFailure `json:"failed_uids,omitempty"`
	RequestedCount int            `json:"requested_count"`
}

// SucceededCount returns the number of UIDs actually mutated.
func (r *BatchResult) SucceededCount() int { return len(r.Succeeded) }

// SearchFilters narrows a search beyond the free-text query.
type SearchFilters struct {
	// DateFrom restricts matches to messages on or after this day.
	DateFrom time.Time
	// DateTo restricts matches to messages before this day.
	DateTo time.Time
	// Sender restricts matches to a From substring.
	Sender string
	// UnreadOnly restricts matches to messages without the \Seen flag.
	UnreadOnly bool
}
