package mail

import (
	"context"
	"fmt"

	"github.com/emersion/go-imap/v2"
)

// DefaultListLimit is the page size used when the caller does not ask
// for a specific count.
const DefaultListLimit = 20

// ListMessages returns one page of a folder's messages, windowed from
// the newest message: offset 0 is the most recent page. A window lying
// entirely beyond the mailbox yields an empty page carrying the true
// total, not an error.
func (s *Session) ListMessages(ctx context.Context, folder string, limit, offset int) (*ListResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	data, err := s.selectFolder(folder, true)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Emails:     []*Email{},
		TotalCount: int(data.NumMessages),
		Offset:     offset,
		Limit:      limit,
		Folder:     s.selected,
	}
	if result.TotalCount == 0 {
		return result, nil
	}

	// Sequence numbers run oldest (1) to newest (NumMessages); the
	// requested window counts back from the newest.
	end := result.TotalCount - offset
	if end < 1 {
		return result, nil
	}
	start := end - limit + 1
	if start < 1 {
		start = 1
	}

	seqSet := imap.SeqSet{}
	seqSet.AddRange(uint32(start), uint32(end))

	msgs, err := s.client.Fetch(seqSet, &imap.FetchOptions{
		Envelope:      true,
		Flags:         true,
		UID:           true,
		RFC822Size:    true,
		BodyStructure: &imap.FetchItemBodyStructure{},
	}).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetching folder %s: %w", s.selected, err)
	}

	for _, buf := range msgs {
		result.Emails = append(result.Emails, emailFromBuffer(buf))
	}
	sortEmailsNewestFirst(result.Emails)

	return result, nil
}

// ListFolders enumerates every mailbox visible to the account.
func (s *Session) ListFolders(ctx context.Context) ([]Folder, error) {
	mailboxes, err := s.client.List("", "*", &imap.ListOptions{}).Collect()
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}

	folders := make([]Folder, 0, len(mailboxes))
	for _, mb := range mailboxes {
		f := Folder{Name: mb.Mailbox}
		if mb.Delim != 0 {
			f.Delimiter = string(mb.Delim)
		}
		for _, attr := range mb.Attrs {
			f.Flags = append(f.Flags, string(attr))
		}
		folders = append(folders, f)
	}
	return folders, nil
}
