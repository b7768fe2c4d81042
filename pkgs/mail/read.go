package mail

import (
	"context"
	"fmt"
	"sort"

	"github.com/emersion/go-imap/v2"

	"github.com/jtokib/yahoo-mail-mcp-server/pkgs/mailerr"
)

// ReadMessages fetches full content for every requested UID in one bulk
// fetch. The folder is selected read-only and bodies are fetched with
// BODY.PEEK so reading never flips the \Seen flag.
//
// The server silently skips UIDs that do not exist, so after the fetch
// the requested set is reconciled against the returned set: absent UIDs
// are reported in MissingUIDs rather than dropped. Results are sorted by
// UID ascending regardless of server return order.
func (s *Session) ReadMessages(ctx context.Context, folder string, uids []imap.UID) (*ReadResult, error) {
	if len(uids) == 0 {
		return nil, mailerr.ErrEmptyBatch
	}

	if _, err := s.selectFolder(folder, true); err != nil {
		return nil, err
	}

	bodySection := &imap.FetchItemBodySection{
		Peek: true, // don't mark as read
	}
	uidSet := imap.UIDSetNum(uids...)

	msgs, err := s.client.Fetch(uidSet, &imap.FetchOptions{
		Envelope:      true,
		Flags:         true,
		UID:           true,
		RFC822Size:    true,
		BodyStructure: &imap.FetchItemBodyStructure{},
		BodySection:   []*imap.FetchItemBodySection{bodySection},
	}).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetching messages from %s: %w", s.selected, err)
	}

	result := &ReadResult{Emails: []*Email{}}

	returned := make(map[imap.UID]bool, len(msgs))
	for _, buf := range msgs {
		returned[buf.UID] = true

		e := emailFromBuffer(buf)
		if raw := buf.FindBodySection(bodySection); raw != nil {
			parseMessageBody(e, raw)
		}
		result.Emails = append(result.Emails, e)
	}

	for _, uid := range uids {
		if !returned[uid] {
			result.MissingUIDs = append(result.MissingUIDs, uint32(uid))
		}
	}
	sort.Slice(result.MissingUIDs, func(i, j int) bool {
		return result.MissingUIDs[i] < result.MissingUIDs[j]
	})
	sortEmailsByUID(result.Emails)

	if len(result.MissingUIDs) > 0 {
		s.log.Debug().
			Str("folder", s.selected).
			Uints32("missing", result.MissingUIDs).
			Msg("requested UIDs not present on server")
	}

	return result, nil
}
