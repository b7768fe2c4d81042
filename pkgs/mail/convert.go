package mail

import (
	"sort"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// emailFromBuffer converts a fetched message buffer into an Email.
func emailFromBuffer(buf *imapclient.FetchMessageBuffer) *Email {
	e := &Email{
		UID:    uint32(buf.UID),
		SeqNum: buf.SeqNum,
		Size:   buf.RFC822Size,
	}

	if env := buf.Envelope; env != nil {
		e.Subject = env.Subject
		e.Date = env.Date
		if len(env.From) > 0 {
			e.From = formatAddress(env.From[0])
		}
		for _, to := range env.To {
			e.To = append(e.To, formatAddress(to))
		}
	}

	for _, f := range buf.Flags {
		e.Flags = append(e.Flags, string(f))
	}

	if buf.BodyStructure != nil {
		e.HasAttachments = structureHasAttachments(buf.BodyStructure)
	}

	return e
}

// formatAddress renders an IMAP address as "Name <addr>" or the bare
// address when no display name is present.
func formatAddress(a imap.Address) string {
	if a.Name != "" {
		return a.Name + " <" + a.Addr() + ">"
	}
	return a.Addr()
}

// structureHasAttachments walks a BODYSTRUCTURE looking for a part with
// an attachment disposition or a filename. This avoids fetching message
// bodies just to answer "does it have attachments".
func structureHasAttachments(bs imap.BodyStructure) bool {
	found := false
	bs.Walk(func(path []int, part imap.BodyStructure) bool {
		if found {
			return false
		}
		if disp := part.Disposition(); disp != nil {
			if strings.EqualFold(disp.Value, "attachment") {
				found = true
				return false
			}
			if _, ok := disp.Params["filename"]; ok {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// hasFlag reports whether flags contains the given IMAP flag.
func hasFlag(flags []imap.Flag, want imap.Flag) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

// sortEmailsByUID orders emails ascending by UID for deterministic
// output regardless of server return order.
func sortEmailsByUID(emails []*Email) {
	sort.Slice(emails, func(i, j int) bool { return emails[i].UID < emails[j].UID })
}

// sortEmailsNewestFirst orders emails by date descending, falling back
// to UID descending for identical dates.
func sortEmailsNewestFirst(emails []*Email) {
	sort.Slice(emails, func(i, j int) bool {
		if !emails[i].Date.Equal(emails[j].Date) {
			return emails[i].Date.After(emails[j].Date)
		}
		return emails[i].UID > emails[j].UID
	})
}
