package mail

import (
	"context"
	"fmt"

	"github.com/emersion/go-imap/v2"
)

// SearchMessages finds messages whose subject or sender contains query,
// narrowed by the optional filters, and returns the newest limit hits
// enriched with envelope, size, flags and attachment presence.
// TotalMatches counts every hit; Returned counts the enriched page.
func (s *Session) SearchMessages(ctx context.Context, folder, query string, filters SearchFilters, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	if _, err := s.selectFolder(folder, true); err != nil {
		return nil, err
	}

	criteria := buildSearchCriteria(query, filters)

	searchData, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching folder %s: %w", s.selected, err)
	}

	uids := searchData.AllUIDs()
	result := &SearchResult{
		Emails:       []*Email{},
		TotalMatches: len(uids),
	}
	if len(uids) == 0 {
		return result, nil
	}

	// UIDs ascend with arrival order; the tail of the list is newest.
	if len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	uidSet := imap.UIDSetNum(uids...)
	msgs, err := s.client.Fetch(uidSet, &imap.FetchOptions{
		Envelope:      true,
		Flags:         true,
		UID:           true,
		RFC822Size:    true,
		BodyStructure: &imap.FetchItemBodyStructure{},
	}).Collect()
	if err != nil {
		return nil, fmt.Errorf("fetching search results: %w", err)
	}

	for _, buf := range msgs {
		result.Emails = append(result.Emails, emailFromBuffer(buf))
	}
	sortEmailsNewestFirst(result.Emails)
	result.Returned = len(result.Emails)

	return result, nil
}

// buildSearchCriteria translates the query and filters into IMAP SEARCH
// criteria. The free-text query matches subject OR sender; the sender
// filter is a further AND constraint.
func buildSearchCriteria(query string, f SearchFilters) *imap.SearchCriteria {
	criteria := &imap.SearchCriteria{}

	if query != "" {
		criteria.Or = append(criteria.Or, [2]imap.SearchCriteria{
			{Header: []imap.SearchCriteriaHeaderField{{Key: "Subject", Value: query}}},
			{Header: []imap.SearchCriteriaHeaderField{{Key: "From", Value: query}}},
		})
	}
	if f.Sender != "" {
		criteria.Header = append(criteria.Header, imap.SearchCriteriaHeaderField{
			Key: "From", Value: f.Sender,
		})
	}
	if f.UnreadOnly {
		criteria.NotFlag = append(criteria.NotFlag, imap.FlagSeen)
	}
	if !f.DateFrom.IsZero() {
		criteria.Since = f.DateFrom
	}
	if !f.DateTo.IsZero() {
		criteria.Before = f.DateTo
	}

	return criteria
}
