package mail

import (
	"context"
	"testing"

	"github.com/emersion/go-imap/v2"
)

func searchFixture(t *testing.T) (addr string) {
	t.Helper()
	addr = newTestIMAPServer(t)
	appendTestMail(t, addr, "INBOX", makeTestMail("Quarterly report", 1))
	appendTestMail(t, addr, "INBOX", makeTestMail("Lunch plans", 2))
	appendTestMail(t, addr, "INBOX", makeTestMail("Report follow-up", 3))
	return addr
}

func TestSearchMessages_BySubject(t *testing.T) {
	addr := searchFixture(t)
	s := newTestSession(t, addr)

	result, err := s.SearchMessages(context.Background(), "INBOX", "report", SearchFilters{}, 10)
	if err != nil {
		t.Fatalf("SearchMessages() error: %v", err)
	}
	if result.TotalMatches != 2 {
		t.Errorf("TotalMatches = %d, want 2", result.TotalMatches)
	}
	if result.Returned != 2 || len(result.Emails) != 2 {
		t.Errorf("Returned = %d with %d emails, want 2", result.Returned, len(result.Emails))
	}
}

func TestSearchMessages_NoMatches(t *testing.T) {
	addr := searchFixture(t)
	s := newTestSession(t, addr)

	result, err := s.SearchMessages(context.Background(), "INBOX", "nonexistent-topic", SearchFilters{}, 10)
	if err != nil {
		t.Fatalf("SearchMessages() error: %v", err)
	}
	if result.TotalMatches != 0 || len(result.Emails) != 0 {
		t.Errorf("expected no matches, got %d/%d", result.TotalMatches, len(result.Emails))
	}
}

func TestSearchMessages_SenderFilter(t *testing.T) {
	addr := searchFixture(t)
	s := newTestSession(t, addr)

	result, err := s.SearchMessages(context.Background(), "INBOX", "",
		SearchFilters{Sender: "sender@example.com"}, 10)
	if err != nil {
		t.Fatalf("SearchMessages() error: %v", err)
	}
	if result.TotalMatches != 3 {
		t.Errorf("TotalMatches = %d, want 3", result.TotalMatches)
	}

	result, err = s.SearchMessages(context.Background(), "INBOX", "",
		SearchFilters{Sender: "nobody@else.com"}, 10)
	if err != nil {
		t.Fatalf("SearchMessages() error: %v", err)
	}
	if result.TotalMatches != 0 {
		t.Errorf("TotalMatches = %d, want 0", result.TotalMatches)
	}
}

func TestSearchMessages_UnreadOnly(t *testing.T) {
	addr := searchFixture(t)
	uids := mailboxUIDs(t, addr, "INBOX")

	s := newTestSession(t, addr)
	if _, err := s.ApplyBatch(context.Background(), "INBOX",
		[]imap.UID{uids[0]}, AddFlag(imap.FlagSeen)); err != nil {
		t.Fatal(err)
	}

	result, err := s.SearchMessages(context.Background(), "INBOX", "",
		SearchFilters{UnreadOnly: true}, 10)
	if err != nil {
		t.Fatalf("SearchMessages() error: %v", err)
	}
	if result.TotalMatches != 2 {
		t.Errorf("TotalMatches = %d, want 2 unread", result.TotalMatches)
	}
	for _, e := range result.Emails {
		if e.UID == uint32(uids[0]) {
			t.Errorf("seen message %d returned by unread-only search", e.UID)
		}
	}
}

func TestSearchMessages_LimitKeepsNewest(t *testing.T) {
	addr := searchFixture(t)
	s := newTestSession(t, addr)

	result, err := s.SearchMessages(context.Background(), "INBOX", "", SearchFilters{}, 2)
	if err != nil {
		t.Fatalf("SearchMessages() error: %v", err)
	}
	if result.TotalMatches != 3 {
		t.Errorf("TotalMatches = %d, want 3 (full match count)", result.TotalMatches)
	}
	if result.Returned != 2 {
		t.Errorf("Returned = %d, want 2", result.Returned)
	}

	// The two newest messages survive the cut.
	uids := mailboxUIDs(t, addr, "INBOX")
	got := map[uint32]bool{}
	for _, e := range result.Emails {
		got[e.UID] = true
	}
	if !got[uint32(uids[1])] || !got[uint32(uids[2])] {
		t.Errorf("expected newest UIDs %v, got %v", uids[1:], result.Emails)
	}
}

func TestSearchMessages_CarriesStableUIDs(t *testing.T) {
	addr := searchFixture(t)
	s := newTestSession(t, addr)

	result, err := s.SearchMessages(context.Background(), "INBOX", "Lunch", SearchFilters{}, 10)
	if err != nil {
		t.Fatalf("SearchMessages() error: %v", err)
	}
	if len(result.Emails) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Emails))
	}

	// The UID from the search result must be usable in a follow-up read.
	read, err := s.ReadMessages(context.Background(), "INBOX",
		[]imap.UID{imap.UID(result.Emails[0].UID)})
	if err != nil {
		t.Fatalf("ReadMessages() error: %v", err)
	}
	if len(read.Emails) != 1 || read.Emails[0].Subject != "Lunch plans" {
		t.Fatalf("search UID did not resolve to the same message: %+v", read)
	}
}
