package mail

import (
	"fmt"
	"net"
	"strconv"
	"testing"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-imap/v2/imapserver"
	"github.com/emersion/go-imap/v2/imapserver/imapmemserver"
	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// IMAP mock server helpers
// ---------------------------------------------------------------------------

const (
	imapTestUser = "testuser@yahoo.com"
	imapTestPass = "testpass"
)

// newTestIMAPServer starts an in-memory IMAP server with the given extra
// mailboxes (INBOX always exists) and returns the listen address.
func newTestIMAPServer(t *testing.T, mailboxes ...string) string {
	t.Helper()

	memSrv := imapmemserver.New()
	user := imapmemserver.NewUser(imapTestUser, imapTestPass)
	user.Create("INBOX", nil)
	for _, mb := range mailboxes {
		user.Create(mb, nil)
	}
	memSrv.AddUser(user)

	srv := imapserver.New(&imapserver.Options{
		NewSession: func(_ *imapserver.Conn) (imapserver.Session, *imapserver.GreetingData, error) {
			return memSrv.NewSession(), nil, nil
		},
		InsecureAuth: true,
		Caps: imap.CapSet{
			imap.CapIMAP4rev1: {},
		},
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	go srv.Serve(ln)
	t.Cleanup(func() { srv.Close() })

	return ln.Addr().String()
}

// newTestSession dials the test server through the real Session path.
func newTestSession(t *testing.T, addr string) *Session {
	t.Helper()
	host, port := splitHostPort(t, addr)

	s, err := Dial(SessionConfig{
		Host:     host,
		Port:     port,
		Username: imapTestUser,
		Password: imapTestPass,
		Insecure: true,
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// appendTestMail appends a raw RFC 5322 message to the given mailbox via
// a direct IMAP client (not through our wrapper).
func appendTestMail(t *testing.T, addr, mailbox, rawMsg string) {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	c := imapclient.New(conn, nil)
	if err := c.Login(imapTestUser, imapTestPass).Wait(); err != nil {
		t.Fatal(err)
	}

	appendCmd := c.Append(mailbox, int64(len(rawMsg)), nil)
	if _, err := appendCmd.Write([]byte(rawMsg)); err != nil {
		t.Fatal(err)
	}
	if err := appendCmd.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := appendCmd.Wait(); err != nil {
		t.Fatal(err)
	}
	c.Close()
}

// mailboxUIDs returns the UIDs present in a mailbox, ascending, via a
// direct IMAP client so engine tests can verify store state
// independently of the code under test.
func mailboxUIDs(t *testing.T, addr, mailbox string) []imap.UID {
	t.Helper()

	msgs := fetchAll(t, addr, mailbox)
	uids := make([]imap.UID, 0, len(msgs))
	for _, m := range msgs {
		uids = append(uids, m.UID)
	}
	return uids
}

// fetchAll fetches flags/envelope/UID for every message in a mailbox via
// a direct IMAP client.
func fetchAll(t *testing.T, addr, mailbox string) []*imapclient.FetchMessageBuffer {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	c := imapclient.New(conn, nil)
	defer c.Close()
	if err := c.Login(imapTestUser, imapTestPass).Wait(); err != nil {
		t.Fatal(err)
	}
	data, err := c.Select(mailbox, &imap.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		t.Fatal(err)
	}
	if data.NumMessages == 0 {
		return nil
	}

	seqSet := imap.SeqSet{}
	seqSet.AddRange(1, data.NumMessages)
	msgs, err := c.Fetch(seqSet, &imap.FetchOptions{
		Envelope: true,
		Flags:    true,
		UID:      true,
	}).Collect()
	if err != nil {
		t.Fatal(err)
	}
	return msgs
}

// flagsByUID maps UID -> flags for a mailbox, fetched independently.
func flagsByUID(t *testing.T, addr, mailbox string) map[imap.UID][]imap.Flag {
	t.Helper()

	out := make(map[imap.UID][]imap.Flag)
	for _, m := range fetchAll(t, addr, mailbox) {
		out[m.UID] = m.Flags
	}
	return out
}

// splitHostPort splits "host:port" into (host, int port).
func splitHostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatal(err)
	}
	return host, port
}

// makeTestMail builds a minimal RFC 5322 message with the given subject
// and a date offset so listing order is deterministic.
func makeTestMail(subject string, day int) string {
	return "MIME-Version: 1.0\r\n" +
		"From: Some Sender <sender@example.com>\r\n" +
		"To: rcpt@yahoo.com\r\n" +
		"Subject: " + subject + "\r\n" +
		fmt.Sprintf("Date: %02d Feb 2026 08:00:00 +0000\r\n", day) +
		"Message-Id: <" + subject + "@example.com>\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Body of " + subject
}

// testMailMultipart is a multipart/mixed message with text + attachment.
const testMailMultipart = "MIME-Version: 1.0\r\n" +
	"From: sender@example.com\r\n" +
	"To: rcpt@yahoo.com\r\n" +
	"Subject: Multipart Test\r\n" +
	"Date: Mon, 10 Feb 2026 08:00:00 +0000\r\n" +
	"Message-Id: <test-multi@example.com>\r\n" +
	"Content-Type: multipart/mixed; boundary=\"TESTBOUNDARY\"\r\n" +
	"\r\n" +
	"--TESTBOUNDARY\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Plain text body\r\n" +
	"--TESTBOUNDARY\r\n" +
	"Content-Type: application/octet-stream\r\n" +
	"Content-Disposition: attachment; filename=\"test.bin\"\r\n" +
	"\r\n" +
	"BINARYDATA\r\n" +
	"--TESTBOUNDARY--\r\n"
