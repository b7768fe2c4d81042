// Package mail implements the IMAP session and the listing, search, read
// and batch-mutation engines behind the MCP tools. One Session serves one
// tool call: dial, operate, close. No connection is reused across calls.
package mail

import (
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-sasl"
	"github.com/rs/zerolog"

	"github.com/jtokib/yahoo-mail-mcp-server/pkgs/mailerr"
)

// DefaultDialTimeout bounds session establishment when the config does
// not specify one.
const DefaultDialTimeout = 30 * time.Second

// SessionConfig holds everything needed to open one IMAP session.
type SessionConfig struct {
	Host     string
	Port     int
	Username string

	// Password is an app password used with LOGIN. Ignored when
	// AccessToken is set.
	Password string

	// AccessToken is an OAuth2 bearer token; when set, authentication
	// uses OAUTHBEARER instead of LOGIN.
	AccessToken string

	// Insecure dials without TLS. Only used by tests against a local
	// in-memory server.
	Insecure bool

	DialTimeout time.Duration

	Logger zerolog.Logger
}

// Session is an authenticated IMAP connection plus the folder-selection
// state for one tool call.
type Session struct {
	client *imapclient.Client
	log    zerolog.Logger

	selected string
	readOnly bool
}

// Dial connects, authenticates and returns a ready Session. Connection
// establishment is bounded by cfg.DialTimeout; a timeout is reported as
// mailerr.ErrConnectionTimeout so callers can surface the retry hint.
func Dial(cfg SessionConfig) (*Session, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, classifyDialError(addr, err)
	}

	if !cfg.Insecure {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: cfg.Host})
		tlsConn.SetDeadline(time.Now().Add(timeout))
		if err := tlsConn.Handshake(); err != nil {
			conn.Close()
			return nil, classifyDialError(addr, err)
		}
		tlsConn.SetDeadline(time.Time{})
		conn = tlsConn
	}

	client := imapclient.New(conn, &imapclient.Options{})

	if cfg.AccessToken != "" {
		auth := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
			Username: cfg.Username,
			Token:    cfg.AccessToken,
			Host:     cfg.Host,
			Port:     cfg.Port,
		})
		if err := client.Authenticate(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("%w: %v", mailerr.ErrAuthFailed, err)
		}
	} else {
		if err := client.Login(cfg.Username, cfg.Password).Wait(); err != nil {
			client.Close()
			return nil, fmt.Errorf("%w: %v", mailerr.ErrAuthFailed, err)
		}
	}

	cfg.Logger.Debug().Str("addr", addr).Str("user", cfg.Username).Msg("IMAP session established")

	return &Session{
		client: client,
		log:    cfg.Logger,
	}, nil
}

// Close logs out and releases the connection.
func (s *Session) Close() error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Logout().Wait(); err != nil {
		// Logout failing is not worth surfacing; force-close instead.
		s.log.Debug().Err(err).Msg("IMAP logout failed, closing connection")
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// selectFolder opens folder in the requested access mode. Read/listing
// paths select read-only so the server never flips \Seen or other flags
// as a side effect; mutation paths require read-write. Failure means the
// folder is missing or inaccessible and is reported before any per-UID
// work happens.
func (s *Session) selectFolder(folder string, readOnly bool) (*imap.SelectData, error) {
	if folder == "" {
		folder = "INBOX"
	}

	data, err := s.client.Select(folder, &imap.SelectOptions{ReadOnly: readOnly}).Wait()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", mailerr.ErrFolderUnavailable, folder, err)
	}

	s.selected = folder
	s.readOnly = readOnly
	return data, nil
}

// classifyDialError distinguishes timeouts from other connection
// failures. A timeout frequently means the remote session went idle or
// the host was asleep, so the message carries a retry hint.
func classifyDialError(addr string, err error) error {
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return fmt.Errorf("%w connecting to %s: %v (the server may have been idle; retrying usually succeeds)",
			mailerr.ErrConnectionTimeout, addr, err)
	}
	return fmt.Errorf("%w: %s: %v", mailerr.ErrConnectionFailure, addr, err)
}
