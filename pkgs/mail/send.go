package mail

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/jtokib/yahoo-mail-mcp-server/pkgs/mailerr"
)

// SendConfig holds everything needed for one SMTP submission.
type SendConfig struct {
	Host     string
	Port     int
	Username string

	// Password is an app password used with PLAIN. Ignored when
	// AccessToken is set.
	Password string

	// AccessToken is an OAuth2 bearer token; when set, authentication
	// uses OAUTHBEARER instead of PLAIN.
	AccessToken string
}

// SendOptions describes an outbound email.
type SendOptions struct {
	From     string
	FromName string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string

	// InReplyTo threads the message under an existing Message-ID.
	InReplyTo string
}

// SendMessage composes and submits one email over implicit TLS. Like
// the IMAP side, the connection lives for a single call.
func SendMessage(cfg SendConfig, opts SendOptions) error {
	if len(opts.To) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", mailerr.ErrMissingInput)
	}

	msg, err := buildMessage(opts)
	if err != nil {
		return fmt.Errorf("building message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client, err := smtp.DialTLS(addr, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", mailerr.ErrConnectionFailure, addr, err)
	}
	defer client.Close()

	var auth sasl.Client
	if cfg.AccessToken != "" {
		auth = sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
			Username: cfg.Username,
			Token:    cfg.AccessToken,
			Host:     cfg.Host,
			Port:     cfg.Port,
		})
	} else {
		auth = sasl.NewPlainClient("", cfg.Username, cfg.Password)
	}
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("%w: %v", mailerr.ErrAuthFailed, err)
	}

	recipients := make([]string, 0, len(opts.To)+len(opts.Cc)+len(opts.Bcc))
	recipients = append(recipients, opts.To...)
	recipients = append(recipients, opts.Cc...)
	recipients = append(recipients, opts.Bcc...)

	if err := client.SendMail(opts.From, recipients, msg); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

// buildMessage renders the headers and text/html bodies into an RFC 5322
// message.
func buildMessage(opts SendOptions) (*bytes.Buffer, error) {
	var buf bytes.Buffer

	var header gomail.Header
	header.SetDate(time.Now())
	header.SetSubject(opts.Subject)
	header.SetAddressList("From", []*gomail.Address{{
		Name:    opts.FromName,
		Address: opts.From,
	}})
	header.SetAddressList("To", parseAddresses(opts.To))
	if len(opts.Cc) > 0 {
		header.SetAddressList("Cc", parseAddresses(opts.Cc))
	}

	if opts.InReplyTo != "" {
		header.SetMsgIDList("In-Reply-To", []string{opts.InReplyTo})
		header.SetMsgIDList("References", []string{opts.InReplyTo})
	} else {
		header.Set("Message-ID", generateMessageID(opts.From))
	}

	iw, err := gomail.CreateInlineWriter(&buf, header)
	if err != nil {
		return nil, err
	}

	if opts.TextBody != "" {
		var h gomail.InlineHeader
		h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
		w, err := iw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(opts.TextBody)); err != nil {
			return nil, err
		}
		w.Close()
	}

	if opts.HTMLBody != "" {
		var h gomail.InlineHeader
		h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
		w, err := iw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(opts.HTMLBody)); err != nil {
			return nil, err
		}
		w.Close()
	}

	if err := iw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

func parseAddresses(addrs []string) []*gomail.Address {
	out := make([]*gomail.Address, len(addrs))
	for i, a := range addrs {
		out[i] = &gomail.Address{Address: a}
	}
	return out
}

// generateMessageID produces an RFC 5322 compliant Message-ID using the
// domain extracted from the sender's email address.
// Format: <timestamp.random@domain>
func generateMessageID(fromEmail string) string {
	domain := "localhost"
	if idx := strings.Index(fromEmail, "@"); idx >= 0 {
		domain = fromEmail[idx+1:]
	}

	b := make([]byte, 8)
	_, _ = rand.Read(b)
	randomPart := hex.EncodeToString(b)

	return fmt.Sprintf("<%d.%s@%s>", time.Now().UnixNano(), randomPart, domain)
}
