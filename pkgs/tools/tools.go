// Package tools registers the MCP tools and translates tool calls into
// mail engine operations. Each call runs against its own IMAP session:
// validate arguments, dial, operate, close. No session or token state is
// shared across calls.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/jtokib/yahoo-mail-mcp-server/pkgs/config"
	"github.com/jtokib/yahoo-mail-mcp-server/pkgs/mail"
)

// Handler carries the per-process dependencies for the tool handlers.
// The dial function is swappable so tests can point the handlers at an
// in-memory IMAP server.
type Handler struct {
	cfg  *config.Config
	log  zerolog.Logger
	dial func() (*mail.Session, error)
	send func(mail.SendOptions) error
}

// New builds a Handler wired to the configured Yahoo endpoints.
func New(cfg *config.Config, log zerolog.Logger) *Handler {
	h := &Handler{cfg: cfg, log: log}
	h.dial = func() (*mail.Session, error) {
		return mail.Dial(mail.SessionConfig{
			Host:        cfg.IMAP.Host,
			Port:        cfg.IMAP.Port,
			Username:    cfg.Email,
			Password:    cfg.AppPassword,
			AccessToken: cfg.AccessToken,
			DialTimeout: cfg.DialTimeout(),
			Logger:      log,
		})
	}
	h.send = func(opts mail.SendOptions) error {
		return mail.SendMessage(mail.SendConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.Email,
			Password:    cfg.AppPassword,
			AccessToken: cfg.AccessToken,
		}, opts)
	}
	return h
}

// Register adds every tool to the MCP server.
func (h *Handler) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_emails",
		Description: "List emails in a folder, newest first, with stable UIDs for follow-up calls.",
	}, h.listEmails)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_emails",
		Description: "Fetch full content for the given UIDs. UIDs that no longer exist are reported in missing_uids.",
	}, h.readEmails)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_emails",
		Description: "Search a folder by subject/sender substring with optional date, sender and unread filters.",
	}, h.searchEmails)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mutate_emails",
		Description: "Apply one operation (markRead, markUnread, flag, unflag, archive, delete, moveTo) to a set of UIDs with per-UID success reporting.",
	}, h.mutateEmails)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_folders",
		Description: "List all mail folders.",
	}, h.listFolders)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_email",
		Description: "Send an email via Yahoo SMTP.",
	}, h.sendEmail)
}

// ListArgs are the arguments for list_emails.
type ListArgs struct {
	Count  int    `json:"count,omitempty" jsonschema:"maximum number of emails to return (default 20)"`
	Folder string `json:"folder,omitempty" jsonschema:"folder to list (default INBOX)"`
	Offset int    `json:"offset,omitempty" jsonschema:"how many messages to skip, counted from the newest"`
}

func (h *Handler) listEmails(ctx context.Context, req *mcp.CallToolRequest, args ListArgs) (*mcp.CallToolResult, *mail.ListResult, error) {
	s, err := h.dial()
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()

	result, err := s.ListMessages(ctx, args.Folder, args.Count, args.Offset)
	if err != nil {
		return nil, nil, err
	}
	h.log.Info().Str("tool", "list_emails").Str("folder", result.Folder).
		Int("total", result.TotalCount).Int("returned", len(result.Emails)).Msg("tool call")
	return nil, result, nil
}

// ReadArgs are the arguments for read_emails. UIDs is validated before
// any connection is opened.
type ReadArgs struct {
	UIDs   any    `json:"uids" jsonschema:"list of message UIDs to read"`
	Folder string `json:"folder,omitempty" jsonschema:"folder containing the messages (default INBOX)"`
}

func (h *Handler) readEmails(ctx context.Context, req *mcp.CallToolRequest, args ReadArgs) (*mcp.CallToolResult, *mail.ReadResult, error) {
	uids, err := mail.ValidateUIDs(args.UIDs)
	if err != nil {
		return nil, nil, err
	}

	s, err := h.dial()
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()

	result, err := s.ReadMessages(ctx, args.Folder, uids)
	if err != nil {
		return nil, nil, err
	}
	h.log.Info().Str("tool", "read_emails").Int("requested", len(uids)).
		Int("returned", len(result.Emails)).Int("missing", len(result.MissingUIDs)).Msg("tool call")
	return nil, result, nil
}

// SearchArgs are the arguments for search_emails.
type SearchArgs struct {
	Query      string `json:"query,omitempty" jsonschema:"substring matched against subject or sender"`
	DateFrom   string `json:"date_from,omitempty" jsonschema:"only messages on or after this date (YYYY-MM-DD)"`
	DateTo     string `json:"date_to,omitempty" jsonschema:"only messages before this date (YYYY-MM-DD)"`
	Sender     string `json:"sender,omitempty" jsonschema:"only messages whose From matches this substring"`
	UnreadOnly bool   `json:"unread_only,omitempty" jsonschema:"only messages without the Seen flag"`
	Count      int    `json:"count,omitempty" jsonschema:"maximum number of results (default 20)"`
	Folder     string `json:"folder,omitempty" jsonschema:"folder to search (default INBOX)"`
}

func (h *Handler) searchEmails(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, *mail.SearchResult, error) {
	filters, err := parseFilters(args)
	if err != nil {
		return nil, nil, err
	}

	s, err := h.dial()
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()

	result, err := s.SearchMessages(ctx, args.Folder, args.Query, filters, args.Count)
	if err != nil {
		return nil, nil, err
	}
	h.log.Info().Str("tool", "search_emails").Str("query", args.Query).
		Int("matches", result.TotalMatches).Int("returned", result.Returned).Msg("tool call")
	return nil, result, nil
}

// MutateArgs are the arguments for mutate_emails.
type MutateArgs struct {
	UIDs              any    `json:"uids" jsonschema:"list of message UIDs to mutate"`
	Folder            string `json:"folder,omitempty" jsonschema:"folder containing the messages (default INBOX)"`
	Operation         string `json:"operation" jsonschema:"one of markRead, markUnread, flag, unflag, archive, delete, moveTo"`
	DestinationFolder string `json:"destination_folder,omitempty" jsonschema:"target folder, required for moveTo"`
}

// MutateOutput is the result of mutate_emails. SucceededCount always
// reflects verified mutations, never the requested count.
type MutateOutput struct {
	SucceededCount int                 `json:"succeeded_count"`
	RequestedCount int                 `json:"requested_count"`
	SucceededUIDs  []uint32            `json:"succeeded_uids"`
	Failed         []mail.BatchFailure `json:"failed_uids,omitempty"`
	Message        string              `json:"message"`
}

func (h *Handler) mutateEmails(ctx context.Context, req *mcp.CallToolRequest, args MutateArgs) (*mcp.CallToolResult, *MutateOutput, error) {
	// Validation happens before any folder is opened.
	uids, err := mail.ValidateUIDs(args.UIDs)
	if err != nil {
		return nil, nil, err
	}
	mutation, expunge, err := mutationFor(args.Operation, args.Folder, args.DestinationFolder)
	if err != nil {
		return nil, nil, err
	}

	s, err := h.dial()
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()

	result, err := s.ApplyBatch(ctx, args.Folder, uids, mutation)
	if err != nil {
		return nil, nil, err
	}
	if expunge && result.SucceededCount() > 0 {
		if err := s.Expunge(); err != nil {
			return nil, nil, err
		}
	}

	out := &MutateOutput{
		SucceededCount: result.SucceededCount(),
		RequestedCount: result.RequestedCount,
		SucceededUIDs:  result.Succeeded,
		Failed:         result.Failed,
		Message:        summarize(args.Operation, result),
	}
	h.log.Info().Str("tool", "mutate_emails").Str("operation", args.Operation).
		Int("requested", out.RequestedCount).Int("succeeded", out.SucceededCount).Msg("tool call")
	return nil, out, nil
}

// FoldersOutput is the result of list_folders.
type FoldersOutput struct {
	Folders []mail.Folder `json:"folders"`
}

func (h *Handler) listFolders(ctx context.Context, req *mcp.CallToolRequest, args struct{}) (*mcp.CallToolResult, *FoldersOutput, error) {
	s, err := h.dial()
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()

	folders, err := s.ListFolders(ctx)
	if err != nil {
		return nil, nil, err
	}
	h.log.Info().Str("tool", "list_folders").Int("count", len(folders)).Msg("tool call")
	return nil, &FoldersOutput{Folders: folders}, nil
}

// SendArgs are the arguments for send_email.
type SendArgs struct {
	To        []string `json:"to" jsonschema:"recipient addresses"`
	Cc        []string `json:"cc,omitempty" jsonschema:"CC addresses"`
	Bcc       []string `json:"bcc,omitempty" jsonschema:"BCC addresses"`
	Subject   string   `json:"subject" jsonschema:"subject line"`
	TextBody  string   `json:"text_body,omitempty" jsonschema:"plain text body"`
	HTMLBody  string   `json:"html_body,omitempty" jsonschema:"HTML body"`
	InReplyTo string   `json:"in_reply_to,omitempty" jsonschema:"Message-ID being replied to"`
}

// SendOutput is the result of send_email.
type SendOutput struct {
	Message string `json:"message"`
}

func (h *Handler) sendEmail(ctx context.Context, req *mcp.CallToolRequest, args SendArgs) (*mcp.CallToolResult, *SendOutput, error) {
	err := h.send(mail.SendOptions{
		From:      h.cfg.Email,
		To:        args.To,
		Cc:        args.Cc,
		Bcc:       args.Bcc,
		Subject:   args.Subject,
		TextBody:  args.TextBody,
		HTMLBody:  args.HTMLBody,
		InReplyTo: args.InReplyTo,
	})
	if err != nil {
		return nil, nil, err
	}
	h.log.Info().Str("tool", "send_email").Int("recipients", len(args.To)+len(args.Cc)+len(args.Bcc)).Msg("tool call")
	return nil, &SendOutput{
		Message: fmt.Sprintf("Email sent to %s", strings.Join(args.To, ", ")),
	}, nil
}

// summarize renders the caller-facing outcome line: exact succeeded
// count versus exact requested count, naming every failed UID.
func summarize(operation string, r *mail.BatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d of %d requested message(s) succeeded", operation, r.SucceededCount(), r.RequestedCount)
	if len(r.Failed) > 0 {
		parts := make([]string, len(r.Failed))
		for i, f := range r.Failed {
			parts[i] = fmt.Sprintf("%d (%s)", f.UID, f.Reason)
		}
		fmt.Fprintf(&b, "; failed: %s", strings.Join(parts, ", "))
	}
	return b.String()
}
