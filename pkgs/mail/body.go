package mail

import (
	"bytes"
	"io"
	"strings"

	gomessage "github.com/emersion/go-message"
	gomail "github.com/emersion/go-message/mail"
)

// parseMessageBody parses raw RFC 5322 message bytes into the Email's
// TextBody, HTMLBody and Attachments fields. It handles both single-part
// and multipart messages (including nested multipart).
func parseMessageBody(e *Email, raw []byte) {
	r := bytes.NewReader(raw)
	entity, err := gomessage.Read(r)
	if err != nil {
		// Fallback: treat as plain text
		e.TextBody = string(raw)
		return
	}

	parseEntityBody(e, entity)
}

func parseEntityBody(e *Email, entity *gomessage.Entity) {
	if mr := entity.MultipartReader(); mr != nil {
		parseMultipart(e, mr)
	} else {
		parseSinglePart(e, entity)
	}
}

// parseMultipart iterates over parts of a multipart message.
func parseMultipart(e *Email, mr gomessage.MultipartReader) {
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		ct, _, _ := part.Header.ContentType()

		switch {
		case strings.HasPrefix(ct, "text/plain") && e.TextBody == "":
			if body, err := io.ReadAll(part.Body); err == nil {
				e.TextBody = string(body)
			}

		case strings.HasPrefix(ct, "text/html") && e.HTMLBody == "":
			if body, err := io.ReadAll(part.Body); err == nil {
				e.HTMLBody = string(body)
			}

		case strings.HasPrefix(ct, "multipart/"):
			// Nested multipart, recurse
			if nested := part.MultipartReader(); nested != nil {
				parseMultipart(e, nested)
			}

		default:
			// Treat as attachment; keep metadata only, the MCP client
			// has no use for raw bytes in a read result.
			body, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			h := gomail.AttachmentHeader{Header: part.Header}
			filename, _ := h.Filename()
			e.Attachments = append(e.Attachments, Attachment{
				Filename:    filename,
				ContentType: ct,
				Size:        int64(len(body)),
			})
			e.HasAttachments = true
		}
	}
}

// parseSinglePart reads the body of a non-multipart entity.
func parseSinglePart(e *Email, entity *gomessage.Entity) {
	ct, _, _ := entity.Header.ContentType()
	body, err := io.ReadAll(entity.Body)
	if err != nil {
		return
	}
	if strings.HasPrefix(ct, "text/html") {
		e.HTMLBody = string(body)
	} else {
		e.TextBody = string(body)
	}
}
