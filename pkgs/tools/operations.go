package tools

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imap/v2"

	"github.com/jtokib/yahoo-mail-mcp-server/pkgs/mail"
)

// Folder names Yahoo uses for archive and trash.
const (
	archiveFolder = "Archive"
	trashFolder   = "Trash"
)

// mutationFor maps an operation kind to the engine mutation. The bool
// result requests an expunge after the batch: deleting from Trash flags
// \Deleted instead of moving, since a Trash-to-Trash move would be a
// no-op rather than a removal.
func mutationFor(operation, folder, destination string) (mail.Mutation, bool, error) {
	switch operation {
	case "markRead":
		return mail.AddFlag(imap.FlagSeen), false, nil
	case "markUnread":
		return mail.RemoveFlag(imap.FlagSeen), false, nil
	case "flag":
		return mail.AddFlag(imap.FlagFlagged), false, nil
	case "unflag":
		return mail.RemoveFlag(imap.FlagFlagged), false, nil
	case "archive":
		return mail.MoveTo(archiveFolder), false, nil
	case "delete":
		if strings.EqualFold(folderOrInbox(folder), trashFolder) {
			return mail.AddFlag(imap.FlagDeleted), true, nil
		}
		return mail.MoveTo(trashFolder), false, nil
	case "moveTo":
		if destination == "" {
			return nil, false, fmt.Errorf("destination_folder is required for moveTo")
		}
		return mail.MoveTo(destination), false, nil
	default:
		return nil, false, fmt.Errorf("unknown operation %q (expected markRead, markUnread, flag, unflag, archive, delete or moveTo)", operation)
	}
}

func folderOrInbox(folder string) string {
	if folder == "" {
		return "INBOX"
	}
	return folder
}

// parseFilters converts the string-typed search arguments into engine
// filters. Dates use YYYY-MM-DD; IMAP date searches are day-granular
// anyway.
func parseFilters(args SearchArgs) (mail.SearchFilters, error) {
	var f mail.SearchFilters
	f.Sender = args.Sender
	f.UnreadOnly = args.UnreadOnly

	if args.DateFrom != "" {
		t, err := parseDay(args.DateFrom)
		if err != nil {
			return f, fmt.Errorf("date_from: %w", err)
		}
		f.DateFrom = t
	}
	if args.DateTo != "" {
		t, err := parseDay(args.DateTo)
		if err != nil {
			return f, fmt.Errorf("date_to: %w", err)
		}
		f.DateTo = t
	}
	return f, nil
}
