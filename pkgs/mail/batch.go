package mail

import (
	"context"
	"fmt"
	"sort"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/jtokib/yahoo-mail-mcp-server/pkgs/mailerr"
)

// Mutation is one uniform change applied across a UID set: a flag added
// or removed, or a move to another folder.
type Mutation interface {
	// Describe names the mutation for logs and failure reasons.
	Describe() string

	apply(c *imapclient.Client, set imap.UIDSet) error
}

// AddFlag adds an IMAP flag to every message in the set. Adding a flag
// that is already set succeeds as a no-op.
type AddFlag imap.Flag

// RemoveFlag removes an IMAP flag from every message in the set.
// Removing a flag that is not set succeeds as a no-op.
type RemoveFlag imap.Flag

// MoveTo moves every message in the set to the named folder. Moved
// messages get new UIDs in the destination; their old UIDs become
// permanently invalid.
type MoveTo string

func (m AddFlag) Describe() string { return "add flag " + string(m) }

func (m AddFlag) apply(c *imapclient.Client, set imap.UIDSet) error {
	return c.Store(set, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.Flag(m)},
	}, nil).Close()
}

func (m RemoveFlag) Describe() string { return "remove flag " + string(m) }

func (m RemoveFlag) apply(c *imapclient.Client, set imap.UIDSet) error {
	return c.Store(set, &imap.StoreFlags{
		Op:     imap.StoreFlagsDel,
		Silent: true,
		Flags:  []imap.Flag{imap.Flag(m)},
	}, nil).Close()
}

func (m MoveTo) Describe() string { return "move to " + string(m) }

func (m MoveTo) apply(c *imapclient.Client, set imap.UIDSet) error {
	_, err := c.Move(set, string(m)).Wait()
	return err
}

// ApplyBatch applies one mutation across a validated UID set and
// reports a per-UID outcome. The folder is opened read-write; if that
// fails the whole call aborts with no partial effect.
//
// UID commands silently ignore UIDs that do not exist, so a successful
// bulk command alone proves nothing about individual members. The engine
// first resolves which requested UIDs are actually present (one UID
// SEARCH restricted to the requested set); absent UIDs are recorded as
// failed up front. The mutation is then issued as a single bulk command
// over the present UIDs. If that bulk command fails, the error does not
// say which member is at fault, so the engine retries each UID
// individually, continuing past failures. Every UID still receives its
// own outcome.
//
// Cancelling ctx mid-fallback stops further attempts; UIDs not yet
// attempted are recorded as failed so the result still partitions the
// full input.
func (s *Session) ApplyBatch(ctx context.Context, folder string, uids []imap.UID, m Mutation) (*BatchResult, error) {
	if len(uids) == 0 {
		return nil, mailerr.ErrEmptyBatch
	}

	if _, err := s.selectFolder(folder, false); err != nil {
		return nil, err
	}

	result := &BatchResult{RequestedCount: len(uids)}

	present, err := s.resolvePresent(uids)
	if err != nil {
		return nil, fmt.Errorf("resolving UIDs in %s: %w", s.selected, err)
	}

	var targets []imap.UID
	for _, uid := range uids {
		if present[uid] {
			targets = append(targets, uid)
		} else {
			result.Failed = append(result.Failed, BatchFailure{
				UID:    uint32(uid),
				Reason: mailerr.ErrIdentifierNotFound.Error(),
			})
		}
	}
	if len(targets) == 0 {
		finishBatch(result)
		return result, nil
	}

	// Efficient path: one command addressed to the whole UID set.
	bulkErr := m.apply(s.client, imap.UIDSetNum(targets...))
	if bulkErr == nil {
		for _, uid := range targets {
			result.Succeeded = append(result.Succeeded, uint32(uid))
		}
		s.log.Debug().
			Str("folder", s.selected).
			Str("mutation", m.Describe()).
			Int("count", len(targets)).
			Msg("bulk mutation applied")
		finishBatch(result)
		return result, nil
	}

	s.log.Debug().Err(bulkErr).
		Str("folder", s.selected).
		Str("mutation", m.Describe()).
		Msg("bulk mutation failed, retrying per UID")
	s.fallbackPerUID(ctx, targets, m, result)
	finishBatch(result)
	return result, nil
}

// resolvePresent returns the subset of uids that exist in the selected
// folder, via a UID SEARCH restricted to the requested set.
func (s *Session) resolvePresent(uids []imap.UID) (map[imap.UID]bool, error) {
	set := imap.UIDSetNum(uids...)
	data, err := s.client.UIDSearch(&imap.SearchCriteria{
		UID: []imap.UIDSet{set},
	}, nil).Wait()
	if err != nil {
		return nil, err
	}

	present := make(map[imap.UID]bool, len(uids))
	for _, uid := range data.AllUIDs() {
		present[uid] = true
	}
	return present, nil
}

// fallbackPerUID applies the mutation to each UID in its own command,
// attributing success or failure individually. A failing UID never
// aborts the rest of the batch.
func (s *Session) fallbackPerUID(ctx context.Context, targets []imap.UID, m Mutation, result *BatchResult) {
	for i, uid := range targets {
		if ctxErr := ctx.Err(); ctxErr != nil {
			for _, rest := range targets[i:] {
				result.Failed = append(result.Failed, BatchFailure{
					UID:    uint32(rest),
					Reason: "not attempted: " + ctxErr.Error(),
				})
			}
			return
		}

		if err := m.apply(s.client, imap.UIDSetNum(uid)); err != nil {
			result.Failed = append(result.Failed, BatchFailure{
				UID:    uint32(uid),
				Reason: fmt.Sprintf("%s: %v", m.Describe(), err),
			})
		} else {
			result.Succeeded = append(result.Succeeded, uint32(uid))
		}
	}
}

// Expunge permanently removes messages flagged \Deleted from the
// selected folder. Callers that delete via flags rather than a Trash
// move use this to make the deletion visible.
func (s *Session) Expunge() error {
	if _, err := s.client.Expunge().Collect(); err != nil {
		return fmt.Errorf("expunging %s: %w", s.selected, err)
	}
	return nil
}

// finishBatch orders both outcome lists ascending by UID so results are
// deterministic.
func finishBatch(r *BatchResult) {
	sort.Slice(r.Succeeded, func(i, j int) bool { return r.Succeeded[i] < r.Succeeded[j] })
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].UID < r.Failed[j].UID })
	if r.Succeeded == nil {
		r.Succeeded = []uint32{}
	}
}
