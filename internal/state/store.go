package state

import (
	"encoding/json"
	"sort"
	"sync/atomic"
	"time"

	"github.com/muurk/ztdash/internal/config"
	"github.com/muurk/ztdash/internal/logging"
	"github.com/muurk/ztdash/internal/netstats"
	"github.com/muurk/ztdash/internal/ztapi"
	"go.uber.org/zap"
)

// memberIndex maps network id to its current member set. A published
// index is never modified; writers copy it and swap the pointer.
type memberIndex map[string]*MemberSet

// Store is the reconciled view of bookmarks and live data. Every method
// except Members is meant to be called from the single update loop;
// Members may be called from any goroutine.
type Store struct {
	order    []string
	networks map[string]*NetworkView
	members  atomic.Pointer[memberIndex]
	unlisted map[string]ztapi.Network
	// edits holds when a mutation last changed a network (keyed by id) or
	// a member (keyed by editKey). Snapshots taken before that are stale
	// for the entry.
	edits map[string]time.Time

	sampler *netstats.Sampler
	filter  string
	notices *Notices
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithNoticeTTL sets how long notices stay visible.
func WithNoticeTTL(ttl time.Duration) Option {
	return func(s *Store) { s.notices.ttl = ttl }
}

// NewStore creates a store holding the given bookmarks in order. Every
// bookmark starts disconnected until a poll reports it.
func NewStore(bookmarks []string, opts ...Option) *Store {
	s := &Store{
		networks: make(map[string]*NetworkView),
		unlisted: make(map[string]ztapi.Network),
		edits:    make(map[string]time.Time),
		sampler:  netstats.NewSampler(),
		filter:   config.FilterAll,
		notices:  newNotices(config.DefaultNoticeTTL),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.notices.now = s.now

	empty := memberIndex{}
	s.members.Store(&empty)

	for _, id := range bookmarks {
		s.AddBookmark(id)
	}
	return s
}

// Bookmarks returns the bookmarked ids in display order.
func (s *Store) Bookmarks() []string {
	return append([]string(nil), s.order...)
}

// IsBookmarked reports whether id is bookmarked.
func (s *Store) IsBookmarked(id string) bool {
	_, ok := s.networks[id]
	return ok
}

// AddBookmark appends id to the bookmark list. It returns false if id is
// not a network id or is already bookmarked. If the last poll saw id as
// an unlisted network its live data is used right away.
func (s *Store) AddBookmark(id string) bool {
	if !ztapi.IsNetworkID(id) || s.IsBookmarked(id) {
		return false
	}

	view := &NetworkView{ID: id, Status: ztapi.StatusDisconnected, Stale: true}
	if live, ok := s.unlisted[id]; ok {
		s.applyLive(view, live, nil, s.now())
		delete(s.unlisted, id)
	}
	s.networks[id] = view
	s.order = append(s.order, id)
	return true
}

// Forget removes a bookmark and everything known about it. It never
// touches the node: a joined network stays joined.
func (s *Store) Forget(id string) bool {
	view, ok := s.networks[id]
	if !ok {
		return false
	}

	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	delete(s.networks, id)
	if view.Interface != "" {
		s.sampler.Forget(view.Interface)
	}
	if view.Connected {
		s.unlisted[id] = ztapi.Network{
			ID:                id,
			Name:              view.Name,
			Status:            view.Status,
			Type:              view.Type,
			PortDeviceName:    view.Interface,
			AssignedAddresses: view.Addresses,
			Raw:               view.Raw,
		}
	}
	s.replaceMembers(id, nil)
	return true
}

// Network returns a copy of the view for id.
func (s *Store) Network(id string) (*NetworkView, bool) {
	view, ok := s.networks[id]
	if !ok {
		return nil, false
	}
	return view.clone(), true
}

// Visible returns copies of the views shown in the main list, honoring
// the connected-only filter.
func (s *Store) Visible() []*NetworkView {
	out := make([]*NetworkView, 0, len(s.order))
	for _, id := range s.order {
		view := s.networks[id]
		if s.filter == config.FilterConnected && !view.Connected {
			continue
		}
		out = append(out, view.clone())
	}
	return out
}

// Filter returns the current list filter.
func (s *Store) Filter() string { return s.filter }

// SetFilter sets the list filter; unknown values mean FilterAll.
func (s *Store) SetFilter(filter string) {
	if filter != config.FilterConnected {
		filter = config.FilterAll
	}
	s.filter = filter
}

// ToggleFilter flips between all and connected-only and returns the new filter.
func (s *Store) ToggleFilter() string {
	if s.filter == config.FilterConnected {
		s.filter = config.FilterAll
	} else {
		s.filter = config.FilterConnected
	}
	return s.filter
}

// Unlisted returns the ids the node has joined that are not bookmarked.
func (s *Store) Unlisted() []string {
	out := make([]string, 0, len(s.unlisted))
	for id := range s.unlisted {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ImportUnlisted bookmarks every unlisted network and returns the ids added.
func (s *Store) ImportUnlisted() []string {
	var added []string
	for _, id := range s.Unlisted() {
		if s.AddBookmark(id) {
			added = append(added, id)
		}
	}
	return added
}

// MergeNetworkSnapshot folds one node poll into the bookmarked views.
// Views are updated in place; none is ever created or removed here.
// Bookmarks absent from a snapshot that covers them keep their last
// known values and are marked disconnected and stale.
func (s *Store) MergeNetworkSnapshot(snap NetworkSnapshot) {
	taken := snap.Taken
	if taken.IsZero() {
		taken = s.now()
	}

	var scope map[string]bool
	if snap.Scope != nil {
		scope = make(map[string]bool, len(snap.Scope))
		for _, id := range snap.Scope {
			scope[id] = true
		}
	}
	inScope := func(id string) bool { return scope == nil || scope[id] }

	live := make(map[string]ztapi.Network, len(snap.Networks))
	for _, n := range snap.Networks {
		live[n.ID] = n
	}

	if scope == nil {
		s.unlisted = make(map[string]ztapi.Network)
	}
	for id, n := range live {
		if !s.IsBookmarked(id) && !s.superseded(id, taken) {
			s.unlisted[id] = n
		}
	}

	for _, id := range s.order {
		view := s.networks[id]
		n, ok := live[id]
		if (!ok && !inScope(id)) || s.superseded(id, taken) {
			continue
		}
		if ok {
			s.applyLive(view, n, snap.Counters, taken)
			continue
		}
		if view.Connected {
			logging.Debug("Bookmarked network no longer reported", zap.String("network_id", id))
		}
		view.Connected = false
		view.Stale = true
		view.Status = ztapi.StatusDisconnected
		view.HasRate = false
		if scope != nil {
			delete(s.unlisted, id)
		}
	}
}

// superseded reports whether a mutation changed key after taken. Once a
// snapshot at least as new as the mutation arrives, the stamp is dropped.
func (s *Store) superseded(key string, taken time.Time) bool {
	at, ok := s.edits[key]
	if !ok {
		return false
	}
	if taken.Before(at) {
		return true
	}
	delete(s.edits, key)
	return false
}

func editKey(nwid, memberID string) string { return nwid + "/" + memberID }

func (s *Store) applyLive(view *NetworkView, n ztapi.Network, counters map[string]netstats.Counters, taken time.Time) {
	if view.Interface != "" && view.Interface != n.PortDeviceName {
		s.sampler.Forget(view.Interface)
		view.HasRate = false
		view.HasTotal = false
	}

	view.Name = n.Name
	view.Status = n.Status
	view.Type = n.Type
	view.Interface = n.PortDeviceName
	view.Addresses = append([]string(nil), n.AssignedAddresses...)
	view.Raw = n.Raw
	view.Connected = true
	view.Stale = false
	view.Polled = true
	view.UpdatedAt = taken

	if c, ok := counters[n.PortDeviceName]; ok && n.PortDeviceName != "" {
		s.sampler.Record(c)
		view.Totals = c
		view.HasTotal = true
		view.Rate, view.HasRate = s.sampler.Rate(n.PortDeviceName)
	}
}

// Members returns the current member set of nwid, or nil if none has
// been fetched. Safe for concurrent use.
func (s *Store) Members(nwid string) *MemberSet {
	idx := *s.members.Load()
	return idx[nwid]
}

// MergeMemberSnapshot replaces the member set of nwid wholesale with a
// list fetched just now.
func (s *Store) MergeMemberSnapshot(nwid string, members []ztapi.Member) {
	s.MergeMemberSnapshotAt(nwid, members, s.now())
}

// MergeMemberSnapshotAt replaces the member set of nwid with a list whose
// fetch started at taken. A list older than the current set is dropped.
// Members changed by a mutation after taken keep their current view, and
// members deleted after taken stay deleted. Concurrent readers see either
// the previous set or this one.
func (s *Store) MergeMemberSnapshotAt(nwid string, members []ztapi.Member, taken time.Time) {
	if !s.IsBookmarked(nwid) {
		return
	}
	if taken.IsZero() {
		taken = s.now()
	}
	cur := s.Members(nwid)
	if cur != nil && taken.Before(cur.FetchedAt) {
		logging.Debug("Dropped out-of-date member list", zap.String("network_id", nwid))
		return
	}

	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		mv := NewMemberView(m)
		if mv.NetworkID == "" {
			mv.NetworkID = nwid
		}
		if s.superseded(editKey(nwid, mv.ID), taken) {
			kept, ok := cur.Find(mv.ID)
			if !ok {
				continue
			}
			mv = kept
		}
		views = append(views, mv)
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].ID < views[j].ID })

	s.replaceMembers(nwid, &MemberSet{NetworkID: nwid, Members: views, FetchedAt: taken})
}

// replaceMembers publishes a new index with nwid's set replaced (or
// removed when set is nil).
func (s *Store) replaceMembers(nwid string, set *MemberSet) {
	old := *s.members.Load()
	next := make(memberIndex, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	if set == nil {
		delete(next, nwid)
	} else {
		next[nwid] = set
	}
	s.members.Store(&next)
}

// editMembers publishes a modified copy of nwid's member set.
func (s *Store) editMembers(nwid string, edit func([]MemberView) []MemberView) {
	cur := s.Members(nwid)
	if cur == nil {
		return
	}
	copied := append([]MemberView(nil), cur.Members...)
	s.replaceMembers(nwid, &MemberSet{NetworkID: nwid, Members: edit(copied), FetchedAt: cur.FetchedAt})
}

// ApplyMutationResult applies a finished action. On success the affected
// fields are updated right away; the next poll confirms them. On failure
// nothing changes and a notice is recorded. It reports whether the result
// was a success.
func (s *Store) ApplyMutationResult(res MutationResult) bool {
	logging.LogMutation(string(res.Op), res.NetworkID, res.MemberID, res.Err)

	if res.Err != nil {
		s.notices.Push(NoticeFromError(res.Err, failurePrefix(res)))
		return false
	}

	view, ok := s.networks[res.NetworkID]

	switch res.Op {
	case OpJoin, OpLeave:
		s.edits[res.NetworkID] = s.now()
	case OpRename, OpAuthorize, OpDeauthorize, OpDeleteMember:
		s.edits[editKey(res.NetworkID, res.MemberID)] = s.now()
	}

	switch res.Op {
	case OpJoin:
		if ok {
			if res.Network != nil && res.Network.ID == res.NetworkID {
				s.applyLive(view, *res.Network, nil, s.now())
			} else {
				view.Connected = true
				view.Stale = false
				view.Status = ztapi.StatusRequestingConfiguration
			}
		}
		s.notices.Info("Joined " + res.NetworkID)

	case OpLeave:
		if ok {
			view.Connected = false
			view.Stale = true
			view.Status = ztapi.StatusDisconnected
			view.HasRate = false
		}
		delete(s.unlisted, res.NetworkID)
		s.notices.Info("Left " + res.NetworkID)

	case OpRename:
		s.editMembers(res.NetworkID, func(ms []MemberView) []MemberView {
			for i := range ms {
				if ms[i].ID == res.MemberID {
					ms[i].Name = res.Name
				}
			}
			return ms
		})
		s.notices.Info("Renamed " + res.MemberID + " to " + quoteName(res.Name))

	case OpAuthorize, OpDeauthorize:
		authorized := res.Op == OpAuthorize
		s.editMembers(res.NetworkID, func(ms []MemberView) []MemberView {
			for i := range ms {
				if ms[i].ID == res.MemberID {
					ms[i].Authorized = authorized
				}
			}
			return ms
		})
		if authorized {
			s.notices.Info("Authorized " + res.MemberID)
		} else {
			s.notices.Info("Deauthorized " + res.MemberID)
		}

	case OpDeleteMember:
		s.editMembers(res.NetworkID, func(ms []MemberView) []MemberView {
			out := ms[:0]
			for _, m := range ms {
				if m.ID != res.MemberID {
					out = append(out, m)
				}
			}
			return out
		})
		s.notices.Info("Deleted member " + res.MemberID)

	case OpSetRules, OpFetchRules:
		if ok {
			view.Rules = append([]json.RawMessage(nil), res.Rules...)
			view.RulesKnown = true
		}
		if res.Op == OpSetRules {
			s.notices.Info("Rules updated for " + res.NetworkID)
		}
	}
	return true
}

func failurePrefix(res MutationResult) string {
	target := res.NetworkID
	if res.MemberID != "" {
		target = res.MemberID
	}
	return string(res.Op) + " " + target
}

func quoteName(name string) string {
	if name == "" {
		return "(none)"
	}
	return `"` + name + `"`
}

// Notices returns the notice queue.
func (s *Store) Notices() *Notices { return s.notices }

// Notify records err as a notice.
func (s *Store) Notify(err error) {
	if err == nil {
		return
	}
	s.notices.Push(NoticeFromError(err, ""))
}

// Clamp returns cursor limited to a list of n items.
func Clamp(cursor, n int) int {
	if n <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
