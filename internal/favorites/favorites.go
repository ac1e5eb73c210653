// Package favorites keeps the per-user favorite sets in sync with a
// remote store. Toggles apply optimistically: the in-memory set flips
// first, the remote write follows, and a failed write restores the
// snapshot taken before the flip. The divergence window is deliberate
// and resolves in one direction or the other when the write settles.
package favorites

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"marketdash/internal/domain"
	"marketdash/internal/notify"
)

// ErrNotSignedIn is returned when a mutation is attempted with no
// authenticated user. The caller decides what to do with it (the UI
// redirects to sign-in); no state is changed.
var ErrNotSignedIn = errors.New("not signed in")

// Session exposes the current-user capability. It is treated as opaque:
// only presence and identifier matter here.
type Session interface {
	CurrentUserID() (string, bool)
}

// StaticSession is a Session with a fixed user, for CLI use and tests.
type StaticSession struct {
	UserID string
}

func (s StaticSession) CurrentUserID() (string, bool) {
	return s.UserID, s.UserID != ""
}

// Remote persists favorite records for a user.
type Remote interface {
	Add(ctx context.Context, rec domain.FavoriteRecord) error
	Remove(ctx context.Context, rec domain.FavoriteRecord) error
	List(ctx context.Context, userID string) ([]domain.FavoriteRecord, error)
}

// Service owns the in-memory mirror of the remote favorite sets.
// Membership checks are O(1); mutations are optimistic with rollback.
type Service struct {
	session Session
	remote  Remote
	bus     *notify.Bus

	mu   sync.Mutex
	sets map[domain.FavoriteKind]map[string]struct{}
}

func NewService(session Session, remote Remote, bus *notify.Bus) *Service {
	return &Service{
		session: session,
		remote:  remote,
		bus:     bus,
		sets: map[domain.FavoriteKind]map[string]struct{}{
			domain.KindCrypto: {},
			domain.KindStock:  {},
		},
	}
}

// IsFavorite reports membership from the in-memory set.
func (s *Service) IsFavorite(id string, kind domain.FavoriteKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sets[kind][id]
	return ok
}

// IDs returns the favorited ids of one kind, sorted.
func (s *Service) IDs(kind domain.FavoriteKind) []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.sets[kind]))
	for id := range s.sets[kind] {
		out = append(out, id)
	}
	s.mu.Unlock()
	sort.Strings(out)
	return out
}

// Toggle flips membership for (id, kind). The in-memory flip happens
// before the remote write; a newly added favorite emits a notification
// event. When the remote write fails the pre-toggle membership is
// restored and the failure is logged, not returned: the caller observes
// the revert through the returned membership.
func (s *Service) Toggle(ctx context.Context, id string, kind domain.FavoriteKind) (bool, error) {
	userID, ok := s.session.CurrentUserID()
	if !ok {
		return false, ErrNotSignedIn
	}

	s.mu.Lock()
	_, was := s.sets[kind][id]
	if was {
		delete(s.sets[kind], id)
	} else {
		s.sets[kind][id] = struct{}{}
	}
	s.mu.Unlock()

	adding := !was
	if adding && s.bus != nil {
		s.bus.Publish(notify.Event{Kind: kindLabel(kind), ID: id})
	}

	rec := domain.FavoriteRecord{UserID: userID, AssetID: id, Kind: kind}
	var err error
	if adding {
		err = s.remote.Add(ctx, rec)
	} else {
		err = s.remote.Remove(ctx, rec)
	}
	if err != nil {
		// Revert to the pre-toggle membership.
		s.mu.Lock()
		if was {
			s.sets[kind][id] = struct{}{}
		} else {
			delete(s.sets[kind], id)
		}
		s.mu.Unlock()
		log.Printf("favorites: persist toggle(%s,%s): %v", kind, id, err)
		return was, nil
	}
	return adding, nil
}

// Refresh reloads the full set from the remote store, replacing the
// in-memory mirror wholesale.
func (s *Service) Refresh(ctx context.Context) error {
	userID, ok := s.session.CurrentUserID()
	if !ok {
		return ErrNotSignedIn
	}
	recs, err := s.remote.List(ctx, userID)
	if err != nil {
		return err
	}
	fresh := map[domain.FavoriteKind]map[string]struct{}{
		domain.KindCrypto: {},
		domain.KindStock:  {},
	}
	for _, r := range recs {
		if _, ok := fresh[r.Kind]; !ok {
			fresh[r.Kind] = map[string]struct{}{}
		}
		fresh[r.Kind][r.AssetID] = struct{}{}
	}
	s.mu.Lock()
	s.sets = fresh
	s.mu.Unlock()
	return nil
}

func kindLabel(kind domain.FavoriteKind) string {
	if kind == domain.KindStock {
		return "stock"
	}
	return "crypto"
}
