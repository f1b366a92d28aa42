// Package state holds the session-local view of server data: the last
// fetched listing page, the audio being played and the signed-in
// account. Each resource tracks its own loading and error state, so a
// failure on one never blocks rendering of the others. Engagement
// actions apply speculatively and are confirmed or rolled back when the
// server answers.
package state

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Data-Dreamersambit/Audio-Player/internal/models"
)

// Phase of an optimistic update.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseConfirmed
	PhaseRolledBack
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Resource is one independently loadable piece of cached state.
type Resource[T any] struct {
	Value   T
	Loading bool
	Err     error
}

// Listing is the cached result of the last catalog query.
type Listing struct {
	Audios         []models.Audio
	Page           int
	TotalPages     int64
	FirstQueryTime string
}

// Cache is safe for concurrent use by the fetch and action paths of a
// single session.
type Cache struct {
	mu      sync.Mutex
	listing Resource[Listing]
	audio   Resource[*models.Audio]
	account Resource[*models.User]
}

func NewCache() *Cache {
	return &Cache{}
}

// --- per-resource load/fail/read ---

func (c *Cache) BeginListingLoad() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listing.Loading = true
	c.listing.Err = nil
}

func (c *Cache) SetListing(l Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listing = Resource[Listing]{Value: l}
}

func (c *Cache) FailListing(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listing.Loading = false
	c.listing.Err = err
}

func (c *Cache) Listing() Resource[Listing] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listing
}

func (c *Cache) BeginAudioLoad() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audio.Loading = true
	c.audio.Err = nil
}

func (c *Cache) SetAudio(a *models.Audio) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audio = Resource[*models.Audio]{Value: a}
}

func (c *Cache) FailAudio(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audio.Loading = false
	c.audio.Err = err
}

func (c *Cache) Audio() Resource[*models.Audio] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audio
}

func (c *Cache) BeginAccountLoad() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.account.Loading = true
	c.account.Err = nil
}

func (c *Cache) SetAccount(u *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.account = Resource[*models.User]{Value: u}
}

func (c *Cache) FailAccount(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.account.Loading = false
	c.account.Err = err
}

func (c *Cache) Account() Resource[*models.User] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account
}

func (c *Cache) InvalidateAudio() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audio = Resource[*models.Audio]{}
}

// Update is a two-phase optimistic mutation: the speculative change is
// already applied when Optimistic returns, and the caller must finish
// it with exactly one of Confirm or Rollback once the server replies.
// Last server response wins; there is no cross-request ordering.
type Update struct {
	c      *Cache
	phase  Phase
	revert func()
	fail   func(error)
}

func (u *Update) Phase() Phase {
	u.c.mu.Lock()
	defer u.c.mu.Unlock()
	return u.phase
}

// Confirm reconciles the cache with server-confirmed values.
func (u *Update) Confirm(reconcile func()) {
	u.c.mu.Lock()
	defer u.c.mu.Unlock()
	if u.phase != PhasePending {
		return
	}
	if reconcile != nil {
		reconcile()
	}
	u.phase = PhaseConfirmed
}

// Rollback restores the pre-action state and records the error on the
// affected resource only.
func (u *Update) Rollback(err error) {
	u.c.mu.Lock()
	defer u.c.mu.Unlock()
	if u.phase != PhasePending {
		return
	}
	u.revert()
	if u.fail != nil {
		u.fail(err)
	}
	u.phase = PhaseRolledBack
}

// Optimistic applies a speculative change under the cache lock and
// returns the pending update tracking it.
func (c *Cache) Optimistic(apply, revert func(), fail func(error)) *Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	apply()
	return &Update{c: c, phase: PhasePending, revert: revert, fail: fail}
}

// ToggleLike flips the user's membership in the cached audio's like set
// before the network call resolves. Confirm with the server's liked
// flag and total to reconcile counters.
func (c *Cache) ToggleLike(userID primitive.ObjectID) *Update {
	var snapshot []primitive.ObjectID

	return c.Optimistic(
		func() {
			a := c.audio.Value
			if a == nil {
				return
			}
			snapshot = append([]primitive.ObjectID(nil), a.Likes...)
			if a.LikedBy(userID) {
				kept := a.Likes[:0]
				for _, id := range a.Likes {
					if id != userID {
						kept = append(kept, id)
					}
				}
				a.Likes = kept
			} else {
				a.Likes = append(a.Likes, userID)
			}
		},
		func() {
			if c.audio.Value != nil {
				c.audio.Value.Likes = snapshot
			}
		},
		func(err error) { c.audio.Err = err },
	)
}

// ToggleBookmark flips the audio in the cached account's saved list.
func (c *Cache) ToggleBookmark(audioID primitive.ObjectID) *Update {
	var snapshot []models.SavedAudio

	return c.Optimistic(
		func() {
			u := c.account.Value
			if u == nil {
				return
			}
			snapshot = append([]models.SavedAudio(nil), u.SavedAudios...)
			if u.HasSaved(audioID) {
				kept := u.SavedAudios[:0]
				for _, s := range u.SavedAudios {
					if s.AudioID != audioID {
						kept = append(kept, s)
					}
				}
				u.SavedAudios = kept
			} else {
				u.SavedAudios = append(u.SavedAudios, models.SavedAudio{AudioID: audioID})
			}
		},
		func() {
			if c.account.Value != nil {
				c.account.Value.SavedAudios = snapshot
			}
		},
		func(err error) { c.account.Err = err },
	)
}
