package repository

import (
	"slices"

	"github.com/oggyb/skillswap/internal/model"
)

// Keys of the persisted state layout. Each key holds one JSON value.
const (
	KeyUsers         = "users"
	KeyCredentials   = "credentials"
	KeySwapRequests  = "swapRequests"
	KeyRatings       = "ratings"
	KeyAdminMessages = "adminMessages"
	KeyCurrentUser   = "currentUser"
)

// AllKeys lists every key in the layout.
var AllKeys = []string{KeyUsers, KeyCredentials, KeySwapRequests, KeyRatings, KeyAdminMessages, KeyCurrentUser}

// State is the full set of records owned by both stores.
// CurrentUser is nil when nobody is logged in.
type State struct {
	Users         []model.User
	Credentials   []model.Credential
	SwapRequests  []model.SwapRequest
	Ratings       []model.Rating
	AdminMessages []model.AdminMessage
	CurrentUser   *model.User
}

// Clone deep-copies the state so a transaction can mutate it freely.
func (s State) Clone() State {
	out := State{
		Users:         make([]model.User, len(s.Users)),
		Credentials:   slices.Clone(s.Credentials),
		SwapRequests:  slices.Clone(s.SwapRequests),
		Ratings:       slices.Clone(s.Ratings),
		AdminMessages: slices.Clone(s.AdminMessages),
	}
	for i, u := range s.Users {
		out.Users[i] = u.Clone()
	}
	if s.CurrentUser != nil {
		cu := s.CurrentUser.Clone()
		out.CurrentUser = &cu
	}
	return out
}

// UserIndex returns the position of the user with id, or -1.
func (s *State) UserIndex(id string) int {
	return slices.IndexFunc(s.Users, func(u model.User) bool { return u.ID == id })
}

// UserByEmail returns the position of the user with the exact email, or -1.
func (s *State) UserByEmail(email string) int {
	return slices.IndexFunc(s.Users, func(u model.User) bool { return u.Email == email })
}

// SwapIndex returns the position of the swap request with id, or -1.
func (s *State) SwapIndex(id string) int {
	return slices.IndexFunc(s.SwapRequests, func(r model.SwapRequest) bool { return r.ID == id })
}

// CredentialIndex returns the position of the credential of userID, or -1.
func (s *State) CredentialIndex(userID string) int {
	return slices.IndexFunc(s.Credentials, func(c model.Credential) bool { return c.UserID == userID })
}

// Tx is the working copy handed to an Update callback.
// Every collection that is modified must be marked with Touch.
type Tx struct {
	State
	dirty map[string]bool
}

// Touch marks keys to be written when the transaction commits.
func (tx *Tx) Touch(keys ...string) {
	for _, k := range keys {
		tx.dirty[k] = true
	}
}

// SyncSession refreshes the session copy of a directory record so the
// session never shows stale aggregates or moderation flags.
func (tx *Tx) SyncSession(u model.User) {
	if tx.CurrentUser == nil || tx.CurrentUser.ID != u.ID {
		return
	}
	cu := u.Clone()
	tx.CurrentUser = &cu
	tx.Touch(KeyCurrentUser)
}
