package identity

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/skillswap/internal/app"
	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/model"
	"github.com/oggyb/skillswap/internal/repository"
)

// Service is the Identity Store.
// It owns the session user and the user directory: login, signup, logout
// and profile changes. Every mutation is persisted before it returns.
type Service struct {
	appCtx *app.AppContext
}

// NewIdentityService creates the Identity Store on top of the shared repository.
func NewIdentityService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// Login establishes the session for the user registered under email.
//
// Behavior:
//   - Email must match exactly (case-sensitive).
//   - Banned users are refused regardless of the password.
//   - The password is checked against the stored bcrypt hash.
//
// Every refusal is reported as errors.ErrUnauthorized and changes nothing.
func (s *Service) Login(ctx context.Context, email, password string) (model.User, error) {
	s.appCtx.Logger.Debug("Login called", "email", email)

	var user model.User
	err := s.appCtx.Repo.Update(ctx, func(tx *repository.Tx) error {
		idx := tx.UserByEmail(email)
		if idx < 0 {
			return svcErr.Unauthorized("invalid email or password")
		}
		u := tx.Users[idx]
		if u.IsBanned {
			return svcErr.Unauthorized("account is banned")
		}

		ci := tx.CredentialIndex(u.ID)
		if ci < 0 {
			return svcErr.Unauthorized("invalid email or password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(tx.Credentials[ci].PasswordHash), []byte(password)); err != nil {
			return svcErr.Unauthorized("invalid email or password")
		}

		user = u.Clone()
		session := u.Clone()
		tx.CurrentUser = &session
		tx.Touch(repository.KeyCurrentUser)
		return nil
	})
	if err != nil {
		s.appCtx.Logger.Warn("Login refused", "email", email, "err", err)
		return model.User{}, err
	}

	s.appCtx.Logger.Info("user logged in", "user_id", user.ID)
	return user, nil
}

// Signup registers a new member and logs them in.
//
// Behavior:
//   - Validates the draft (required name, email and password, image photo).
//   - Fails with errors.ErrDuplicateEmail if the email is taken; the
//     directory is left exactly as it was.
//   - Rating starts at 0/0, the profile is public unless the draft says otherwise.
//   - users, credentials and currentUser are written in one batch.
func (s *Service) Signup(ctx context.Context, draft model.SignupDraft) (model.User, error) {
	s.appCtx.Logger.Debug("Signup called", "email", draft.Email)

	if err := model.Validate(draft); err != nil {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(draft.Password), s.appCtx.BcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	public := true
	if draft.IsProfilePublic != nil {
		public = *draft.IsProfilePublic
	}

	var user model.User
	err = s.appCtx.Repo.Update(ctx, func(tx *repository.Tx) error {
		if tx.UserByEmail(draft.Email) >= 0 {
			return svcErr.DuplicateEmail(draft.Email)
		}

		user = model.User{
			ID:              s.appCtx.NewID(),
			Name:            draft.Name,
			Email:           draft.Email,
			Location:        draft.Location,
			ProfilePhoto:    draft.ProfilePhoto,
			SkillsOffered:   model.Labels(draft.SkillsOffered),
			SkillsWanted:    model.Labels(draft.SkillsWanted),
			Availability:    model.Labels(draft.Availability),
			IsProfilePublic: public,
			CreatedAt:       s.appCtx.Now(),
		}

		tx.Users = append(tx.Users, user.Clone())
		tx.Credentials = append(tx.Credentials, model.Credential{UserID: user.ID, PasswordHash: string(hash)})
		session := user.Clone()
		tx.CurrentUser = &session
		tx.Touch(repository.KeyUsers, repository.KeyCredentials, repository.KeyCurrentUser)
		return nil
	})
	if err != nil {
		s.appCtx.Logger.Warn("Signup refused", "email", draft.Email, "err", err)
		return model.User{}, err
	}

	s.appCtx.Logger.Info("user signed up", "user_id", user.ID)
	return user, nil
}

// Logout clears the session. The directory is not touched.
func (s *Service) Logout(ctx context.Context) error {
	s.appCtx.Logger.Debug("Logout called")

	return s.appCtx.Repo.Update(ctx, func(tx *repository.Tx) error {
		if tx.CurrentUser == nil {
			return nil
		}
		s.appCtx.Logger.Info("user logged out", "user_id", tx.CurrentUser.ID)
		tx.CurrentUser = nil
		tx.Touch(repository.KeyCurrentUser)
		return nil
	})
}

// UpdateProfile merges the non-nil fields of patch into the session user
// and its directory record. Without a session it returns
// errors.ErrUnauthorized and changes nothing.
//
// Derived and moderation fields (rating, totalRatings, isAdmin, isBanned)
// are not part of ProfilePatch and cannot be changed here.
func (s *Service) UpdateProfile(ctx context.Context, patch model.ProfilePatch) (model.User, error) {
	s.appCtx.Logger.Debug("UpdateProfile called")

	if err := model.Validate(patch); err != nil {
		return model.User{}, err
	}

	var user model.User
	err := s.appCtx.Repo.Update(ctx, func(tx *repository.Tx) error {
		if tx.CurrentUser == nil {
			return svcErr.Unauthorized("no active session")
		}
		idx := tx.UserIndex(tx.CurrentUser.ID)
		if idx < 0 {
			return svcErr.NotFound("user", tx.CurrentUser.ID)
		}

		u := &tx.Users[idx]
		if patch.Email != nil && *patch.Email != u.Email && tx.UserByEmail(*patch.Email) >= 0 {
			return svcErr.DuplicateEmail(*patch.Email)
		}

		patch.Apply(u)
		tx.Touch(repository.KeyUsers)
		tx.SyncSession(*u)
		user = u.Clone()
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	s.appCtx.Logger.Info("profile updated", "user_id", user.ID)
	return user, nil
}

// CurrentUser returns the session user, if any.
func (s *Service) CurrentUser() (model.User, bool) {
	var (
		user model.User
		ok   bool
	)
	s.appCtx.Repo.View(func(st *repository.State) {
		if st.CurrentUser != nil {
			user, ok = st.CurrentUser.Clone(), true
		}
	})
	return user, ok
}

// ChangePassword replaces the session user's password after checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	s.appCtx.Logger.Debug("ChangePassword called")

	if len(next) < 6 || len(next) > 72 {
		return svcErr.InvalidArgument("password must be between 6 and 72 bytes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.appCtx.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.appCtx.Repo.Update(ctx, func(tx *repository.Tx) error {
		if tx.CurrentUser == nil {
			return svcErr.Unauthorized("no active session")
		}
		ci := tx.CredentialIndex(tx.CurrentUser.ID)
		if ci < 0 {
			return svcErr.Unauthorized("no password set")
		}
		err := bcrypt.CompareHashAndPassword([]byte(tx.Credentials[ci].PasswordHash), []byte(current))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return svcErr.Unauthorized("current password does not match")
		}
		if err != nil {
			return fmt.Errorf("failed to check password: %w", err)
		}

		tx.Credentials[ci].PasswordHash = string(hash)
		tx.Touch(repository.KeyCredentials)
		return nil
	})
}
