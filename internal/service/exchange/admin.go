package exchange

import (
	"context"
	"slices"

	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/model"
	"github.com/oggyb/skillswap/internal/repository"
)

// BanUser sets isBanned on the user. There is no unban.
//
// Administrators cannot be banned. Banning an already banned user is a
// no-op. If the banned user holds the session, the session is cleared.
func (s *Service) BanUser(ctx context.Context, userID string) error {
	s.appCtx.Logger.Debug("BanUser called", "user_id", userID)

	var changed bool
	err := s.appCtx.Repo.Update(ctx, func(tx *repository.Tx) error {
		idx := tx.UserIndex(userID)
		if idx < 0 {
			return svcErr.NotFound("user", userID)
		}
		u := &tx.Users[idx]
		if u.IsAdmin {
			return svcErr.InvalidArgument("administrators cannot be banned")
		}
		if u.IsBanned {
			return nil
		}

		u.IsBanned = true
		tx.Touch(repository.KeyUsers)
		if tx.CurrentUser != nil && tx.CurrentUser.ID == userID {
			tx.CurrentUser = nil
			tx.Touch(repository.KeyCurrentUser)
		}
		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	if changed {
		s.appCtx.Logger.Warn("user banned", "user_id", userID)
	}
	return nil
}

// AddAdminMessage appends a broadcast to the message log.
func (s *Service) AddAdminMessage(ctx context.Context, draft model.MessageDraft) (model.AdminMessage, error) {
	s.appCtx.Logger.Debug("AddAdminMessage called", "title", draft.Title, "type", draft.Type)

	if err := model.Validate(draft); err != nil {
		return model.AdminMessage{}, err
	}

	var msg model.AdminMessage
	err := s.appCtx.Repo.Update(ctx, func(tx *repository.Tx) error {
		msg = model.AdminMessage{
			ID:        s.appCtx.NewID(),
			Title:     draft.Title,
			Content:   draft.Content,
			Type:      draft.Type,
			CreatedAt: s.appCtx.Now(),
		}
		tx.AdminMessages = append(tx.AdminMessages, msg)
		tx.Touch(repository.KeyAdminMessages)
		return nil
	})
	if err != nil {
		return model.AdminMessage{}, err
	}

	s.appCtx.Logger.Info("admin message broadcast", "id", msg.ID, "type", msg.Type)
	return msg, nil
}

// ListAdminMessages returns the broadcast log, newest first.
func (s *Service) ListAdminMessages() []model.AdminMessage {
	var out []model.AdminMessage
	s.appCtx.Repo.View(func(st *repository.State) {
		out = slices.Clone(st.AdminMessages)
	})
	slices.Reverse(out)
	return out
}

// ListUsers returns every non-admin member, banned or not, in directory order.
func (s *Service) ListUsers() []model.User {
	out := []model.User{}
	s.appCtx.Repo.View(func(st *repository.State) {
		for _, u := range st.Users {
			if !u.IsAdmin {
				out = append(out, u.Clone())
			}
		}
	})
	return out
}
