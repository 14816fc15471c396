package exchange

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/oggyb/skillswap/internal/app"
	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/model"
	"github.com/oggyb/skillswap/internal/repository"
)

// Service is the Domain Store.
// It owns swap requests, ratings and admin messages and writes the rating
// aggregate and ban flag into the shared user directory.
type Service struct {
	appCtx *app.AppContext
}

// NewExchangeService creates the Domain Store on top of the shared repository.
func NewExchangeService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// CreateSwapRequest records a new proposal from draft.FromUserID to
// draft.ToUserID. The request starts pending with createdAt = updatedAt.
//
// Both users must exist. Asking oneself is left to the caller.
func (s *Service) CreateSwapRequest(ctx context.Context, draft model.SwapDraft) (model.SwapRequest, error) {
	s.appCtx.Logger.Debug("CreateSwapRequest called", "from", draft.FromUserID, "to", draft.ToUserID)

	if err := model.Validate(draft); err != nil {
		return model.SwapRequest{}, err
	}

	var req model.SwapRequest
	err := s.appCtx.Repo.Update(ctx, func(tx *repository.Tx) error {
		for _, id := range []string{draft.FromUserID, draft.ToUserID} {
			if tx.UserIndex(id) < 0 {
				return svcErr.NotFound("user", id)
			}
		}

		now := s.appCtx.Now()
		req = model.SwapRequest{
			ID:           s.appCtx.NewID(),
			FromUserID:   draft.FromUserID,
			ToUserID:     draft.ToUserID,
			OfferedSkill: draft.OfferedSkill,
			WantedSkill:  draft.WantedSkill,
			Message:      draft.Message,
			Status:       model.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		tx.SwapRequests = append(tx.SwapRequests, req)
		tx.Touch(repository.KeySwapRequests)
		return nil
	})
	if err != nil {
		return model.SwapRequest{}, err
	}

	s.appCtx.Logger.Info("swap request created", "id", req.ID, "from", req.FromUserID, "to", req.ToUserID)
	return req, nil
}

// UpdateSwapRequest merges patch into the request and refreshes updatedAt.
//
// Behavior:
//   - Unknown id → errors.ErrNotFound.
//   - A status change must follow pending → accepted | rejected,
//     accepted → completed; anything else is errors.ErrInvalidTransition.
//   - Skills and message can only be edited while the request is pending.
//   - An empty patch returns the request unchanged and writes nothing.
func (s *Service) UpdateSwapRequest(ctx context.Context, id string, patch model.SwapPatch) (model.SwapRequest, error) {
	s.appCtx.Logger.Debug("UpdateSwapRequest called", "id", id)
	return s.update(ctx, id, patch, nil)
}

// DeleteSwapRequest removes a pending request. Unknown ids fail with
// errors.ErrNotFound and leave the collection as it was.
func (s *Service) DeleteSwapRequest(ctx context.Context, id string) error {
	s.appCtx.Logger.Debug("DeleteSwapRequest called", "id", id)
	return s.remove(ctx, id, nil)
}

// Accept moves a pending request to accepted on behalf of its recipient.
func (s *Service) Accept(ctx context.Context, id, actorID string) (model.SwapRequest, error) {
	s.appCtx.Logger.Debug("Accept called", "id", id, "actor", actorID)
	return s.update(ctx, id, model.StatusPatch(model.StatusAccepted), recipientOnly(actorID))
}

// Reject moves a pending request to rejected on behalf of its recipient.
func (s *Service) Reject(ctx context.Context, id, actorID string) (model.SwapRequest, error) {
	s.appCtx.Logger.Debug("Reject called", "id", id, "actor", actorID)
	return s.update(ctx, id, model.StatusPatch(model.StatusRejected), recipientOnly(actorID))
}

// Complete marks an accepted request completed. Either party may do it.
func (s *Service) Complete(ctx context.Context, id, actorID string) (model.SwapRequest, error) {
	s.appCtx.Logger.Debug("Complete called", "id", id, "actor", actorID)
	return s.update(ctx, id, model.StatusPatch(model.StatusCompleted), partiesOnly(actorID))
}

// Cancel withdraws a pending request. Either party may do it.
func (s *Service) Cancel(ctx context.Context, id, actorID string) error {
	s.appCtx.Logger.Debug("Cancel called", "id", id, "actor", actorID)
	return s.remove(ctx, id, partiesOnly(actorID))
}

// GetSwapRequest returns the request with id.
func (s *Service) GetSwapRequest(id string) (model.SwapRequest, error) {
	var (
		req   model.SwapRequest
		found bool
	)
	s.appCtx.Repo.View(func(st *repository.State) {
		if idx := st.SwapIndex(id); idx >= 0 {
			req, found = st.SwapRequests[idx], true
		}
	})
	if !found {
		return model.SwapRequest{}, svcErr.NotFound("swap request", id)
	}
	return req, nil
}

// ListSwapRequests returns the requests of userID in box, oldest first.
func (s *Service) ListSwapRequests(userID string, box model.Box) []model.SwapRequest {
	out := []model.SwapRequest{}
	s.appCtx.Repo.View(func(st *repository.State) {
		for _, r := range st.SwapRequests {
			if box.Holds(r, userID) {
				out = append(out, r)
			}
		}
	})
	return out
}

type authorizeFunc func(model.SwapRequest) error

func recipientOnly(actorID string) authorizeFunc {
	return func(r model.SwapRequest) error {
		if r.ToUserID != actorID {
			return svcErr.Unauthorized("only the recipient can answer a swap request")
		}
		return nil
	}
}

func partiesOnly(actorID string) authorizeFunc {
	return func(r model.SwapRequest) error {
		if !r.Involves(actorID) {
			return svcErr.Unauthorized("not a party to this swap request")
		}
		return nil
	}
}

func (s *Service) update(ctx context.Context, id string, patch model.SwapPatch, authorize authorizeFunc) (model.SwapRequest, error) {
	if err := model.Validate(patch); err != nil {
		return model.SwapRequest{}, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return model.SwapRequest{}, svcErr.InvalidArgument(fmt.Sprintf("unknown status %q", *patch.Status))
	}

	var req model.SwapRequest
	err := s.appCtx.Repo.Update(ctx, func(tx *repository.Tx) error {
		idx := tx.SwapIndex(id)
		if idx < 0 {
			return svcErr.NotFound("swap request", id)
		}
		r := &tx.SwapRequests[idx]
		if authorize != nil {
			if err := authorize(*r); err != nil {
				return err
			}
		}

		// nothing to change; the stored request stays as is
		if patch.Status == nil && !patch.EditsFields() {
			req = *r
			return nil
		}
		if patch.EditsFields() && r.Status != model.StatusPending {
			return fmt.Errorf("%w: %s request cannot be edited", svcErr.ErrInvalidTransition, r.Status)
		}
		if patch.Status != nil {
			if !r.Status.CanTransitionTo(*patch.Status) {
				return svcErr.InvalidTransition(string(r.Status), string(*patch.Status))
			}
			r.Status = *patch.Status
		}
		if patch.OfferedSkill != nil {
			r.OfferedSkill = *patch.OfferedSkill
		}
		if patch.WantedSkill != nil {
			r.WantedSkill = *patch.WantedSkill
		}
		if patch.Message != nil {
			r.Message = *patch.Message
		}
		r.UpdatedAt = after(s.appCtx.Now(), r.UpdatedAt)

		tx.Touch(repository.KeySwapRequests)
		req = *r
		return nil
	})
	if err != nil {
		return model.SwapRequest{}, err
	}

	s.appCtx.Logger.Info("swap request updated", "id", req.ID, "status", req.Status)
	return req, nil
}

func (s *Service) remove(ctx context.Context, id string, authorize authorizeFunc) error {
	err := s.appCtx.Repo.Update(ctx, func(tx *repository.Tx) error {
		idx := tx.SwapIndex(id)
		if idx < 0 {
			return svcErr.NotFound("swap request", id)
		}
		r := tx.SwapRequests[idx]
		if authorize != nil {
			if err := authorize(r); err != nil {
				return err
			}
		}
		if r.Status != model.StatusPending {
			return fmt.Errorf("%w: %s request cannot be deleted", svcErr.ErrInvalidTransition, r.Status)
		}

		tx.SwapRequests = slices.Delete(tx.SwapRequests, idx, idx+1)
		tx.Touch(repository.KeySwapRequests)
		return nil
	})
	if err != nil {
		return err
	}

	s.appCtx.Logger.Info("swap request deleted", "id", id)
	return nil
}

// after returns now, or prev plus one millisecond when the clock has not
// moved past prev, so updatedAt always increases.
func after(now, prev time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Millisecond)
}
