package exchange

import (
	"context"
	"fmt"
	"slices"

	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/model"
	"github.com/oggyb/skillswap/internal/repository"
)

// AddRating records a score for a completed swap and recomputes the
// target's rating and totalRatings from every rating addressed to them.
// The rating and the updated user are written in one batch.
//
// Behavior:
//   - Score must be within 1..5.
//   - The swap must exist and be completed.
//   - The rater must be a party and the target the other party.
//   - One rating per (swap, rater); a second fails with errors.ErrAlreadyRated.
func (s *Service) AddRating(ctx context.Context, draft model.RatingDraft) (model.Rating, error) {
	s.appCtx.Logger.Debug(
		"AddRating called",
		"swap", draft.SwapRequestID,
		"from", draft.FromUserID,
		"to", draft.ToUserID,
		"rating", draft.Rating,
	)

	if err := model.Validate(draft); err != nil {
		return model.Rating{}, err
	}

	var rating model.Rating
	err := s.appCtx.Repo.Update(ctx, func(tx *repository.Tx) error {
		si := tx.SwapIndex(draft.SwapRequestID)
		if si < 0 {
			return svcErr.NotFound("swap request", draft.SwapRequestID)
		}
		swap := tx.SwapRequests[si]
		if swap.Status != model.StatusCompleted {
			return svcErr.InvalidArgument(fmt.Sprintf("swap %s is %s, only completed swaps can be rated", swap.ID, swap.Status))
		}
		if !swap.Involves(draft.FromUserID) {
			return svcErr.Unauthorized("only a party to the swap can rate it")
		}
		if swap.Counterpart(draft.FromUserID) != draft.ToUserID {
			return svcErr.InvalidArgument("a rating must address the other party of the swap")
		}
		if slices.ContainsFunc(tx.Ratings, func(r model.Rating) bool {
			return r.SwapRequestID == draft.SwapRequestID && r.FromUserID == draft.FromUserID
		}) {
			return fmt.Errorf("%w: %s by %s", svcErr.ErrAlreadyRated, draft.SwapRequestID, draft.FromUserID)
		}

		ui := tx.UserIndex(draft.ToUserID)
		if ui < 0 {
			return svcErr.NotFound("user", draft.ToUserID)
		}

		rating = model.Rating{
			ID:            s.appCtx.NewID(),
			SwapRequestID: draft.SwapRequestID,
			FromUserID:    draft.FromUserID,
			ToUserID:      draft.ToUserID,
			Rating:        draft.Rating,
			Feedback:      draft.Feedback,
			CreatedAt:     s.appCtx.Now(),
		}
		tx.Ratings = append(tx.Ratings, rating)

		target := &tx.Users[ui]
		target.Rating, target.TotalRatings = model.AverageRating(tx.Ratings, target.ID)
		tx.SyncSession(*target)

		tx.Touch(repository.KeyRatings, repository.KeyUsers)
		return nil
	})
	if err != nil {
		return model.Rating{}, err
	}

	s.appCtx.Logger.Info("rating added", "id", rating.ID, "to", rating.ToUserID, "rating", rating.Rating)
	return rating, nil
}

// RatingsReceived returns the ratings addressed to userID, oldest first.
func (s *Service) RatingsReceived(userID string) []model.Rating {
	return s.ratings(func(r model.Rating) bool { return r.ToUserID == userID })
}

// RatingsGiven returns the ratings written by userID, oldest first.
func (s *Service) RatingsGiven(userID string) []model.Rating {
	return s.ratings(func(r model.Rating) bool { return r.FromUserID == userID })
}

func (s *Service) ratings(keep func(model.Rating) bool) []model.Rating {
	out := []model.Rating{}
	s.appCtx.Repo.View(func(st *repository.State) {
		for _, r := range st.Ratings {
			if keep(r) {
				out = append(out, r)
			}
		}
	})
	return out
}
