package exchange_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/skillswap/internal/app/apptest"
	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/model"
	"github.com/oggyb/skillswap/internal/repository"
	"github.com/oggyb/skillswap/internal/service/exchange"
	"github.com/oggyb/skillswap/internal/service/identity"
)

// rate scores the other party of swap on behalf of from.
func rate(t *testing.T, svc *exchange.Service, swap model.SwapRequest, from string, score int) model.Rating {
	t.Helper()
	r, err := svc.AddRating(context.Background(), model.RatingDraft{
		SwapRequestID: swap.ID,
		FromUserID:    from,
		ToUserID:      swap.Counterpart(from),
		Rating:        score,
		Feedback:      "great session",
	})
	require.NoError(t, err)
	return r
}

func userByID(t *testing.T, st repository.State, id string) model.User {
	t.Helper()
	idx := st.UserIndex(id)
	require.GreaterOrEqual(t, idx, 0, id)
	return st.Users[idx]
}

func TestAddRatingAveragesScores(t *testing.T) {
	svc, f := setupService(t)

	rate(t, svc, swapIn(t, svc, rahul, priya, model.StatusCompleted), rahul, 5)
	rate(t, svc, swapIn(t, svc, rahul, priya, model.StatusCompleted), rahul, 3)

	target := userByID(t, f.App.Repo.Snapshot(), priya)
	assert.Equal(t, 4.0, target.Rating)
	assert.Equal(t, 2, target.TotalRatings)

	persisted := userByID(t, f.Reload(t).Snapshot(), priya)
	assert.Equal(t, target, persisted)
}

func TestAddRatingKeepsAggregateExact(t *testing.T) {
	svc, f := setupService(t)

	var sum int
	for i, score := range []int{4, 1, 5, 2, 2, 3} {
		rate(t, svc, swapIn(t, svc, priya, rahul, model.StatusCompleted), priya, score)
		sum += score

		st := f.App.Repo.Snapshot()
		target := userByID(t, st, rahul)
		assert.Equal(t, float64(sum)/float64(i+1), target.Rating)
		assert.Equal(t, i+1, target.TotalRatings)

		mean, count := model.AverageRating(st.Ratings, rahul)
		assert.Equal(t, mean, target.Rating)
		assert.Equal(t, count, target.TotalRatings)
	}

	// the rater's own aggregate is untouched
	rater := userByID(t, f.App.Repo.Snapshot(), priya)
	assert.Zero(t, rater.Rating)
	assert.Zero(t, rater.TotalRatings)
}

func TestBothPartiesRateEachOther(t *testing.T) {
	svc, f := setupService(t)
	swap := swapIn(t, svc, rahul, priya, model.StatusCompleted)

	given := rate(t, svc, swap, rahul, 5)
	received := rate(t, svc, swap, priya, 4)

	st := f.App.Repo.Snapshot()
	assert.Equal(t, 5.0, userByID(t, st, priya).Rating)
	assert.Equal(t, 4.0, userByID(t, st, rahul).Rating)

	assert.Equal(t, []model.Rating{given}, svc.RatingsGiven(rahul))
	assert.Equal(t, []model.Rating{received}, svc.RatingsReceived(rahul))
	assert.Empty(t, svc.RatingsGiven(admin))
}

func TestAddRatingRefreshesSession(t *testing.T) {
	ctx := context.Background()
	svc, f := setupService(t)
	ident := identity.NewIdentityService(f.App)

	_, err := ident.Login(ctx, "priya@example.com", apptest.SeedPassword)
	require.NoError(t, err)

	rate(t, svc, swapIn(t, svc, rahul, priya, model.StatusCompleted), rahul, 2)

	current, ok := ident.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, 2.0, current.Rating)
	assert.Equal(t, 1, current.TotalRatings)

	st := f.Reload(t).Snapshot()
	require.NotNil(t, st.CurrentUser)
	assert.Equal(t, 2.0, st.CurrentUser.Rating)
}

func TestAddRatingRefusals(t *testing.T) {
	ctx := context.Background()
	svc, f := setupService(t)

	completed := swapIn(t, svc, rahul, priya, model.StatusCompleted)
	pending := createSwap(t, svc, rahul, priya)
	rate(t, svc, completed, rahul, 5)
	before := f.App.Repo.Snapshot()

	draft := func(swapID, from, to string, score int) model.RatingDraft {
		return model.RatingDraft{SwapRequestID: swapID, FromUserID: from, ToUserID: to, Rating: score}
	}
	cases := []struct {
		name  string
		draft model.RatingDraft
		want  error
	}{
		{"score too low", draft(completed.ID, priya, rahul, 0), svcErr.ErrInvalidArgument},
		{"score too high", draft(completed.ID, priya, rahul, 6), svcErr.ErrInvalidArgument},
		{"self rating", draft(completed.ID, rahul, rahul, 3), svcErr.ErrInvalidArgument},
		{"unknown swap", draft("nope", priya, rahul, 3), svcErr.ErrNotFound},
		{"swap not completed", draft(pending.ID, priya, rahul, 3), svcErr.ErrInvalidArgument},
		{"outsider", draft(completed.ID, admin, rahul, 3), svcErr.ErrUnauthorized},
		{"wrong target", draft(completed.ID, priya, admin, 3), svcErr.ErrInvalidArgument},
		{"second rating", draft(completed.ID, rahul, priya, 1), svcErr.ErrAlreadyRated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddRating(ctx, tc.draft)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	after := f.App.Repo.Snapshot()
	assert.Equal(t, before.Ratings, after.Ratings)
	assert.Equal(t, before.Users, after.Users)
}
