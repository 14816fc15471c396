package exchange

import (
	"fmt"
	"slices"

	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/model"
	"github.com/oggyb/skillswap/internal/repository"
)

// ReportKind names a collection that can be exported in full.
type ReportKind string

const (
	ReportUsers   ReportKind = "users"
	ReportSwaps   ReportKind = "swaps"
	ReportRatings ReportKind = "ratings"
)

// Report returns a full copy of the collection named by kind, in stored
// order: []model.User, []model.SwapRequest or []model.Rating.
func (s *Service) Report(kind ReportKind) (any, error) {
	s.appCtx.Logger.Debug("Report called", "kind", kind)

	switch kind {
	case ReportUsers:
		return s.ExportUsers(), nil
	case ReportSwaps:
		return s.ExportSwapRequests(), nil
	case ReportRatings:
		return s.ExportRatings(), nil
	default:
		return nil, svcErr.InvalidArgument(fmt.Sprintf("unknown report %q", kind))
	}
}

// ExportUsers returns every user, administrators and banned users included.
func (s *Service) ExportUsers() []model.User {
	out := []model.User{}
	s.appCtx.Repo.View(func(st *repository.State) {
		for _, u := range st.Users {
			out = append(out, u.Clone())
		}
	})
	return out
}

// ExportSwapRequests returns every swap request across all users.
func (s *Service) ExportSwapRequests() []model.SwapRequest {
	var out []model.SwapRequest
	s.appCtx.Repo.View(func(st *repository.State) {
		out = slices.Clone(st.SwapRequests)
	})
	if out == nil {
		out = []model.SwapRequest{}
	}
	return out
}

// ExportRatings returns every rating across all users.
func (s *Service) ExportRatings() []model.Rating {
	var out []model.Rating
	s.appCtx.Repo.View(func(st *repository.State) {
		out = slices.Clone(st.Ratings)
	})
	if out == nil {
		out = []model.Rating{}
	}
	return out
}
