package exchange

import (
	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/model"
	"github.com/oggyb/skillswap/internal/repository"
)

// PlatformStats is the admin analytics summary. Administrators are not
// counted as users.
type PlatformStats struct {
	TotalUsers    int                      `json:"totalUsers"`
	ActiveUsers   int                      `json:"activeUsers"`
	BannedUsers   int                      `json:"bannedUsers"`
	PublicUsers   int                      `json:"publicUsers"`
	TotalSwaps    int                      `json:"totalSwaps"`
	SwapsByStatus map[model.SwapStatus]int `json:"swapsByStatus"`
	TotalRatings  int                      `json:"totalRatings"`
	AverageRating float64                  `json:"averageRating"`
	Distribution  model.Distribution       `json:"distribution"`
	AdminMessages int                      `json:"adminMessages"`
}

// UserStats summarizes one member's activity.
type UserStats struct {
	UserID        string                   `json:"userId"`
	Sent          int                      `json:"sent"`
	Received      int                      `json:"received"`
	SwapsByStatus map[model.SwapStatus]int `json:"swapsByStatus"`
	Rating        float64                  `json:"rating"`
	TotalRatings  int                      `json:"totalRatings"`
	RatingsGiven  int                      `json:"ratingsGiven"`
	Distribution  model.Distribution       `json:"distribution"`
}

// PlatformStats computes the analytics summary over the whole state.
func (s *Service) PlatformStats() PlatformStats {
	stats := PlatformStats{SwapsByStatus: statusCounts()}

	s.appCtx.Repo.View(func(st *repository.State) {
		for _, u := range st.Users {
			if u.IsAdmin {
				continue
			}
			stats.TotalUsers++
			if u.IsBanned {
				stats.BannedUsers++
			} else {
				stats.ActiveUsers++
			}
			if u.Listed() {
				stats.PublicUsers++
			}
		}

		stats.TotalSwaps = len(st.SwapRequests)
		for _, r := range st.SwapRequests {
			stats.SwapsByStatus[r.Status]++
		}

		var sum int
		for _, r := range st.Ratings {
			sum += r.Rating
			stats.Distribution.Add(r.Rating)
		}
		stats.TotalRatings = len(st.Ratings)
		if stats.TotalRatings > 0 {
			stats.AverageRating = float64(sum) / float64(stats.TotalRatings)
		}

		stats.AdminMessages = len(st.AdminMessages)
	})
	return stats
}

// UserStats computes the activity summary of userID.
func (s *Service) UserStats(userID string) (UserStats, error) {
	stats := UserStats{UserID: userID, SwapsByStatus: statusCounts()}

	var found bool
	s.appCtx.Repo.View(func(st *repository.State) {
		idx := st.UserIndex(userID)
		if idx < 0 {
			return
		}
		found = true
		stats.Rating = st.Users[idx].Rating
		stats.TotalRatings = st.Users[idx].TotalRatings

		for _, r := range st.SwapRequests {
			switch userID {
			case r.FromUserID:
				stats.Sent++
			case r.ToUserID:
				stats.Received++
			default:
				continue
			}
			stats.SwapsByStatus[r.Status]++
		}

		for _, r := range st.Ratings {
			if r.ToUserID == userID {
				stats.Distribution.Add(r.Rating)
			}
			if r.FromUserID == userID {
				stats.RatingsGiven++
			}
		}
	})
	if !found {
		return UserStats{}, svcErr.NotFound("user", userID)
	}
	return stats, nil
}

func statusCounts() map[model.SwapStatus]int {
	m := make(map[model.SwapStatus]int, len(model.Statuses))
	for _, st := range model.Statuses {
		m[st] = 0
	}
	return m
}
