package exchange

import (
	"slices"
	"strings"

	"github.com/oggyb/skillswap/internal/model"
	"github.com/oggyb/skillswap/internal/repository"
	"github.com/oggyb/skillswap/internal/utils/pagination"
)

// SearchUsers returns the public, unbanned users matching query, in
// directory order. A blank query matches everyone listed; otherwise the
// query is a case-insensitive substring of the name or of any offered or
// wanted skill.
func (s *Service) SearchUsers(query string) []model.User {
	s.appCtx.Logger.Debug("SearchUsers called", "query", query)

	q := normalizeQuery(query)
	out := []model.User{}
	s.appCtx.Repo.View(func(st *repository.State) {
		for _, u := range st.Users {
			if u.Listed() && matches(u, q) {
				out = append(out, u.Clone())
			}
		}
	})
	return out
}

// SearchUsersPage is SearchUsers split into pages of limit users.
//
// Behavior:
//   - token is empty for the first page, or the next token of the previous page.
//   - limit is clamped to [1, pagination.MaxLimit] (default pagination.DefaultLimit).
//   - The returned token is empty on the last page.
//
// Pages are anchored on user ids, so members banned or hidden between two
// calls never shift later pages.
func (s *Service) SearchUsersPage(query, token string, limit int) ([]model.User, string, error) {
	s.appCtx.Logger.Debug("SearchUsersPage called", "query", query, "token", token, "limit", limit)

	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", err
	}
	limit = pagination.Limit(limit)
	q := normalizeQuery(query)

	var (
		page    = []model.User{}
		unknown bool
	)
	s.appCtx.Repo.View(func(st *repository.State) {
		start := 0
		if cursor.AfterID != "" {
			idx := st.UserIndex(cursor.AfterID)
			if idx < 0 {
				unknown = true
				return
			}
			start = idx + 1
		}

		// fetch one extra to know whether another page exists
		for _, u := range st.Users[start:] {
			if u.Listed() && matches(u, q) {
				page = append(page, u.Clone())
				if len(page) > limit {
					break
				}
			}
		}
	})
	if unknown {
		return nil, "", pagination.ErrUnknownCursor
	}

	var next string
	if len(page) > limit {
		page = page[:limit]
		next, err = pagination.Encode(pagination.Cursor{AfterID: page[limit-1].ID})
		if err != nil {
			return nil, "", err
		}
	}
	return page, next, nil
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// matches expects q already normalized.
func matches(u model.User, q string) bool {
	if q == "" {
		return true
	}
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }
	return contains(u.Name) ||
		slices.ContainsFunc(u.SkillsOffered, contains) ||
		slices.ContainsFunc(u.SkillsWanted, contains)
}
