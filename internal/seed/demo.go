package seed

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/oggyb/skillswap/internal/app"
	"github.com/oggyb/skillswap/internal/model"
	"github.com/oggyb/skillswap/internal/repository"
	"github.com/oggyb/skillswap/internal/service/exchange"
	"github.com/oggyb/skillswap/internal/service/identity"
)

var members = []model.SignupDraft{
	{Name: "Ananya Iyer", Email: "ananya@example.com", Location: "Chennai",
		SkillsOffered: []string{"Python", "Data Analysis"}, SkillsWanted: []string{"Photoshop"},
		Availability: []string{"Evenings"}},
	{Name: "Vikram Singh", Email: "vikram@example.com", Location: "Jaipur",
		SkillsOffered: []string{"Guitar", "Music Theory"}, SkillsWanted: []string{"JavaScript"},
		Availability: []string{"Weekends"}},
	{Name: "Meera Nair", Email: "meera@example.com", Location: "Kochi",
		SkillsOffered: []string{"Machine Learning", "Statistics"}, SkillsWanted: []string{"UI/UX Design"},
		Availability: []string{"Weekdays", "Mornings"}},
	{Name: "Arjun Mehta", Email: "arjun@example.com", Location: "Pune",
		SkillsOffered: []string{"Figma", "Illustration"}, SkillsWanted: []string{"Node.js", "Python"},
		Availability: []string{"Evenings", "Weekends"}},
	{Name: "Kavya Reddy", Email: "kavya@example.com", Location: "Hyderabad",
		SkillsOffered: []string{"Public Speaking"}, SkillsWanted: []string{"Machine Learning"},
		Availability: []string{"Weekends"}},
	{Name: "Rohan Das", Email: "rohan@example.com", Location: "Kolkata",
		SkillsOffered: []string{"Photography"}, SkillsWanted: []string{"Guitar"},
		Availability: []string{"Mornings"}},
}

// Demo resets the state layout and fills it with demo data.
//
// Behavior:
//  1. Deletes every key and reloads the bootstrap directory.
//  2. Signs up the demo members (all with password).
//  3. Creates 20 swap requests between random pairs, spread over every status.
//  4. Rates both sides of each completed swap, recomputing aggregates.
//  5. Posts a welcome broadcast and leaves nobody logged in.
//
// The random source is fixed, so every run produces the same layout.
func Demo(ctx context.Context, appCtx *app.AppContext, password string) error {
	r := rand.New(rand.NewPCG(42, 7))

	// --- Fresh start ---
	if err := appCtx.Repo.Reset(ctx); err != nil {
		return err
	}
	if err := appCtx.Repo.Load(ctx, repository.Bootstrap(appCtx.Now(), password, appCtx.BcryptCost)); err != nil {
		return err
	}
	appCtx.Logger.Info("cleared existing data")

	ident := identity.NewIdentityService(appCtx)
	ex := exchange.NewExchangeService(appCtx)

	// --- Members ---
	ids := []string{"1", "2"}
	for _, d := range members {
		d.Password = password
		u, err := ident.Signup(ctx, d)
		if err != nil {
			return fmt.Errorf("failed to seed member %s: %w", d.Email, err)
		}
		ids = append(ids, u.ID)
	}
	if err := ident.Logout(ctx); err != nil {
		return err
	}
	appCtx.Logger.Info("seeded members", "count", len(members))

	// --- Swaps and ratings ---
	directory := appCtx.Repo.Snapshot()
	var swaps, ratings int
	for i := range 20 {
		a, b := r.IntN(len(ids)), r.IntN(len(ids))
		if a == b {
			b = (b + 1) % len(ids)
		}
		from, to := ids[a], ids[b]

		req, err := ex.CreateSwapRequest(ctx, model.SwapDraft{
			FromUserID:   from,
			ToUserID:     to,
			OfferedSkill: pick(r, directory, from, func(u model.User) []string { return u.SkillsOffered }),
			WantedSkill:  pick(r, directory, to, func(u model.User) []string { return u.SkillsOffered }),
			Message:      "Would love to swap skills!",
		})
		if err != nil {
			return fmt.Errorf("failed to seed swap: %w", err)
		}
		swaps++

		// every 4th stays pending, the rest move on
		switch i % 4 {
		case 1:
			_, err = ex.Reject(ctx, req.ID, to)
		case 2:
			_, err = ex.Accept(ctx, req.ID, to)
		case 3:
			if _, err = ex.Accept(ctx, req.ID, to); err == nil {
				_, err = ex.Complete(ctx, req.ID, from)
			}
		}
		if err != nil {
			return fmt.Errorf("failed to move swap %s: %w", req.ID, err)
		}

		if i%4 != 3 {
			continue
		}
		for _, rater := range []string{from, to} {
			if _, err := ex.AddRating(ctx, model.RatingDraft{
				SwapRequestID: req.ID,
				FromUserID:    rater,
				ToUserID:      req.Counterpart(rater),
				Rating:        3 + r.IntN(3),
				Feedback:      "Great session, thanks!",
			}); err != nil {
				return fmt.Errorf("failed to seed rating: %w", err)
			}
			ratings++
		}
	}
	appCtx.Logger.Info("seeded swaps", "swaps", swaps, "ratings", ratings)

	// --- Broadcast ---
	if _, err := ex.AddAdminMessage(ctx, model.MessageDraft{
		Title:   "Welcome to SkillSwap",
		Content: "Browse the directory, send a swap request and rate your partner once you are done.",
		Type:    model.MessageInfo,
	}); err != nil {
		return fmt.Errorf("failed to seed broadcast: %w", err)
	}
	return nil
}

func pick(r *rand.Rand, st repository.State, userID string, skills func(model.User) []string) string {
	idx := st.UserIndex(userID)
	if idx < 0 {
		return "Anything"
	}
	list := skills(st.Users[idx])
	if len(list) == 0 {
		return "Anything"
	}
	return list[r.IntN(len(list))]
}
