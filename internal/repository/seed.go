package repository

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/skillswap/internal/model"
)

// Bootstrap IDs are fixed so a seeded layout is stable across resets.
const (
	BootstrapAdminID    = "admin"
	BootstrapAdminEmail = "admin@skillswap.com"
)

// Bootstrap returns the Seeder for a fresh directory:
//   - two public, non-admin members with complementary skills,
//   - one private administrator.
//
// Every account gets the same bcrypt-hashed password. Ratings start at
// zero because no Rating records exist yet.
func Bootstrap(now time.Time, password string, cost int) Seeder {
	return func() ([]model.User, []model.Credential, error) {
		users := []model.User{
			{
				ID:              "1",
				Name:            "Rahul Sharma",
				Email:           "rahul@example.com",
				Location:        "Mumbai",
				SkillsOffered:   []string{"React", "JavaScript", "Node.js"},
				SkillsWanted:    []string{"Python", "Machine Learning"},
				Availability:    []string{"Weekends", "Evenings"},
				IsProfilePublic: true,
				CreatedAt:       now,
			},
			{
				ID:              "2",
				Name:            "Priya Patel",
				Email:           "priya@example.com",
				Location:        "Delhi",
				SkillsOffered:   []string{"Photoshop", "UI/UX Design", "Figma"},
				SkillsWanted:    []string{"React", "Frontend Development"},
				Availability:    []string{"Weekdays", "Mornings"},
				IsProfilePublic: true,
				CreatedAt:       now,
			},
			{
				ID:            BootstrapAdminID,
				Name:          "Admin User",
				Email:         BootstrapAdminEmail,
				SkillsOffered: []string{},
				SkillsWanted:  []string{},
				Availability:  []string{},
				IsAdmin:       true,
				CreatedAt:     now,
			},
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash seed password: %w", err)
		}

		creds := make([]model.Credential, 0, len(users))
		for _, u := range users {
			creds = append(creds, model.Credential{UserID: u.ID, PasswordHash: string(hash)})
		}
		return users, creds, nil
	}
}
