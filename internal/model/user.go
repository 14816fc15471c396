package model

import (
	"slices"
	"time"
)

// User is a member of the directory.
//
// Rating and TotalRatings are derived from the Rating records addressed to
// the user and are only ever written by the rating recomputation.
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Location        string    `json:"location,omitempty"`
	ProfilePhoto    string    `json:"profilePhoto,omitempty"`
	SkillsOffered   []string  `json:"skillsOffered"`
	SkillsWanted    []string  `json:"skillsWanted"`
	Availability    []string  `json:"availability"`
	IsProfilePublic bool      `json:"isProfilePublic"`
	Rating          float64   `json:"rating"`
	TotalRatings    int       `json:"totalRatings"`
	IsAdmin         bool      `json:"isAdmin"`
	IsBanned        bool      `json:"isBanned"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Clone returns a copy that shares no slices with u.
func (u User) Clone() User {
	u.SkillsOffered = slices.Clone(u.SkillsOffered)
	u.SkillsWanted = slices.Clone(u.SkillsWanted)
	u.Availability = slices.Clone(u.Availability)
	return u
}

// Labels copies a label list, turning nil into an empty list.
func Labels(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

// Listed reports whether the user shows up in search and browsing.
func (u User) Listed() bool {
	return u.IsProfilePublic && !u.IsBanned
}

// Credential holds the password hash of a user. It is stored apart from
// the User record so directory reads never carry credential material.
type Credential struct {
	UserID       string `json:"userId"`
	PasswordHash string `json:"passwordHash"`
}

// SignupDraft is the input of a signup.
type SignupDraft struct {
	Name            string   `validate:"required,max=120"`
	Email           string   `validate:"required,email"`
	Password        string   `validate:"required,min=6,max=72"`
	Location        string   `validate:"max=120"`
	ProfilePhoto    string   `validate:"dataimage"`
	SkillsOffered   []string `validate:"dive,required"`
	SkillsWanted    []string `validate:"dive,required"`
	Availability    []string `validate:"dive,required"`
	IsProfilePublic *bool
}

// ProfilePatch carries a partial profile update. Nil fields are left as is.
type ProfilePatch struct {
	Name            *string   `validate:"omitempty,min=1,max=120"`
	Email           *string   `validate:"omitempty,email"`
	Location        *string   `validate:"omitempty,max=120"`
	ProfilePhoto    *string   `validate:"omitempty,dataimage"`
	SkillsOffered   *[]string `validate:"omitempty,dive,required"`
	SkillsWanted    *[]string `validate:"omitempty,dive,required"`
	Availability    *[]string `validate:"omitempty,dive,required"`
	IsProfilePublic *bool
}

// Apply merges the patch into u.
func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.ProfilePhoto != nil {
		u.ProfilePhoto = *p.ProfilePhoto
	}
	if p.SkillsOffered != nil {
		u.SkillsOffered = Labels(*p.SkillsOffered)
	}
	if p.SkillsWanted != nil {
		u.SkillsWanted = Labels(*p.SkillsWanted)
	}
	if p.Availability != nil {
		u.Availability = Labels(*p.Availability)
	}
	if p.IsProfilePublic != nil {
		u.IsProfilePublic = *p.IsProfilePublic
	}
}
