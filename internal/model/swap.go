package model

import "time"

// SwapStatus is the lifecycle state of a swap request.
type SwapStatus string

const (
	StatusPending   SwapStatus = "pending"
	StatusAccepted  SwapStatus = "accepted"
	StatusRejected  SwapStatus = "rejected"
	StatusCompleted SwapStatus = "completed"
)

// Statuses lists every status in display order.
var Statuses = []SwapStatus{StatusPending, StatusAccepted, StatusRejected, StatusCompleted}

var transitions = map[SwapStatus][]SwapStatus{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusCompleted},
}

// Valid reports whether s is a known status.
func (s SwapStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s SwapStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// CanTransitionTo reports whether the state machine allows s -> next.
//
//	pending  -> accepted | rejected
//	accepted -> completed
func (s SwapStatus) CanTransitionTo(next SwapStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SwapRequest is a proposal from one user to exchange OfferedSkill for WantedSkill with another.
type SwapRequest struct {
	ID           string     `json:"id"`
	FromUserID   string     `json:"fromUserId"`
	ToUserID     string     `json:"toUserId"`
	OfferedSkill string     `json:"offeredSkill"`
	WantedSkill  string     `json:"wantedSkill"`
	Message      string     `json:"message"`
	Status       SwapStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Involves reports whether userID is one of the two parties.
func (r SwapRequest) Involves(userID string) bool {
	return r.FromUserID == userID || r.ToUserID == userID
}

// Counterpart returns the other party of the request.
func (r SwapRequest) Counterpart(userID string) string {
	if r.FromUserID == userID {
		return r.ToUserID
	}
	return r.FromUserID
}

// SwapDraft is the input for creating a swap request.
type SwapDraft struct {
	FromUserID   string `validate:"required"`
	ToUserID     string `validate:"required"`
	OfferedSkill string `validate:"required,max=120"`
	WantedSkill  string `validate:"required,max=120"`
	Message      string `validate:"max=2000"`
}

// SwapPatch is a partial update of a swap request. Nil fields are left as is.
type SwapPatch struct {
	Status       *SwapStatus
	OfferedSkill *string `validate:"omitempty,min=1,max=120"`
	WantedSkill  *string `validate:"omitempty,min=1,max=120"`
	Message      *string `validate:"omitempty,max=2000"`
}

// EditsFields reports whether the patch touches anything besides the status.
func (p SwapPatch) EditsFields() bool {
	return p.OfferedSkill != nil || p.WantedSkill != nil || p.Message != nil
}

// StatusPatch builds a patch that only moves the status.
func StatusPatch(s SwapStatus) SwapPatch {
	return SwapPatch{Status: &s}
}

// Box selects which side of a user's swap requests to list.
type Box string

const (
	BoxAll      Box = "all"
	BoxSent     Box = "sent"
	BoxReceived Box = "received"
)

// Holds reports whether r belongs in the box of userID.
func (b Box) Holds(r SwapRequest, userID string) bool {
	switch b {
	case BoxSent:
		return r.FromUserID == userID
	case BoxReceived:
		return r.ToUserID == userID
	default:
		return r.Involves(userID)
	}
}
