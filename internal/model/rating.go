package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is the score one party gives the other after a completed swap.
type Rating struct {
	ID            string    `json:"id"`
	SwapRequestID string    `json:"swapRequestId"`
	FromUserID    string    `json:"fromUserId"`
	ToUserID      string    `json:"toUserId"`
	Rating        int       `json:"rating"`
	Feedback      string    `json:"feedback"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RatingDraft is the input for submitting a rating.
type RatingDraft struct {
	SwapRequestID string `validate:"required"`
	FromUserID    string `validate:"required"`
	ToUserID      string `validate:"required,nefield=FromUserID"`
	Rating        int    `validate:"min=1,max=5"`
	Feedback      string `validate:"max=2000"`
}

// AverageRating returns the mean score and the number of ratings addressed to userID.
// The mean is 0 when there are none.
func AverageRating(ratings []Rating, userID string) (float64, int) {
	var sum, count int
	for _, r := range ratings {
		if r.ToUserID != userID {
			continue
		}
		sum += r.Rating
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(sum) / float64(count), count
}

// Distribution counts ratings by score, index 0 holding score 1.
type Distribution [MaxRating]int

// Add counts one score; out-of-range scores are ignored.
func (d *Distribution) Add(score int) {
	if score < MinRating || score > MaxRating {
		return
	}
	d[score-1]++
}

// Count returns how many ratings carried score.
func (d Distribution) Count(score int) int {
	if score < MinRating || score > MaxRating {
		return 0
	}
	return d[score-1]
}
