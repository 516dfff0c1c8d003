package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Normalize trims whitespace and fills a missing time limit. Points are left
// alone: zero is a legal value, and omitted points are defaulted when decoding.
func (q Question) Normalize() Question {
	q.Text = strings.TrimSpace(q.Text)
	choices := make([]string, len(q.Choices))
	for i, c := range q.Choices {
		choices[i] = strings.TrimSpace(c)
	}
	q.Choices = choices
	q.ImageURL = strings.TrimSpace(q.ImageURL)
	if q.TimeLimit == 0 {
		q.TimeLimit = DefaultTimeLimit
	}
	return q
}

// Validate rejects questions that could never be answered correctly.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidQuestion)
	}
	if len(q.Choices) < 2 {
		return fmt.Errorf("%w: at least 2 choices are required", ErrInvalidQuestion)
	}
	for i, c := range q.Choices {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: choice %d is empty", ErrInvalidQuestion, i+1)
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Choices) {
		return fmt.Errorf("%w: correct answer %d is not one of the %d choices", ErrInvalidQuestion, q.CorrectAnswer, len(q.Choices))
	}
	if q.TimeLimit <= 0 {
		return fmt.Errorf("%w: time limit must be positive", ErrInvalidQuestion)
	}
	if q.Points < 0 {
		return fmt.Errorf("%w: points must not be negative", ErrInvalidQuestion)
	}
	return nil
}

// ValidateName checks a player or leaderboard display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name is longer than %d characters", ErrInvalidName, MaxNameLength)
	}
	return nil
}

// Validate checks a solo leaderboard submission.
func (e LeaderboardEntry) Validate() error {
	if err := ValidateName(e.Nickname); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if e.Score < 0 {
		return fmt.Errorf("%w: score must not be negative", ErrInvalidEntry)
	}
	if e.TotalTime < 0 {
		return fmt.Errorf("%w: total time must not be negative", ErrInvalidEntry)
	}
	return nil
}
