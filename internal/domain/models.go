package domain

import (
	"encoding/json"
	"time"
)

// RoomStatus is the overall lifecycle state of a room.
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// Phase is the sub-state of a room while it is being played.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseQuestion Phase = "question"
	PhaseResult   Phase = "result"
	PhaseFinished Phase = "finished"
)

// RoomMode selects where a room's questions come from.
type RoomMode string

const (
	// ModeCustom rooms are authored by the host.
	ModeCustom RoomMode = "custom"
	// ModeStandard rooms are seeded from the question bank.
	ModeStandard RoomMode = "standard"
)

// Defaults applied to questions that leave these fields empty.
const (
	DefaultTimeLimit = 20
	DefaultPoints    = 1000
	MaxNameLength    = 32
)

// RoomConfig is what a host chooses when creating a room.
type RoomConfig struct {
	HostParticipates bool     `json:"hostParticipates"`
	HostName         string   `json:"hostName,omitempty"`
	HostIconURL      string   `json:"hostIconUrl,omitempty"`
	Mode             RoomMode `json:"mode,omitempty"`
	Category         string   `json:"category,omitempty"`
	QuestionCount    int      `json:"questionCount,omitempty"`
}

// Room holds the room-level fields only the host (or the room's own timer) changes.
// HostID is the host's identity and never leaves the process.
type Room struct {
	Code                 string     `json:"code"`
	HostID               string     `json:"-"`
	Status               RoomStatus `json:"status"`
	Phase                Phase      `json:"currentPhase"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	StartTime            time.Time  `json:"startTime"`
	HostParticipates     bool       `json:"hostParticipates"`
	Mode                 RoomMode   `json:"mode"`
	Category             string     `json:"category,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// Question is a multiple choice question. CorrectAnswer indexes into Choices.
type Question struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Choices       []string  `json:"choices"`
	CorrectAnswer int       `json:"correctAnswer"`
	TimeLimit     int       `json:"timeLimit"` // seconds
	Points        int       `json:"points"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Category      string    `json:"category,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UnmarshalJSON gives documents without a "points" key DefaultPoints; an
// explicit 0 is kept.
func (q *Question) UnmarshalJSON(data []byte) error {
	type plain Question
	aux := struct {
		*plain
		Points *int `json:"points"`
	}{plain: (*plain)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	q.Points = DefaultPoints
	if aux.Points != nil {
		q.Points = *aux.Points
	}
	return nil
}

// QuestionPatch carries the fields of an UpdateQuestion call; nil fields are left alone.
type QuestionPatch struct {
	Text          *string   `json:"text,omitempty"`
	Choices       *[]string `json:"choices,omitempty"`
	CorrectAnswer *int      `json:"correctAnswer,omitempty"`
	TimeLimit     *int      `json:"timeLimit,omitempty"`
	Points        *int      `json:"points,omitempty"`
	ImageURL      *string   `json:"imageUrl,omitempty"`
}

// Apply returns a copy of q with the patch applied.
func (p QuestionPatch) Apply(q Question) Question {
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Choices != nil {
		q.Choices = append([]string(nil), (*p.Choices)...)
	}
	if p.CorrectAnswer != nil {
		q.CorrectAnswer = *p.CorrectAnswer
	}
	if p.TimeLimit != nil {
		q.TimeLimit = *p.TimeLimit
	}
	if p.Points != nil {
		q.Points = *p.Points
	}
	if p.ImageURL != nil {
		q.ImageURL = *p.ImageURL
	}
	return q
}

// AnswerRecord is what a player earned on a single question.
type AnswerRecord struct {
	Choice    int     `json:"choice"`
	IsCorrect bool    `json:"isCorrect"`
	TimeTaken float64 `json:"timeTaken"` // seconds
	Points    int     `json:"points"`
	Bonus     int     `json:"bonus"`
}

// Player represents a room participant and their accumulated score.
// ID is the caller identity; PublicID is what other players see.
type Player struct {
	ID        string                  `json:"-"`
	PublicID  string                  `json:"publicId"`
	Name      string                  `json:"name"`
	IconURL   string                  `json:"iconUrl,omitempty"`
	Score     int                     `json:"score"`
	TotalTime float64                 `json:"totalTime"` // seconds
	Answers   map[string]AnswerRecord `json:"answers"`
	JoinedAt  time.Time               `json:"joinedAt"`
}

// Answered reports whether the player already has an answer for questionID.
func (p *Player) Answered(questionID string) bool {
	_, ok := p.Answers[questionID]
	return ok
}

// Reset zeroes the player's progress but keeps their identity.
func (p *Player) Reset() {
	p.Score = 0
	p.TotalTime = 0
	p.Answers = make(map[string]AnswerRecord)
}

// RankedPlayer is a snapshot-friendly view of a player with their position.
type RankedPlayer struct {
	Rank      int     `json:"rank"`
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	IconURL   string  `json:"iconUrl,omitempty"`
	Score     int     `json:"score"`
	TotalTime float64 `json:"totalTime"`
	Answered  bool    `json:"answered"`
}

// QuestionView is the current question as shown to every subscriber.
// CorrectAnswer stays nil until the question has been closed.
type QuestionView struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Choices       []string `json:"choices"`
	TimeLimit     int      `json:"timeLimit"`
	Points        int      `json:"points"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
}

// RoomSnapshot is the pushed view of a room.
type RoomSnapshot struct {
	Room
	QuestionCount   int            `json:"questionCount"`
	CurrentQuestion *QuestionView  `json:"currentQuestion,omitempty"`
	Deadline        *time.Time     `json:"deadline,omitempty"`
	Players         []RankedPlayer `json:"players"`
	Deleted         bool           `json:"deleted,omitempty"`
	UpdatedAt       time.Time      `json:"updatedAt"`

	// Set only on views built for one caller, never on broadcasts.
	You    string `json:"you,omitempty"`
	IsHost bool   `json:"isHost,omitempty"`
}

// AnswerResult summarizes the outcome of a submission for a single player.
type AnswerResult struct {
	QuestionID string  `json:"questionId"`
	Correct    bool    `json:"correct"`
	Base       int     `json:"base"`
	Bonus      int     `json:"bonus"`
	Awarded    int     `json:"awarded"`
	TimeTaken  float64 `json:"timeTaken"`
	TotalScore int     `json:"totalScore"`
}

// LeaderboardEntry is one solo-mode high score.
type LeaderboardEntry struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Score     int       `json:"score"`
	TotalTime float64   `json:"totalTime"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}
