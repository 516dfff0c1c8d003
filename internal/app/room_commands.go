package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"quiz-kingdom/internal/domain"
)

// Snapshot returns the current pushed view of the room.
func (r *Room) Snapshot(ctx context.Context) (domain.RoomSnapshot, error) {
	var snap domain.RoomSnapshot
	err := r.do(ctx, func() (bool, error) {
		snap = r.snapshot()
		return false, nil
	})
	return snap, err
}

// viewFor is a snapshot personalized for one caller.
func (r *Room) viewFor(ctx context.Context, userID string) (domain.RoomSnapshot, error) {
	var snap domain.RoomSnapshot
	err := r.do(ctx, func() (bool, error) {
		snap = r.personalize(r.snapshot(), userID)
		return false, nil
	})
	return snap, err
}

func (r *Room) personalize(snap domain.RoomSnapshot, userID string) domain.RoomSnapshot {
	if userID == "" {
		return snap
	}
	if p, ok := r.players[userID]; ok {
		snap.You = p.PublicID
	}
	snap.IsHost = userID == r.state.HostID
	return snap
}

func (r *Room) join(ctx context.Context, playerID, name, iconURL string) (domain.RoomSnapshot, error) {
	var snap domain.RoomSnapshot
	err := r.do(ctx, func() (bool, error) {
		if p, ok := r.players[playerID]; ok {
			p.Name = name
			p.IconURL = iconURL
			snap = r.personalize(r.snapshot(), playerID)
			return true, nil
		}
		if r.state.Status != domain.StatusWaiting {
			return false, domain.ErrRoomNotJoinable
		}
		r.addPlayer(playerID, name, iconURL)
		r.logger.Info("player joined", "player", playerID, "players", len(r.players))
		snap = r.personalize(r.snapshot(), playerID)
		return true, nil
	})
	return snap, err
}

func (r *Room) addPlayer(playerID, name, iconURL string) {
	p := &domain.Player{
		ID:       playerID,
		PublicID: uuid.NewString(),
		Name:     name,
		IconURL:  iconURL,
		JoinedAt: r.now(),
	}
	p.Reset()
	r.players[playerID] = p
}

func (r *Room) start(ctx context.Context, hostID string) (domain.RoomSnapshot, error) {
	return r.hostTransition(ctx, hostID, func() error {
		if r.state.Status != domain.StatusWaiting {
			return domain.ErrInvalidTransition
		}
		if len(r.players) == 0 {
			return domain.ErrNoPlayers
		}
		if len(r.questions) == 0 {
			return domain.ErrNoQuestions
		}
		r.beginQuestion(0)
		r.logger.Info("game started", "questions", len(r.questions), "players", len(r.players))
		return nil
	})
}

func (r *Room) advancePhase(ctx context.Context, hostID string) (domain.RoomSnapshot, error) {
	return r.hostTransition(ctx, hostID, func() error {
		if err := r.advance(); err != nil {
			return err
		}
		r.logger.Info("phase advanced", "phase", r.state.Phase, "index", r.state.CurrentQuestionIndex)
		return nil
	})
}

func (r *Room) forceClose(ctx context.Context, hostID string) (domain.RoomSnapshot, error) {
	return r.hostTransition(ctx, hostID, func() error {
		switch r.state.Phase {
		case domain.PhaseQuestion:
			r.closeQuestion()
			r.logger.Info("question closed by host", "index", r.state.CurrentQuestionIndex)
			return nil
		case domain.PhaseResult:
			return nil
		default:
			return domain.ErrInvalidTransition
		}
	})
}

func (r *Room) reset(ctx context.Context, hostID string) (domain.RoomSnapshot, error) {
	return r.hostTransition(ctx, hostID, func() error {
		r.resetProgress()
		r.logger.Info("game reset")
		return nil
	})
}

func (r *Room) hostTransition(ctx context.Context, hostID string, fn func() error) (domain.RoomSnapshot, error) {
	var snap domain.RoomSnapshot
	err := r.do(ctx, func() (bool, error) {
		if err := r.isHost(hostID); err != nil {
			return false, err
		}
		if err := fn(); err != nil {
			return false, err
		}
		snap = r.personalize(r.snapshot(), hostID)
		return true, nil
	})
	return snap, err
}

func (r *Room) submitAnswer(ctx context.Context, playerID, questionID string, choice int) (domain.AnswerResult, error) {
	var result domain.AnswerResult
	err := r.do(ctx, func() (bool, error) {
		if r.state.Phase != domain.PhaseQuestion {
			return false, domain.ErrNotAcceptingAnswers
		}
		q, ok := r.currentQuestion()
		if !ok || q.ID != questionID {
			return false, domain.ErrQuestionNotActive
		}
		p, ok := r.players[playerID]
		if !ok {
			return false, domain.ErrPlayerNotFound
		}
		if choice < 0 || choice >= len(q.Choices) {
			return false, domain.ErrChoiceOutOfRange
		}
		if p.Answered(q.ID) {
			return false, domain.ErrAlreadyAnswered
		}

		elapsed := r.now().Sub(r.state.StartTime).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
		correct := choice == q.CorrectAnswer
		award := domain.Score(correct, q.Points, float64(q.TimeLimit), elapsed)

		p.Score += award.Total
		p.TotalTime += elapsed
		p.Answers[q.ID] = domain.AnswerRecord{
			Choice:    choice,
			IsCorrect: correct,
			TimeTaken: elapsed,
			Points:    award.Total,
			Bonus:     award.Bonus,
		}

		result = domain.AnswerResult{
			QuestionID: q.ID,
			Correct:    correct,
			Base:       award.Base,
			Bonus:      award.Bonus,
			Awarded:    award.Total,
			TimeTaken:  elapsed,
			TotalScore: p.Score,
		}
		return true, nil
	})
	return result, err
}

func (r *Room) results(ctx context.Context) ([]domain.RankedPlayer, error) {
	var ranked []domain.RankedPlayer
	err := r.do(ctx, func() (bool, error) {
		if r.state.Status != domain.StatusFinished {
			return false, domain.ErrGameNotFinished
		}
		ranked = domain.Rank(r.playerList())
		return false, nil
	})
	return ranked, err
}

func (r *Room) listQuestions(ctx context.Context, hostID string) ([]domain.Question, error) {
	var list []domain.Question
	err := r.do(ctx, func() (bool, error) {
		if err := r.isHost(hostID); err != nil {
			return false, err
		}
		list = make([]domain.Question, len(r.questions))
		for i, q := range r.questions {
			q.Choices = append([]string(nil), q.Choices...)
			list[i] = q
		}
		return false, nil
	})
	return list, err
}

// addQuestions validates every question before appending any of them.
func (r *Room) addQuestions(ctx context.Context, hostID string, questions []domain.Question) ([]domain.Question, error) {
	var added []domain.Question
	err := r.do(ctx, func() (bool, error) {
		if err := r.editable(hostID); err != nil {
			return false, err
		}
		prepared := make([]domain.Question, 0, len(questions))
		for i, q := range questions {
			q = q.Normalize()
			if err := q.Validate(); err != nil {
				if len(questions) > 1 {
					return false, fmt.Errorf("question %d: %w", i+1, err)
				}
				return false, err
			}
			q.ID = uuid.NewString()
			q.CreatedAt = r.now()
			prepared = append(prepared, q)
		}
		r.questions = append(r.questions, prepared...)
		added = prepared
		return true, nil
	})
	return added, err
}

func (r *Room) updateQuestion(ctx context.Context, hostID, questionID string, patch domain.QuestionPatch) (domain.Question, error) {
	var updated domain.Question
	err := r.do(ctx, func() (bool, error) {
		if err := r.editable(hostID); err != nil {
			return false, err
		}
		idx := r.questionIndex(questionID)
		if idx < 0 {
			return false, domain.ErrQuestionNotFound
		}
		q := patch.Apply(r.questions[idx]).Normalize()
		if err := q.Validate(); err != nil {
			return false, err
		}
		r.questions[idx] = q
		updated = q
		return true, nil
	})
	return updated, err
}

func (r *Room) deleteQuestion(ctx context.Context, hostID, questionID string) error {
	return r.do(ctx, func() (bool, error) {
		if err := r.editable(hostID); err != nil {
			return false, err
		}
		idx := r.questionIndex(questionID)
		if idx < 0 {
			return false, domain.ErrQuestionNotFound
		}
		r.questions = append(r.questions[:idx], r.questions[idx+1:]...)
		return true, nil
	})
}

func (r *Room) editable(hostID string) error {
	if err := r.isHost(hostID); err != nil {
		return err
	}
	if r.state.Status != domain.StatusWaiting {
		return domain.ErrRoomNotWaiting
	}
	return nil
}

func (r *Room) questionIndex(questionID string) int {
	for i := range r.questions {
		if r.questions[i].ID == questionID {
			return i
		}
	}
	return -1
}
