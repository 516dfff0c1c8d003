package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quiz-kingdom/internal/app"
	"quiz-kingdom/internal/domain"
	"quiz-kingdom/internal/infra/memory"
)

func TestCreateRoomRetriesOnCollision(t *testing.T) {
	codes := []string{"aaaaaa", "AAAAAA", "AAAAAA", "BBBBBB"}
	next := 0
	h := newHarness(t, app.WithCodeGenerator(func() string {
		code := codes[next]
		next++
		return code
	}))
	ctx := context.Background()

	first, err := h.service.CreateRoom(ctx, "host-1", domain.RoomConfig{})
	if err != nil {
		t.Fatalf("create first room: %v", err)
	}
	if first.Code != "AAAAAA" {
		t.Fatalf("expected normalized code AAAAAA, got %s", first.Code)
	}

	second, err := h.service.CreateRoom(ctx, "host-2", domain.RoomConfig{})
	if err != nil {
		t.Fatalf("create second room: %v", err)
	}
	if second.Code != "BBBBBB" {
		t.Fatalf("expected retry to land on BBBBBB, got %s", second.Code)
	}
	if next != 4 {
		t.Fatalf("expected 4 codes drawn, got %d", next)
	}
	if second.Status != domain.StatusWaiting || second.Phase != domain.PhaseWaiting || second.CurrentQuestionIndex != -1 {
		t.Fatalf("unexpected initial room state: %+v", second.Room)
	}
}

func TestCreateRoomHonorsContext(t *testing.T) {
	h := newHarness(t, app.WithCodeGenerator(func() string { return "SAME00" }))
	if _, err := h.service.CreateRoom(context.Background(), "host", domain.RoomConfig{}); err != nil {
		t.Fatalf("create room: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := h.service.CreateRoom(ctx, "host", domain.RoomConfig{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected endless collisions to stop on ctx, got %v", err)
	}
}

func TestGeneratedCodesUseAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := app.GenerateCode()
		if len(code) != 6 {
			t.Fatalf("expected 6 characters, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", r) {
				t.Fatalf("unexpected rune %q in %q", r, code)
			}
		}
	}
}

func TestHostParticipatesJoinsAsPlayer(t *testing.T) {
	h := newHarness(t)
	snap, err := h.service.CreateRoom(context.Background(), "host", domain.RoomConfig{
		HostParticipates: true,
		HostName:         "Queen",
	})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if len(snap.Players) != 1 || snap.Players[0].Name != "Queen" {
		t.Fatalf("expected host as sole player, got %+v", snap.Players)
	}
	if !snap.IsHost || snap.You == "" || snap.You == "host" || snap.Players[0].ID != snap.You {
		t.Fatalf("expected host view with public id, got you=%q isHost=%v", snap.You, snap.IsHost)
	}

	guest, err := h.service.Join(context.Background(), snap.Code, "u1", "Knave", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if guest.IsHost || guest.HostID != "" {
		t.Fatalf("guest view exposes host: %+v", guest.Room)
	}
	for _, p := range guest.Players {
		if _, err := h.service.StartGame(context.Background(), snap.Code, p.ID); !errors.Is(err, domain.ErrNotHost) {
			t.Fatalf("expected public id %q to be rejected as host, got %v", p.ID, err)
		}
	}

	if _, err := h.service.CreateRoom(context.Background(), "host", domain.RoomConfig{HostParticipates: true}); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected participating host to need a name, got %v", err)
	}
}

func TestStandardModeSeedsFromBank(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	snap, err := h.service.CreateRoom(ctx, "host", domain.RoomConfig{
		Mode:          domain.ModeStandard,
		Category:      "dragons",
		QuestionCount: 2,
	})
	if err != nil {
		t.Fatalf("create standard room: %v", err)
	}
	if snap.QuestionCount != 2 {
		t.Fatalf("expected 2 seeded questions, got %d", snap.QuestionCount)
	}
	questions, err := h.service.ListQuestions(ctx, snap.Code, "host")
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if questions[0].TimeLimit != domain.DefaultTimeLimit || questions[0].Points != domain.DefaultPoints {
		t.Fatalf("expected defaults on seeded question, got %+v", questions[0])
	}

	_, err = h.service.CreateRoom(ctx, "host", domain.RoomConfig{Mode: domain.ModeStandard, Category: "goblins"})
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected unknown category error, got %v", err)
	}

	_, err = h.service.CreateRoom(ctx, "host", domain.RoomConfig{Mode: "tournament"})
	if !errors.Is(err, domain.ErrInvalidRoomConfig) {
		t.Fatalf("expected invalid room config, got %v", err)
	}
}

func TestGameFlowScoresAndRanks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 2)
	h.join(t, code, "u1", "u2")

	snap, err := h.service.StartGame(ctx, code, "host")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.Status != domain.StatusPlaying || snap.Phase != domain.PhaseQuestion || snap.CurrentQuestionIndex != 0 {
		t.Fatalf("unexpected state after start: %+v", snap.Room)
	}
	if armed := h.timer.Armed(); len(armed) != 1 || armed[0] != 20*time.Second {
		t.Fatalf("expected a 20s countdown, got %v", armed)
	}
	q1 := snap.CurrentQuestion.ID

	h.clock.Advance(10 * time.Second)
	res, err := h.service.SubmitAnswer(ctx, code, "u1", q1, 1)
	if err != nil {
		t.Fatalf("u1 answer: %v", err)
	}
	if !res.Correct || res.Base != 1000 || res.Bonus != 250 || res.Awarded != 1250 || res.TotalScore != 1250 {
		t.Fatalf("unexpected u1 result: %+v", res)
	}

	h.clock.Advance(2 * time.Second)
	res, err = h.service.SubmitAnswer(ctx, code, "u2", q1, 0)
	if err != nil {
		t.Fatalf("u2 answer: %v", err)
	}
	if res.Correct || res.Awarded != 0 || res.TimeTaken != 12 {
		t.Fatalf("unexpected u2 result: %+v", res)
	}

	if _, err := h.service.SubmitAnswer(ctx, code, "u1", q1, 1); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected second answer rejected, got %v", err)
	}

	if _, err := h.service.AdvancePhase(ctx, code, "host"); err != nil {
		t.Fatalf("advance to result: %v", err)
	}
	snap, err = h.service.AdvancePhase(ctx, code, "host")
	if err != nil {
		t.Fatalf("advance to q2: %v", err)
	}
	if snap.Phase != domain.PhaseQuestion || snap.CurrentQuestionIndex != 1 {
		t.Fatalf("expected second question, got %+v", snap.Room)
	}
	q2 := snap.CurrentQuestion.ID

	if _, err := h.service.SubmitAnswer(ctx, code, "u2", q1, 1); !errors.Is(err, domain.ErrQuestionNotActive) {
		t.Fatalf("expected stale question rejected, got %v", err)
	}
	if _, err := h.service.SubmitAnswer(ctx, code, "u2", q2, 1); err != nil {
		t.Fatalf("u2 answer q2: %v", err)
	}

	if _, err := h.service.Results(ctx, code); !errors.Is(err, domain.ErrGameNotFinished) {
		t.Fatalf("expected results to wait for finish, got %v", err)
	}
	if _, err := h.service.AdvancePhase(ctx, code, "host"); err != nil {
		t.Fatalf("advance to result 2: %v", err)
	}
	snap, err = h.service.AdvancePhase(ctx, code, "host")
	if err != nil {
		t.Fatalf("advance to finished: %v", err)
	}
	if snap.Status != domain.StatusFinished || snap.Phase != domain.PhaseFinished {
		t.Fatalf("expected finished room, got %+v", snap.Room)
	}
	if _, err := h.service.AdvancePhase(ctx, code, "host"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected no transition out of finished, got %v", err)
	}

	ranked, err := h.service.Results(ctx, code)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(ranked) != 2 || ranked[0].Name != "Player u2" || ranked[0].Rank != 1 || ranked[1].Name != "Player u1" {
		t.Fatalf("unexpected ranking: %+v", ranked)
	}
	if ranked[0].Score != 1500 || ranked[1].Score != 1250 {
		t.Fatalf("unexpected scores: %+v", ranked)
	}
}

func TestCorrectAnswerHiddenDuringQuestion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 1)
	h.join(t, code, "u1")

	snap, err := h.service.StartGame(ctx, code, "host")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.CurrentQuestion == nil || snap.CurrentQuestion.CorrectAnswer != nil {
		t.Fatalf("expected correct answer hidden, got %+v", snap.CurrentQuestion)
	}
	if snap.Deadline == nil || !snap.Deadline.Equal(snap.StartTime.Add(20*time.Second)) {
		t.Fatalf("expected deadline 20s after start, got %v", snap.Deadline)
	}

	snap, err = h.service.CloseQuestion(ctx, code, "host")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if snap.CurrentQuestion.CorrectAnswer == nil || *snap.CurrentQuestion.CorrectAnswer != 1 {
		t.Fatalf("expected correct answer revealed, got %+v", snap.CurrentQuestion)
	}
}

func TestCloseQuestionIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 1)
	h.join(t, code, "u1")

	if _, err := h.service.CloseQuestion(ctx, code, "host"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected close in waiting to fail, got %v", err)
	}
	snap, err := h.service.StartGame(ctx, code, "host")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 2; i++ {
		closed, err := h.service.CloseQuestion(ctx, code, "host")
		if err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
		if closed.Phase != domain.PhaseResult || closed.CurrentQuestionIndex != 0 {
			t.Fatalf("close %d: unexpected state %+v", i, closed.Room)
		}
	}
	if h.timer.Fire() {
		t.Fatalf("expected countdown stopped by close")
	}
	if _, err := h.service.SubmitAnswer(ctx, code, "u1", snap.CurrentQuestion.ID, 1); !errors.Is(err, domain.ErrNotAcceptingAnswers) {
		t.Fatalf("expected answers refused after close, got %v", err)
	}
}

func TestTimerExpiryClosesQuestionOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 2)
	h.join(t, code, "u1")

	ch, cancel, err := h.service.Subscribe(ctx, code)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if _, err := h.service.StartGame(ctx, code, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !h.timer.Fire() {
		t.Fatalf("expected an armed countdown")
	}
	snap := waitFor(t, ch, func(s domain.RoomSnapshot) bool { return s.Phase == domain.PhaseResult })
	if snap.CurrentQuestionIndex != 0 {
		t.Fatalf("expected first question closed, got index %d", snap.CurrentQuestionIndex)
	}

	// the host's close arriving after expiry changes nothing
	again, err := h.service.CloseQuestion(ctx, code, "host")
	if err != nil {
		t.Fatalf("close after expiry: %v", err)
	}
	if again.Phase != domain.PhaseResult || again.CurrentQuestionIndex != 0 {
		t.Fatalf("unexpected state after late close: %+v", again.Room)
	}
}

func TestHostOnlyOperations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 1)
	h.join(t, code, "u1")

	if _, err := h.service.StartGame(ctx, code, "u1"); !errors.Is(err, domain.ErrNotHost) {
		t.Fatalf("expected guest start refused, got %v", err)
	}
	if _, err := h.service.ListQuestions(ctx, code, "u1"); !errors.Is(err, domain.ErrNotHost) {
		t.Fatalf("expected guest list refused, got %v", err)
	}
	if err := h.service.DeleteRoom(ctx, code, "u1", true); !errors.Is(err, domain.ErrNotHost) {
		t.Fatalf("expected guest delete refused, got %v", err)
	}
	if _, err := h.service.AddQuestion(ctx, code, "", domain.Question{Text: "x", Choices: []string{"a", "b"}}); !errors.Is(err, domain.ErrNotHost) {
		t.Fatalf("expected anonymous add refused, got %v", err)
	}
}

func TestStartRequiresPlayersAndQuestions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	empty, err := h.service.CreateRoom(ctx, "host", domain.RoomConfig{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	h.join(t, empty.Code, "u1")
	if _, err := h.service.StartGame(ctx, empty.Code, "host"); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected no questions error, got %v", err)
	}

	code := h.newRoomWithQuestions(t, 1)
	if _, err := h.service.StartGame(ctx, code, "host"); !errors.Is(err, domain.ErrNoPlayers) {
		t.Fatalf("expected no players error, got %v", err)
	}
}

func TestJoinRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 1)
	h.join(t, code, "u1")

	if _, err := h.service.Join(ctx, code, "u2", "   ", ""); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected blank name refused, got %v", err)
	}
	if _, err := h.service.Join(ctx, code, "", "Nobody", ""); !errors.Is(err, domain.ErrMissingIdentity) {
		t.Fatalf("expected missing identity, got %v", err)
	}
	if _, err := h.service.Join(ctx, "nope00", "u2", "Bob", ""); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected unknown room, got %v", err)
	}

	if _, err := h.service.StartGame(ctx, code, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.service.Join(ctx, code, "u2", "Bob", ""); !errors.Is(err, domain.ErrRoomNotJoinable) {
		t.Fatalf("expected late join refused, got %v", err)
	}
	snap, err := h.service.Join(ctx, strings.ToLower(code), "u1", "Alice Again", "icon.png")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if len(snap.Players) != 1 || snap.Players[0].Name != "Alice Again" || snap.Players[0].IconURL != "icon.png" {
		t.Fatalf("expected refreshed player, got %+v", snap.Players)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 1)
	h.join(t, code, "u1")

	if _, err := h.service.SubmitAnswer(ctx, code, "u1", "q", 0); !errors.Is(err, domain.ErrNotAcceptingAnswers) {
		t.Fatalf("expected answers refused while waiting, got %v", err)
	}
	snap, err := h.service.StartGame(ctx, code, "host")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	qid := snap.CurrentQuestion.ID

	if _, err := h.service.SubmitAnswer(ctx, code, "stranger", qid, 0); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected unknown player, got %v", err)
	}
	if _, err := h.service.SubmitAnswer(ctx, code, "u1", qid, 2); !errors.Is(err, domain.ErrChoiceOutOfRange) {
		t.Fatalf("expected choice out of range, got %v", err)
	}
	if _, err := h.service.SubmitAnswer(ctx, code, "u1", qid, -1); !errors.Is(err, domain.ErrChoiceOutOfRange) {
		t.Fatalf("expected negative choice refused, got %v", err)
	}

	h.clock.Advance(30 * time.Second)
	res, err := h.service.SubmitAnswer(ctx, code, "u1", qid, 1)
	if err != nil {
		t.Fatalf("late answer before expiry: %v", err)
	}
	if res.Bonus != 0 || res.Awarded != 1000 {
		t.Fatalf("expected base points only past the deadline, got %+v", res)
	}
}

func TestResetZeroesPlayers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 1)
	h.join(t, code, "u1")

	snap, err := h.service.StartGame(ctx, code, "host")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.service.SubmitAnswer(ctx, code, "u1", snap.CurrentQuestion.ID, 1); err != nil {
		t.Fatalf("answer: %v", err)
	}

	snap, err = h.service.ResetGame(ctx, code, "host")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if snap.Status != domain.StatusWaiting || snap.Phase != domain.PhaseWaiting || snap.CurrentQuestionIndex != -1 {
		t.Fatalf("expected waiting room after reset, got %+v", snap.Room)
	}
	if snap.CurrentQuestion != nil {
		t.Fatalf("expected no current question after reset")
	}
	if len(snap.Players) != 1 || snap.Players[0].Score != 0 || snap.Players[0].TotalTime != 0 {
		t.Fatalf("expected zeroed player, got %+v", snap.Players)
	}

	snap, err = h.service.StartGame(ctx, code, "host")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if _, err := h.service.SubmitAnswer(ctx, code, "u1", snap.CurrentQuestion.ID, 1); err != nil {
		t.Fatalf("answer after reset: %v", err)
	}
}

func TestDeleteRoomNotifiesSubscribers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 1)

	ch, cancel, err := h.service.Subscribe(ctx, code)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if err := h.service.DeleteRoom(ctx, code, "host", false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("expected confirmation required, got %v", err)
	}
	if err := h.service.DeleteRoom(ctx, code, "host", true); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var last domain.RoomSnapshot
	for snap := range ch {
		last = snap
	}
	if !last.Deleted {
		t.Fatalf("expected final snapshot marked deleted, got %+v", last)
	}
	if _, err := h.service.Room(ctx, code); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected room gone, got %v", err)
	}
}

func TestSlowSubscriberKeepsNewestSnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 1)

	ch, cancel, err := h.service.Subscribe(ctx, code)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	ids := make([]string, 20)
	for i := range ids {
		ids[i] = "p" + string(rune('a'+i))
	}
	h.join(t, code, ids...)

	var last domain.RoomSnapshot
	for len(ch) > 0 {
		last = <-ch
	}
	if len(last.Players) != 20 {
		t.Fatalf("expected newest snapshot with 20 players, got %d", len(last.Players))
	}
}

func TestQuestionEditing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 2)
	h.join(t, code, "u1")

	questions, err := h.service.ListQuestions(ctx, code, "host")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	text := "Updated?"
	correct := 0
	updated, err := h.service.UpdateQuestion(ctx, code, "host", questions[0].ID, domain.QuestionPatch{Text: &text, CorrectAnswer: &correct})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Text != "Updated?" || updated.CorrectAnswer != 0 || len(updated.Choices) != 2 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	bad := 5
	if _, err := h.service.UpdateQuestion(ctx, code, "host", questions[0].ID, domain.QuestionPatch{CorrectAnswer: &bad}); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid patch refused, got %v", err)
	}
	if _, err := h.service.AddQuestion(ctx, code, "host", domain.Question{Text: "One choice", Choices: []string{"only"}}); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question refused, got %v", err)
	}
	if err := h.service.DeleteQuestion(ctx, code, "host", "missing"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected unknown question, got %v", err)
	}
	if err := h.service.DeleteQuestion(ctx, code, "host", questions[1].ID); err != nil {
		t.Fatalf("delete question: %v", err)
	}

	snap, err := h.service.StartGame(ctx, code, "host")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.QuestionCount != 1 {
		t.Fatalf("expected one question left, got %d", snap.QuestionCount)
	}
	if _, err := h.service.AddQuestion(ctx, code, "host", domain.Question{Text: "Late", Choices: []string{"a", "b"}}); !errors.Is(err, domain.ErrRoomNotWaiting) {
		t.Fatalf("expected edits locked while playing, got %v", err)
	}
}

func TestImportQuestions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.newRoomWithQuestions(t, 0)

	sheet := "text,choice1,choice2,choice3,correct,timeLimit,points\n" +
		"Dragon color?,Red,Blue,,1,15,500\n" +
		"Wizard hat shape?,Cone,Cube,Ring,1,,\n"
	added, err := h.service.ImportQuestions(ctx, code, "host", strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(added) != 2 || added[0].TimeLimit != 15 || added[0].Points != 500 || added[1].Points != domain.DefaultPoints {
		t.Fatalf("unexpected imported questions: %+v", added)
	}

	broken := "text,choice1,choice2,correct\nOk?,a,b,1\nBad?,a,b,7\n"
	if _, err := h.service.ImportQuestions(ctx, code, "host", strings.NewReader(broken)); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected broken sheet refused, got %v", err)
	}
	questions, err := h.service.ListQuestions(ctx, code, "host")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected failed import to add nothing, got %d questions", len(questions))
	}
}

func TestReapIdleRemovesStaleRooms(t *testing.T) {
	h := newHarness(t, app.WithIdleTimeout(time.Hour))
	ctx := context.Background()
	stale := h.newRoomWithQuestions(t, 0)

	h.clock.Advance(50 * time.Minute)
	fresh := h.newRoomWithQuestions(t, 0)

	h.clock.Advance(20 * time.Minute)
	if reaped := h.service.ReapIdle(ctx, h.clock.Now()); reaped != 1 {
		t.Fatalf("expected one room reaped, got %d", reaped)
	}
	if _, err := h.service.Room(ctx, stale); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected stale room removed, got %v", err)
	}
	if _, err := h.service.Room(ctx, fresh); err != nil {
		t.Fatalf("expected fresh room kept, got %v", err)
	}
}

func TestFailedCreateLeavesNoRoom(t *testing.T) {
	registry := memory.NewRoomRegistry()
	bank := memory.NewQuestionBank(memory.NewStaticBankLoader(map[string][]domain.Question{
		"broken": {{ID: "broken-1", Category: "broken", Text: "Only one way?", Choices: []string{"yes"}}},
	}), time.Minute)
	service := app.NewRoomService(registry, bank)

	_, err := service.CreateRoom(context.Background(), "host", domain.RoomConfig{
		Mode:             domain.ModeStandard,
		Category:         "broken",
		HostParticipates: true,
		HostName:         "Queen",
	})
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid bank question to fail create, got %v", err)
	}
	if rooms := registry.Rooms(); len(rooms) != 0 {
		t.Fatalf("expected no room left registered, got %d", len(rooms))
	}
}

func TestZeroPointQuestionScoresNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	snap, err := h.service.CreateRoom(ctx, "host", domain.RoomConfig{})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	q, err := h.service.AddQuestion(ctx, snap.Code, "host", domain.Question{
		Text:    "Warm-up: ready?",
		Choices: []string{"yes", "no"},
		Points:  0,
	})
	if err != nil {
		t.Fatalf("add zero-point question: %v", err)
	}
	if q.Points != 0 {
		t.Fatalf("expected points kept at 0, got %d", q.Points)
	}
	h.join(t, snap.Code, "u1")
	if _, err := h.service.StartGame(ctx, snap.Code, "host"); err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := h.service.SubmitAnswer(ctx, snap.Code, "u1", q.ID, 0)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !res.Correct || res.Awarded != 0 {
		t.Fatalf("expected a correct answer worth nothing, got %+v", res)
	}
}
