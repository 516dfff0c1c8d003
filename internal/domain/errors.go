package domain

import "errors"

var (
	// ErrRoomNotFound is returned when no live room has the requested code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomExists is returned by registries when a code is already taken.
	ErrRoomExists = errors.New("room code already in use")
	// ErrNotHost is returned when a non-host identity calls a host operation.
	ErrNotHost = errors.New("only the host may do that")
	// ErrPlayerNotFound is returned when a user tries to act before joining.
	ErrPlayerNotFound = errors.New("player not found in room")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCategoryNotFound indicates the question bank has nothing for a category.
	ErrCategoryNotFound = errors.New("question category not found")
	// ErrInvalidQuestion is returned when a question fails validation at authoring time.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidTransition is returned when a phase change is not reachable from the current phase.
	ErrInvalidTransition = errors.New("invalid phase transition")
	// ErrRoomNotWaiting is returned when the question set is edited after the game started.
	ErrRoomNotWaiting = errors.New("room is not in the waiting state")
	// ErrRoomNotJoinable is returned when a new player tries to join a room that already started.
	ErrRoomNotJoinable = errors.New("room is no longer accepting new players")
	// ErrNoPlayers guards StartGame.
	ErrNoPlayers = errors.New("at least one player is required to start")
	// ErrNoQuestions guards StartGame.
	ErrNoQuestions = errors.New("at least one question is required to start")
	// ErrNotAcceptingAnswers is returned outside the question phase.
	ErrNotAcceptingAnswers = errors.New("room is not accepting answers")
	// ErrQuestionNotActive is returned when an answer targets a question other than the current one.
	ErrQuestionNotActive = errors.New("question is not the active question")
	// ErrChoiceOutOfRange is returned when the selected choice does not exist.
	ErrChoiceOutOfRange = errors.New("choice out of range")
	// ErrAlreadyAnswered is returned on a second answer to the same question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrGameNotFinished is returned when final results are requested too early.
	ErrGameNotFinished = errors.New("game has not finished")
	// ErrConfirmationRequired guards DeleteRoom.
	ErrConfirmationRequired = errors.New("room deletion must be confirmed")
	// ErrInvalidName is returned for empty or overlong display names.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidEntry is returned for malformed leaderboard submissions.
	ErrInvalidEntry = errors.New("invalid leaderboard entry")
	// ErrInvalidRoomConfig is returned for an unknown room mode.
	ErrInvalidRoomConfig = errors.New("invalid room config")
	// ErrMissingIdentity is returned when a caller has no user id.
	ErrMissingIdentity = errors.New("missing user identity")
)
