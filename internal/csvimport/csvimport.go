// Package csvimport reads host-authored question sheets.
//
// The first row is a header. Recognized columns (case-insensitive):
//
//	text, choice1..choiceN, correct, timeLimit, points, imageUrl
//
// correct is 1-based so it matches the choice column numbers. Trailing
// choice cells may be blank so sheets can mix 2- and 4-choice questions; a
// blank cell followed by a filled one is an error. timeLimit, points and
// imageUrl may be omitted or left blank to use the defaults.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"quiz-kingdom/internal/domain"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// RowError points at the sheet row that failed.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

type layout struct {
	text      int
	choices   []int
	correct   int
	timeLimit int
	points    int
	imageURL  int
}

// Parse reads every question in the sheet. It stops at the first bad row.
func Parse(r io.Reader) ([]domain.Question, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: header row", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var questions []domain.Question
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, &RowError{Row: row, Err: err}
		}
		if blank(record) {
			continue
		}
		q, err := cols.question(record)
		if err != nil {
			return nil, &RowError{Row: row, Err: err}
		}
		q = q.Normalize()
		if err := q.Validate(); err != nil {
			return nil, &RowError{Row: row, Err: err}
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func parseHeader(header []string) (layout, error) {
	l := layout{text: -1, correct: -1, timeLimit: -1, points: -1, imageURL: -1}
	type numbered struct{ n, col int }
	var choices []numbered

	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch {
		case name == "text" || name == "question":
			l.text = i
		case name == "correct" || name == "correctanswer":
			l.correct = i
		case name == "timelimit":
			l.timeLimit = i
		case name == "points":
			l.points = i
		case name == "imageurl":
			l.imageURL = i
		case strings.HasPrefix(name, "choice"):
			n, err := strconv.Atoi(strings.TrimPrefix(name, "choice"))
			if err != nil || n < 1 {
				return l, fmt.Errorf("unknown column %q", h)
			}
			choices = append(choices, numbered{n: n, col: i})
		}
	}

	if l.text < 0 {
		return l, fmt.Errorf("%w: text", ErrMissingColumn)
	}
	if l.correct < 0 {
		return l, fmt.Errorf("%w: correct", ErrMissingColumn)
	}
	if len(choices) < 2 {
		return l, fmt.Errorf("%w: at least choice1 and choice2", ErrMissingColumn)
	}
	sort.Slice(choices, func(i, j int) bool { return choices[i].n < choices[j].n })
	for _, c := range choices {
		l.choices = append(l.choices, c.col)
	}
	return l, nil
}

func (l layout) question(record []string) (domain.Question, error) {
	q := domain.Question{
		Text:     field(record, l.text),
		ImageURL: field(record, l.imageURL),
		Points:   domain.DefaultPoints,
	}
	choices := make([]string, len(l.choices))
	last := -1
	for i, col := range l.choices {
		choices[i] = field(record, col)
		if choices[i] != "" {
			last = i
		}
	}
	for i := 0; i < last; i++ {
		if choices[i] == "" {
			return q, fmt.Errorf("choice%d is blank but later choices are filled", i+1)
		}
	}
	q.Choices = choices[:last+1]

	correct, err := strconv.Atoi(field(record, l.correct))
	if err != nil {
		return q, fmt.Errorf("correct: %w", err)
	}
	q.CorrectAnswer = correct - 1

	if raw := field(record, l.timeLimit); raw != "" {
		if q.TimeLimit, err = strconv.Atoi(raw); err != nil {
			return q, fmt.Errorf("timeLimit: %w", err)
		}
	}
	if raw := field(record, l.points); raw != "" {
		if q.Points, err = strconv.Atoi(raw); err != nil {
			return q, fmt.Errorf("points: %w", err)
		}
	}
	return q, nil
}

func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
