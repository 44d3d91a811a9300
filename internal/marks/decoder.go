// Package marks decodes fixed-width marking strings into per-question answers.
//
// A mark string is a run of 4-character decimal chunks, one per question slot
// in (questionNumber, itemNumber) order. Open-ended streams may also carry
// choice markers: a chunk sitting in a slot with no question names the
// question the student chose, and the chunks after it hold that question's
// item scores.
package marks

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/pkg/logger"
	"assessment_results_backend/pkg/monitoring"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const ChunkWidth = 4

type Answer struct {
	AssessmentQuestionID string
	QuestionNumber       int
	ItemNumber           int
	Score                decimal.Decimal
}

type Choice struct {
	// AssessmentChoiceID is empty when the slot has no catalog entry.
	AssessmentChoiceID   string
	SlotNumber           int
	ChosenQuestionNumber int
}

type Result struct {
	Answers []Answer
	Choices []Choice
}

type questionKey struct {
	questionNumber int
	itemNumber     int
}

// Chunks splits marks into ChunkWidth pieces. A short trailing piece is kept.
func Chunks(marks string) []string {
	if marks == "" {
		return nil
	}
	out := make([]string, 0, (len(marks)+ChunkWidth-1)/ChunkWidth)
	for start := 0; start < len(marks); start += ChunkWidth {
		end := start + ChunkWidth
		if end > len(marks) {
			end = len(marks)
		}
		out = append(out, marks[start:end])
	}
	return out
}

// SortQuestions returns a copy ordered by question number then item number.
func SortQuestions(questions []model.AssessmentQuestion) []model.AssessmentQuestion {
	sorted := make([]model.AssessmentQuestion, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].QuestionNumber != sorted[j].QuestionNumber {
			return sorted[i].QuestionNumber < sorted[j].QuestionNumber
		}
		return sorted[i].ItemNumber < sorted[j].ItemNumber
	})
	return sorted
}

// FilterChoicePath drops questions that belong to the branch the student did
// not take. An empty or unknown path keeps every question.
func FilterChoicePath(questions []model.AssessmentQuestion, choicePath string) []model.AssessmentQuestion {
	other := model.OtherChoicePath(choicePath)
	if other == "" {
		return questions
	}
	kept := make([]model.AssessmentQuestion, 0, len(questions))
	for _, q := range questions {
		if q.TaskCode == other {
			continue
		}
		kept = append(kept, q)
	}
	return kept
}

// DecodeMC assigns chunks to multiple-choice questions one for one.
func DecodeMC(marks string, questions []model.AssessmentQuestion, choicePath string) Result {
	qs := SortQuestions(FilterChoicePath(questions, choicePath))
	chunks := Chunks(marks)

	var res Result
	for i, chunk := range chunks {
		if i >= len(qs) {
			logger.Log.Warn("mark string longer than question list",
				zap.String("component", string(model.ComponentTypeMC)),
				zap.Int("chunks", len(chunks)),
				zap.Int("questions", len(qs)))
			break
		}
		res.Answers = append(res.Answers, newAnswer(qs[i], chunk, model.ComponentTypeMC))
	}
	return res
}

// DecodeOE walks the open-ended slots, treating a slot without a question as
// a choice marker. A marker naming a question outside the choice's range
// chooses nothing.
func DecodeOE(marks string, questions []model.AssessmentQuestion, choices []model.AssessmentChoice, choicePath string) Result {
	qs := SortQuestions(FilterChoicePath(questions, choicePath))
	chunks := Chunks(marks)

	lookup := make(map[questionKey]model.AssessmentQuestion, len(qs))
	for _, q := range qs {
		lookup[questionKey{q.QuestionNumber, q.ItemNumber}] = q
	}
	choiceBySlot := make(map[int]model.AssessmentChoice, len(choices))
	for _, c := range choices {
		choiceBySlot[c.MasterQuestionNumber] = c
	}
	slots := slotNumbers(qs, choices)

	var res Result
	ci, si := 0, 0
	item := firstItem(qs, slots, si)
	for ci < len(chunks) && si < len(slots) {
		qn := slots[si]
		if q, ok := lookup[questionKey{qn, item}]; ok {
			res.Answers = append(res.Answers, newAnswer(q, chunks[ci], model.ComponentTypeOE))
			ci++
			if _, next := lookup[questionKey{qn, item + 1}]; next {
				item++
			} else {
				si++
				item = firstItem(qs, slots, si)
			}
			continue
		}

		ac, defined := choiceBySlot[qn]
		chosen := getQuestionNumberFromString(chunks[ci])
		if chosen != 0 && (!defined || chosen < ac.FirstQuestionNumber || chosen > ac.LastQuestionNumber) {
			logger.Log.Warn("choice marker outside choice range, no path chosen",
				zap.Int("slot", qn),
				zap.Int("chosen", chosen))
			monitoring.MarkParseFailures.WithLabelValues(string(model.ComponentTypeOE)).Inc()
			chosen = 0
		}
		ci++
		for _, q := range chosenPath(qs, chosen) {
			if ci >= len(chunks) {
				break
			}
			res.Answers = append(res.Answers, newAnswer(q, chunks[ci], model.ComponentTypeOE))
			ci++
		}

		choice := Choice{SlotNumber: qn, ChosenQuestionNumber: chosen}
		resumeAfter := qn
		if defined {
			choice.AssessmentChoiceID = ac.ID
			if ac.LastQuestionNumber > resumeAfter {
				resumeAfter = ac.LastQuestionNumber
			}
		}
		res.Choices = append(res.Choices, choice)

		for si < len(slots) && slots[si] <= resumeAfter {
			si++
		}
		item = firstItem(qs, slots, si)
	}

	if ci < len(chunks) {
		logger.Log.Warn("mark string longer than question list",
			zap.String("component", string(model.ComponentTypeOE)),
			zap.Int("chunks", len(chunks)),
			zap.Int("consumed", ci))
	}
	return res
}

// slotNumbers lists every question number and choice slot in stream order.
func slotNumbers(qs []model.AssessmentQuestion, choices []model.AssessmentChoice) []int {
	seen := make(map[int]bool)
	var slots []int
	for _, q := range qs {
		if !seen[q.QuestionNumber] {
			seen[q.QuestionNumber] = true
			slots = append(slots, q.QuestionNumber)
		}
	}
	for _, c := range choices {
		if !seen[c.MasterQuestionNumber] {
			seen[c.MasterQuestionNumber] = true
			slots = append(slots, c.MasterQuestionNumber)
		}
	}
	sort.Ints(slots)
	return slots
}

// firstItem returns the lowest item number of the slot's question, or 1 for a
// slot that has no question.
func firstItem(qs []model.AssessmentQuestion, slots []int, si int) int {
	if si >= len(slots) {
		return 1
	}
	for _, q := range qs {
		if q.QuestionNumber == slots[si] {
			return q.ItemNumber
		}
	}
	return 1
}

// chosenPath returns the questions belonging to the chosen question number.
func chosenPath(qs []model.AssessmentQuestion, chosen int) []model.AssessmentQuestion {
	if chosen == 0 {
		return nil
	}
	var path []model.AssessmentQuestion
	for _, q := range qs {
		if q.MasterQuestionNumber == chosen || q.QuestionNumber == chosen {
			path = append(path, q)
		}
	}
	return path
}

func newAnswer(q model.AssessmentQuestion, chunk string, component model.ComponentTypeCode) Answer {
	return Answer{
		AssessmentQuestionID: q.ID,
		QuestionNumber:       q.QuestionNumber,
		ItemNumber:           q.ItemNumber,
		Score:                parseScore(chunk, component),
	}
}

// errNotDigits marks a chunk holding anything besides decimal digits, such
// as a sign, exponent or decimal point.
var errNotDigits = errors.New("mark chunk is not all digits")

func digits(chunk string) (string, error) {
	d := strings.TrimSpace(chunk)
	if d == "" {
		return "", errNotDigits
	}
	for i := 0; i < len(d); i++ {
		if d[i] < '0' || d[i] > '9' {
			return "", errNotDigits
		}
	}
	return d, nil
}

func parseScore(chunk string, component model.ComponentTypeCode) decimal.Decimal {
	d, err := digits(chunk)
	var score decimal.Decimal
	if err == nil {
		score, err = decimal.NewFromString(d)
	}
	if err != nil {
		logger.Log.Warn("unparseable mark chunk scored as zero",
			zap.String("component", string(component)),
			zap.String("chunk", chunk),
			zap.Error(err))
		monitoring.MarkParseFailures.WithLabelValues(string(component)).Inc()
		return decimal.Zero
	}
	return score
}

func getQuestionNumberFromString(chunk string) int {
	d, err := digits(chunk)
	var n int
	if err == nil {
		n, err = strconv.Atoi(d)
	}
	if err != nil {
		logger.Log.Warn("unparseable choice marker, no path chosen",
			zap.String("chunk", chunk),
			zap.Error(err))
		monitoring.MarkParseFailures.WithLabelValues(string(model.ComponentTypeOE)).Inc()
		return 0
	}
	return n
}
