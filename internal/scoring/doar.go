// Package scoring implements the DOAR (Detail of Assessment Results)
// percentage model and its report rollups.
//
// All arithmetic is fixed-point. Totals are truncated to four decimals, never
// rounded up. A raw score of 9999 marks an answer as unscored: it counts as
// zero in every sum but still shows the question was attempted.
package scoring

import (
	"assessment_results_backend/internal/marks"
	"assessment_results_backend/internal/model"

	"github.com/shopspring/decimal"
)

const (
	totalPlaces   int32 = 4
	reportPlaces  int32 = 2
	sentinelValue int64 = 9999
)

var (
	hundred  = decimal.NewFromInt(100)
	sentinel = decimal.NewFromInt(sentinelValue)
)

type Answer struct {
	AssessmentQuestionID string
	Score                decimal.Decimal
}

// Choice is a recorded choice resolved against its catalog entry. A choice
// without a catalog entry has an empty range and covers no group.
type Choice struct {
	FirstQuestionNumber  int
	LastQuestionNumber   int
	ChosenQuestionNumber int
}

func (c Choice) covers(questionNumber int) bool {
	return c.FirstQuestionNumber > 0 && questionNumber >= c.FirstQuestionNumber && questionNumber <= c.LastQuestionNumber
}

// Student is one student's decoded responses for a form. OE holds written and
// oral open-ended answers together.
type Student struct {
	MC         []Answer
	OE         []Answer
	Choices    []Choice
	ChoicePath string
}

type Result struct {
	PossibleMC decimal.Decimal `json:"possibleMc"`
	PossibleOE decimal.Decimal `json:"possibleOe"`
	StudentMC  decimal.Decimal `json:"studentMc"`
	StudentOE  decimal.Decimal `json:"studentOe"`
	Percent    decimal.Decimal `json:"percent"`
}

func (r Result) Achieved() decimal.Decimal {
	return r.StudentMC.Add(r.StudentOE)
}

func (r Result) Possible() decimal.Decimal {
	return r.PossibleMC.Add(r.PossibleOE)
}

// Calculate runs the full DOAR computation for one student on one form.
func Calculate(student Student, oeQuestions, mcQuestions []model.AssessmentQuestion) Result {
	mc := onPath(mcQuestions, student.ChoicePath)
	oe := onPath(oeQuestions, student.ChoicePath)

	res := Result{
		PossibleMC: PossibleMCTotal(mc),
		PossibleOE: PossibleOETotal(student, oe),
		StudentMC:  StudentMCTotal(student, mc),
		StudentOE:  StudentOETotal(student, oe),
	}
	res.Percent = Percent(res.Achieved(), res.Possible())
	return res
}

// CalculateTotal returns the DOAR percentage for one student.
func CalculateTotal(student Student, oeQuestions, mcQuestions []model.AssessmentQuestion) decimal.Decimal {
	return Calculate(student, oeQuestions, mcQuestions).Percent
}

// CalculateMCTotal returns the achieved and possible MC totals for a subset of
// questions, typically filtered by claim code.
func CalculateMCTotal(student Student, mcQuestions []model.AssessmentQuestion) (achieved, possible decimal.Decimal) {
	mc := onPath(mcQuestions, student.ChoicePath)
	return StudentMCTotal(student, mc), PossibleMCTotal(mc)
}

// Percent is achieved/possible truncated to four decimals, times 100. A zero
// possible total yields zero.
func Percent(achieved, possible decimal.Decimal) decimal.Decimal {
	if possible.IsZero() {
		return decimal.Zero
	}
	q, _ := achieved.QuoRem(possible, totalPlaces)
	return q.Mul(hundred)
}

func PossibleMCTotal(mcQuestions []model.AssessmentQuestion) decimal.Decimal {
	total := decimal.Zero
	for _, q := range mcQuestions {
		total = total.Add(scaled(q.QuestionValue, q.ScaleFactor))
	}
	return total.Truncate(totalPlaces)
}

// PossibleOETotal counts each master-question group once, using its first
// member's value, unless the student demonstrably took another path.
func PossibleOETotal(student Student, oeQuestions []model.AssessmentQuestion) decimal.Decimal {
	total := decimal.Zero
	for _, group := range groupBy(oeQuestions, func(q model.AssessmentQuestion) int { return q.MasterQuestionNumber }) {
		if len(group) == 0 {
			continue
		}
		if CheckIfStudentAnsweredOEQues(student, group) {
			first := group[0]
			total = total.Add(scaled(first.QuestionValue, first.ScaleFactor))
		}
	}
	return total.Truncate(totalPlaces)
}

// CheckIfStudentAnsweredOEQues reports whether a group counts toward the
// possible total: the student answered one of its questions, made no choice
// covering it, or chose it.
func CheckIfStudentAnsweredOEQues(student Student, group []model.AssessmentQuestion) bool {
	ids := make(map[string]bool, len(group))
	for _, q := range group {
		ids[q.ID] = true
	}
	for _, a := range student.OE {
		if ids[a.AssessmentQuestionID] {
			return true
		}
	}

	covered := false
	for _, c := range student.Choices {
		for _, q := range group {
			if !c.covers(q.QuestionNumber) && !c.covers(q.MasterQuestionNumber) {
				continue
			}
			covered = true
			if c.ChosenQuestionNumber == q.QuestionNumber || c.ChosenQuestionNumber == q.MasterQuestionNumber {
				return true
			}
		}
	}
	return !covered
}

func StudentMCTotal(student Student, mcQuestions []model.AssessmentQuestion) decimal.Decimal {
	total := decimal.Zero
	for _, q := range mcQuestions {
		total = total.Add(SingleMarkerScore(q, student.MC))
	}
	return total.Truncate(totalPlaces)
}

// StudentOETotal groups by question number. Several rows for one question are
// multiple markers and their scores are averaged before scaling.
func StudentOETotal(student Student, oeQuestions []model.AssessmentQuestion) decimal.Decimal {
	total := decimal.Zero
	for _, group := range groupBy(oeQuestions, func(q model.AssessmentQuestion) int { return q.QuestionNumber }) {
		switch len(group) {
		case 0:
			continue
		case 1:
			total = total.Add(SingleMarkerScore(group[0], student.OE))
		default:
			total = total.Add(multiMarkerScore(group, student.OE))
		}
	}
	return total.Truncate(totalPlaces)
}

// SingleMarkerScore is the scaled score of the answer to q, zero when absent
// or unscored.
func SingleMarkerScore(q model.AssessmentQuestion, answers []Answer) decimal.Decimal {
	for _, a := range answers {
		if a.AssessmentQuestionID == q.ID {
			return scaled(rawScore(a), q.ScaleFactor)
		}
	}
	return decimal.Zero
}

func multiMarkerScore(group []model.AssessmentQuestion, answers []Answer) decimal.Decimal {
	ids := make(map[string]bool, len(group))
	for _, q := range group {
		ids[q.ID] = true
	}
	sum := decimal.Zero
	n := int64(0)
	for _, a := range answers {
		if ids[a.AssessmentQuestionID] {
			sum = sum.Add(rawScore(a))
			n++
		}
	}
	if n == 0 {
		return decimal.Zero
	}
	avg, _ := sum.QuoRem(decimal.NewFromInt(n), totalPlaces)
	return scaled(avg, group[0].ScaleFactor)
}

func rawScore(a Answer) decimal.Decimal {
	if a.Score.Equal(sentinel) {
		return decimal.Zero
	}
	return a.Score
}

func scaled(value decimal.Decimal, scaleFactor int) decimal.Decimal {
	return value.Mul(decimal.NewFromInt(int64(scaleFactor))).Div(hundred)
}

func onPath(questions []model.AssessmentQuestion, choicePath string) []model.AssessmentQuestion {
	return marks.SortQuestions(marks.FilterChoicePath(questions, choicePath))
}

type groupKey struct {
	component string
	number    int
}

// groupBy groups within a component and keeps first-seen group order so
// "first member" is stable. Written and oral questions with the same number
// never share a group.
func groupBy(questions []model.AssessmentQuestion, key func(model.AssessmentQuestion) int) [][]model.AssessmentQuestion {
	index := make(map[groupKey]int)
	var groups [][]model.AssessmentQuestion
	for _, q := range questions {
		k := groupKey{q.AssessmentComponentID, key(q)}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], q)
	}
	return groups
}
