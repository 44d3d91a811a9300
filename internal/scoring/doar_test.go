package scoring

import (
	"assessment_results_backend/internal/model"
	"testing"

	"github.com/shopspring/decimal"
)

func q(id string, qn, item, master int, value string, scale int) model.AssessmentQuestion {
	question := model.AssessmentQuestion{
		QuestionNumber:       qn,
		ItemNumber:           item,
		MasterQuestionNumber: master,
		QuestionValue:        decimal.RequireFromString(value),
		ScaleFactor:          scale,
	}
	question.ID = id
	return question
}

func ans(id, score string) Answer {
	return Answer{AssessmentQuestionID: id, Score: decimal.RequireFromString(score)}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s = %s, want %s", name, got.String(), want)
	}
}

func TestPossibleMCTotal(t *testing.T) {
	tests := []struct {
		name string
		qs   []model.AssessmentQuestion
		want string
	}{
		{name: "empty", qs: nil, want: "0"},
		{name: "unit values", qs: []model.AssessmentQuestion{q("a", 1, 1, 1, "1", 100), q("b", 2, 1, 2, "1", 100)}, want: "2"},
		{name: "scaled", qs: []model.AssessmentQuestion{q("a", 1, 1, 1, "2", 50), q("b", 2, 1, 2, "3", 150)}, want: "5.5"},
		{name: "truncated not rounded", qs: []model.AssessmentQuestion{q("a", 1, 1, 1, "0.3333", 50)}, want: "0.1666"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertDecimal(t, "possible", PossibleMCTotal(tc.qs), tc.want)
		})
	}
}

func TestCalculateTotalAllCorrectMC(t *testing.T) {
	mc := []model.AssessmentQuestion{q("m1", 1, 1, 1, "1", 100), q("m2", 2, 1, 2, "1", 100)}
	student := Student{MC: []Answer{ans("m1", "1"), ans("m2", "1")}}

	r := Calculate(student, nil, mc)
	assertDecimal(t, "possibleMC", r.PossibleMC, "2")
	assertDecimal(t, "studentMC", r.StudentMC, "2")
	assertDecimal(t, "percent", r.Percent, "100")
}

func TestSentinelScoresCountAsZero(t *testing.T) {
	mc := []model.AssessmentQuestion{q("m1", 1, 1, 1, "1", 100), q("m2", 2, 1, 2, "1", 100)}
	oe := []model.AssessmentQuestion{q("o1", 1, 1, 1, "4", 100)}
	student := Student{
		MC: []Answer{ans("m1", "9999"), ans("m2", "1")},
		OE: []Answer{ans("o1", "9999")},
	}

	r := Calculate(student, oe, mc)
	assertDecimal(t, "studentMC", r.StudentMC, "1")
	assertDecimal(t, "studentOE", r.StudentOE, "0")
	// the sentinel answer still counts as attempted
	assertDecimal(t, "possibleOE", r.PossibleOE, "4")
}

func TestZeroPossibleYieldsZero(t *testing.T) {
	student := Student{MC: []Answer{ans("x", "3")}}
	assertDecimal(t, "percent", CalculateTotal(student, nil, nil), "0")
	zeroValue := []model.AssessmentQuestion{q("m1", 1, 1, 1, "0", 100)}
	assertDecimal(t, "percent", CalculateTotal(Student{MC: []Answer{ans("m1", "1")}}, nil, zeroValue), "0")
}

func TestPercentTruncates(t *testing.T) {
	assertDecimal(t, "1/3", Percent(decimal.NewFromInt(1), decimal.NewFromInt(3)), "33.33")
	assertDecimal(t, "2/3", Percent(decimal.NewFromInt(2), decimal.NewFromInt(3)), "66.66")
}

func TestOEGroupIncludedWithoutChoice(t *testing.T) {
	oe := []model.AssessmentQuestion{q("o1a", 1, 1, 1, "1", 100), q("o1b", 1, 2, 1, "1", 100)}
	student := Student{OE: []Answer{ans("o1a", "1")}}

	r := Calculate(student, oe, nil)
	assertDecimal(t, "possibleOE", r.PossibleOE, "1")
	assertDecimal(t, "studentOE", r.StudentOE, "1")
	assertDecimal(t, "percent", r.Percent, "100")
}

func TestOEGroupSilentStudentStillIncluded(t *testing.T) {
	oe := []model.AssessmentQuestion{q("o1", 1, 1, 1, "2", 100), q("o2", 2, 1, 2, "3", 100)}
	r := Calculate(Student{}, oe, nil)
	assertDecimal(t, "possibleOE", r.PossibleOE, "5")
	assertDecimal(t, "percent", r.Percent, "0")
}

func TestOEChoiceExcludesOtherPath(t *testing.T) {
	oe := []model.AssessmentQuestion{
		q("o1", 1, 1, 1, "2", 100),
		q("o3", 3, 1, 3, "4", 100),
		q("o4", 4, 1, 4, "6", 100),
	}
	choice := Choice{FirstQuestionNumber: 3, LastQuestionNumber: 4}

	t.Run("answered chosen group", func(t *testing.T) {
		c := choice
		c.ChosenQuestionNumber = 3
		student := Student{OE: []Answer{ans("o1", "2"), ans("o3", "4")}, Choices: []Choice{c}}
		r := Calculate(student, oe, nil)
		assertDecimal(t, "possibleOE", r.PossibleOE, "6")
		assertDecimal(t, "studentOE", r.StudentOE, "6")
		assertDecimal(t, "percent", r.Percent, "100")
	})

	t.Run("chosen group left blank", func(t *testing.T) {
		c := choice
		c.ChosenQuestionNumber = 4
		student := Student{OE: []Answer{ans("o1", "1")}, Choices: []Choice{c}}
		r := Calculate(student, oe, nil)
		assertDecimal(t, "possibleOE", r.PossibleOE, "8")
		assertDecimal(t, "studentOE", r.StudentOE, "1")
	})

	t.Run("choice without catalog entry excludes nothing", func(t *testing.T) {
		student := Student{OE: []Answer{ans("o3", "4")}, Choices: []Choice{{ChosenQuestionNumber: 3}}}
		r := Calculate(student, oe, nil)
		assertDecimal(t, "possibleOE", r.PossibleOE, "12")
	})
}

func TestOEMultiMarkerAverage(t *testing.T) {
	oe := []model.AssessmentQuestion{q("r1", 1, 1, 1, "6", 50), q("r2", 1, 2, 1, "6", 50)}

	tests := []struct {
		name    string
		answers []Answer
		want    string
	}{
		{name: "two markers", answers: []Answer{ans("r1", "4"), ans("r2", "6")}, want: "2.5"},
		{name: "one marker", answers: []Answer{ans("r1", "4")}, want: "2"},
		{name: "sentinel marker", answers: []Answer{ans("r1", "9999"), ans("r2", "4")}, want: "1"},
		{name: "no markers", answers: nil, want: "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertDecimal(t, "studentOE", StudentOETotal(Student{OE: tc.answers}, oe), tc.want)
		})
	}
}

func TestChoicePathExcludesOtherBranch(t *testing.T) {
	mc := []model.AssessmentQuestion{q("m1", 1, 1, 1, "1", 100), q("m2", 2, 1, 2, "1", 100)}
	mc[0].TaskCode = model.ChoicePathIndigenous
	mc[1].TaskCode = model.ChoicePathEnglish
	student := Student{MC: []Answer{ans("m1", "1"), ans("m2", "1")}, ChoicePath: model.ChoicePathEnglish}

	achieved, possible := CalculateMCTotal(student, mc)
	assertDecimal(t, "achieved", achieved, "1")
	assertDecimal(t, "possible", possible, "1")
}

func TestMissingAnswerContributesZero(t *testing.T) {
	mc := []model.AssessmentQuestion{q("m1", 1, 1, 1, "1", 100)}
	assertDecimal(t, "single", SingleMarkerScore(mc[0], []Answer{ans("other", "1")}), "0")
}
