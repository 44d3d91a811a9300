package marks

import (
	"assessment_results_backend/internal/model"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func question(id string, qn, item, master int, task string) model.AssessmentQuestion {
	q := model.AssessmentQuestion{
		QuestionNumber:       qn,
		ItemNumber:           item,
		MasterQuestionNumber: master,
		TaskCode:             task,
		QuestionValue:        decimal.NewFromInt(1),
		ScaleFactor:          100,
	}
	q.ID = id
	return q
}

func scores(answers []Answer) map[string]string {
	out := make(map[string]string, len(answers))
	for _, a := range answers {
		out[a.AssessmentQuestionID] = a.Score.String()
	}
	return out
}

func TestChunks(t *testing.T) {
	tests := []struct {
		name  string
		marks string
		want  []string
	}{
		{name: "empty", marks: "", want: nil},
		{name: "exact", marks: "00010002", want: []string{"0001", "0002"}},
		{name: "short tail", marks: "000100", want: []string{"0001", "00"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Chunks(tc.marks); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Chunks(%q) = %v, want %v", tc.marks, got, tc.want)
			}
		})
	}
}

func TestDecodeMC(t *testing.T) {
	qs := []model.AssessmentQuestion{
		question("q2", 2, 1, 2, ""),
		question("q1", 1, 1, 1, ""),
		question("q3", 3, 1, 3, ""),
	}

	tests := []struct {
		name  string
		marks string
		want  map[string]string
	}{
		{name: "sequential by question number", marks: "000100020003", want: map[string]string{"q1": "1", "q2": "2", "q3": "3"}},
		{name: "fewer chunks than questions", marks: "0001", want: map[string]string{"q1": "1"}},
		{name: "surplus chunks ignored", marks: "0001000200030004", want: map[string]string{"q1": "1", "q2": "2", "q3": "3"}},
		{name: "unparseable chunk is zero", marks: "00x100020003", want: map[string]string{"q1": "0", "q2": "2", "q3": "3"}},
		{name: "sentinel kept as raw score", marks: "999900010001", want: map[string]string{"q1": "9999", "q2": "1", "q3": "1"}},
		{name: "signed chunk is zero", marks: "-001+00100002", want: map[string]string{"q1": "0", "q2": "0", "q3": "2"}},
		{name: "exponent chunk is zero", marks: "01e2 0030004", want: map[string]string{"q1": "0", "q2": "3", "q3": "4"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodeMC(tc.marks, qs, "")
			if !reflect.DeepEqual(scores(got.Answers), tc.want) {
				t.Fatalf("scores = %v, want %v", scores(got.Answers), tc.want)
			}
			if len(got.Choices) != 0 {
				t.Fatalf("MC decode produced choices: %v", got.Choices)
			}
		})
	}
}

func TestDecodeMCChoicePathDropsOtherBranch(t *testing.T) {
	qs := []model.AssessmentQuestion{
		question("q1", 1, 1, 1, "A"),
		question("q2i", 2, 1, 2, model.ChoicePathIndigenous),
		question("q3e", 3, 1, 3, model.ChoicePathEnglish),
		question("q4", 4, 1, 4, "A"),
	}
	got := DecodeMC("000100020003", qs, model.ChoicePathEnglish)
	want := map[string]string{"q1": "1", "q3e": "2", "q4": "3"}
	if !reflect.DeepEqual(scores(got.Answers), want) {
		t.Fatalf("scores = %v, want %v", scores(got.Answers), want)
	}
}

func TestDecodeOEMultiItem(t *testing.T) {
	qs := []model.AssessmentQuestion{
		question("q1a", 1, 1, 1, ""),
		question("q1b", 1, 2, 1, ""),
		question("q2", 2, 1, 2, ""),
	}
	got := DecodeOE("000200030004", qs, nil, "")
	want := map[string]string{"q1a": "2", "q1b": "3", "q2": "4"}
	if !reflect.DeepEqual(scores(got.Answers), want) {
		t.Fatalf("scores = %v, want %v", scores(got.Answers), want)
	}
}

func TestDecodeOEChoiceMarker(t *testing.T) {
	// slot 2 is a choice between question 3 (two items) and question 4.
	qs := []model.AssessmentQuestion{
		question("q1", 1, 1, 1, ""),
		question("q3a", 3, 1, 3, ""),
		question("q3b", 3, 2, 3, ""),
		question("q4", 4, 1, 4, ""),
		question("q5", 5, 1, 5, ""),
	}
	choice := model.AssessmentChoice{MasterQuestionNumber: 2, FirstQuestionNumber: 3, LastQuestionNumber: 4}
	choice.ID = "choice-2"
	choices := []model.AssessmentChoice{choice}

	t.Run("chose multi-item question", func(t *testing.T) {
		got := DecodeOE("00010003000200010004", qs, choices, "")
		want := map[string]string{"q1": "1", "q3a": "2", "q3b": "1", "q5": "4"}
		if !reflect.DeepEqual(scores(got.Answers), want) {
			t.Fatalf("scores = %v, want %v", scores(got.Answers), want)
		}
		wantChoices := []Choice{{AssessmentChoiceID: "choice-2", SlotNumber: 2, ChosenQuestionNumber: 3}}
		if !reflect.DeepEqual(got.Choices, wantChoices) {
			t.Fatalf("choices = %v, want %v", got.Choices, wantChoices)
		}
	})

	t.Run("chose single-item question", func(t *testing.T) {
		got := DecodeOE("0002000400030001", qs, choices, "")
		want := map[string]string{"q1": "2", "q4": "3", "q5": "1"}
		if !reflect.DeepEqual(scores(got.Answers), want) {
			t.Fatalf("scores = %v, want %v", scores(got.Answers), want)
		}
	})

	t.Run("marker outside choice range chooses nothing", func(t *testing.T) {
		got := DecodeOE("0001000500090003", qs, choices, "")
		want := map[string]string{"q1": "1", "q5": "9"}
		if !reflect.DeepEqual(scores(got.Answers), want) {
			t.Fatalf("scores = %v, want %v", scores(got.Answers), want)
		}
		if len(got.Answers) != 2 {
			t.Fatalf("answers = %v, want one per question", got.Answers)
		}
		if len(got.Choices) != 1 || got.Choices[0].ChosenQuestionNumber != 0 {
			t.Fatalf("choices = %v, want one empty choice", got.Choices)
		}
	})

	t.Run("unparseable marker chooses nothing", func(t *testing.T) {
		got := DecodeOE("0001zzzz0003", qs, choices, "")
		want := map[string]string{"q1": "1", "q5": "3"}
		if !reflect.DeepEqual(scores(got.Answers), want) {
			t.Fatalf("scores = %v, want %v", scores(got.Answers), want)
		}
		if len(got.Choices) != 1 || got.Choices[0].ChosenQuestionNumber != 0 {
			t.Fatalf("choices = %v, want one empty choice", got.Choices)
		}
	})
}

func TestDecodeIsDeterministic(t *testing.T) {
	qs := []model.AssessmentQuestion{
		question("q1", 1, 1, 1, ""),
		question("q3", 3, 1, 3, ""),
		question("q4", 4, 1, 4, ""),
	}
	choice := model.AssessmentChoice{MasterQuestionNumber: 2, FirstQuestionNumber: 3, LastQuestionNumber: 4}
	choice.ID = "c"
	first := DecodeOE("000100040002", qs, []model.AssessmentChoice{choice}, "")
	second := DecodeOE("000100040002", qs, []model.AssessmentChoice{choice}, "")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("decode not repeatable: %v vs %v", first, second)
	}
	if qs[0].ID != "q1" || qs[1].ID != "q3" {
		t.Fatalf("input catalog mutated: %v", qs)
	}
}
