package service

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/scoring"
)

// componentAnswers is the storage-independent view of one student component.
type componentAnswers struct {
	AssessmentComponentID string
	ChoicePath            string
	Answers               []scoring.Answer
	Choices               []componentChoice
}

type componentChoice struct {
	AssessmentChoiceID *string
	Chosen             int
}

func stagedComponentAnswers(comps []model.StagedAssessmentStudentComponent) []componentAnswers {
	out := make([]componentAnswers, 0, len(comps))
	for _, c := range comps {
		ca := componentAnswers{AssessmentComponentID: c.AssessmentComponentID, ChoicePath: c.ChoicePath}
		for _, a := range c.Answers {
			ca.Answers = append(ca.Answers, scoring.Answer{AssessmentQuestionID: a.AssessmentQuestionID, Score: a.Score})
		}
		for _, ch := range c.Choices {
			ca.Choices = append(ca.Choices, componentChoice{AssessmentChoiceID: ch.AssessmentChoiceID, Chosen: ch.ChosenQuestionNumber})
		}
		out = append(out, ca)
	}
	return out
}

func mainComponentAnswers(comps []model.AssessmentStudentComponent) []componentAnswers {
	out := make([]componentAnswers, 0, len(comps))
	for _, c := range comps {
		ca := componentAnswers{AssessmentComponentID: c.AssessmentComponentID, ChoicePath: c.ChoicePath}
		for _, a := range c.Answers {
			ca.Answers = append(ca.Answers, scoring.Answer{AssessmentQuestionID: a.AssessmentQuestionID, Score: a.Score})
		}
		for _, ch := range c.Choices {
			ca.Choices = append(ca.Choices, componentChoice{AssessmentChoiceID: ch.AssessmentChoiceID, Chosen: ch.ChosenQuestionNumber})
		}
		out = append(out, ca)
	}
	return out
}

// scoringInput pairs a student's components with the form catalog. Only form
// components the student wrote contribute questions. Oral components count as
// open-ended.
func scoringInput(form *model.AssessmentForm, comps []componentAnswers) (student scoring.Student, mc, oe []model.AssessmentQuestion) {
	byID := make(map[string]*model.AssessmentComponent, len(form.Components))
	choices := make(map[string]model.AssessmentChoice)
	for i := range form.Components {
		fc := &form.Components[i]
		byID[fc.ID] = fc
		for _, ch := range fc.Choices {
			choices[ch.ID] = ch
		}
	}

	for _, c := range comps {
		fc, ok := byID[c.AssessmentComponentID]
		if !ok {
			continue
		}
		if student.ChoicePath == "" {
			student.ChoicePath = c.ChoicePath
		}
		if fc.ComponentTypeCode == model.ComponentTypeMC {
			mc = append(mc, fc.Questions...)
			student.MC = append(student.MC, c.Answers...)
			continue
		}
		oe = append(oe, fc.Questions...)
		student.OE = append(student.OE, c.Answers...)
		for _, ch := range c.Choices {
			sc := scoring.Choice{ChosenQuestionNumber: ch.Chosen}
			if ch.AssessmentChoiceID != nil {
				if ac, ok := choices[*ch.AssessmentChoiceID]; ok {
					sc.FirstQuestionNumber = ac.FirstQuestionNumber
					sc.LastQuestionNumber = ac.LastQuestionNumber
				}
			}
			student.Choices = append(student.Choices, sc)
		}
	}
	return student, mc, oe
}
