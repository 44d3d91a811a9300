package scoring

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/util"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type AssessmentTypeCode string

const (
	LTE10 AssessmentTypeCode = "LTE10"
	LTE12 AssessmentTypeCode = "LTE12"
	LTF12 AssessmentTypeCode = "LTF12"
	LTP10 AssessmentTypeCode = "LTP10"
	LTP12 AssessmentTypeCode = "LTP12"
	NME10 AssessmentTypeCode = "NME10"
	NMF10 AssessmentTypeCode = "NMF10"
)

// AssessmentTypeCodes lists every type the section table must cover.
var AssessmentTypeCodes = []AssessmentTypeCode{LTE10, LTE12, LTF12, LTP10, LTP12, NME10, NMF10}

const (
	SectionTotal         = "total"
	SectionComprehension = "comprehension"
	SectionCommunicate   = "communicate"
	SectionOpenEnded     = "openEnded"
	SectionPlanning      = "planning"
	SectionReasoning     = "reasoning"
	SectionModelling     = "modelling"
	SectionCommunicating = "communicating"
	SectionCognitive7    = "cognitiveLevel7"
	SectionCognitive8    = "cognitiveLevel8"
	SectionCognitive9    = "cognitiveLevel9"
)

type SectionScore struct {
	Achieved decimal.Decimal `json:"achieved"`
	Possible decimal.Decimal `json:"possible"`
}

type SectionScores map[string]SectionScore

// SectionBuilder splits one student's result into report sections.
type SectionBuilder func(student Student, mcQuestions, oeQuestions []model.AssessmentQuestion) SectionScores

var sectionBuilders = map[AssessmentTypeCode]SectionBuilder{
	LTE10: literacySections,
	LTE12: literacySections,
	LTF12: literacySections,
	LTP10: literacySections,
	LTP12: literacySections,
	NME10: numeracySections,
	NMF10: numeracySections,
}

func BuilderFor(code AssessmentTypeCode) (SectionBuilder, error) {
	b, ok := sectionBuilders[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrUnknownAssessmentType, code)
	}
	return b, nil
}

var numeracyClaims = map[string]string{
	"P": SectionPlanning,
	"R": SectionReasoning,
	"F": SectionModelling,
	"M": SectionCommunicating,
}

var cognitiveLevels = map[string]string{
	"7": SectionCognitive7,
	"8": SectionCognitive8,
	"9": SectionCognitive9,
}

func numeracySections(student Student, mc, oe []model.AssessmentQuestion) SectionScores {
	out := commonSections(student, mc, oe)
	for claim, section := range numeracyClaims {
		achieved, possible := CalculateMCTotal(student, filter(mc, func(q model.AssessmentQuestion) bool { return q.ClaimCode == claim }))
		out[section] = SectionScore{Achieved: achieved, Possible: possible}
	}
	r := Calculate(student, oe, nil)
	out[SectionOpenEnded] = SectionScore{Achieved: r.StudentOE, Possible: r.PossibleOE}
	return out
}

func literacySections(student Student, mc, oe []model.AssessmentQuestion) SectionScores {
	out := commonSections(student, mc, oe)
	achieved, possible := CalculateMCTotal(student, mc)
	out[SectionComprehension] = SectionScore{Achieved: achieved, Possible: possible}
	r := Calculate(student, oe, nil)
	out[SectionCommunicate] = SectionScore{Achieved: r.StudentOE, Possible: r.PossibleOE}
	return out
}

func commonSections(student Student, mc, oe []model.AssessmentQuestion) SectionScores {
	out := SectionScores{}
	r := Calculate(student, oe, mc)
	out[SectionTotal] = SectionScore{Achieved: r.Achieved(), Possible: r.Possible()}
	for level, section := range cognitiveLevels {
		achieved, possible := CalculateMCTotal(student, filter(mc, func(q model.AssessmentQuestion) bool { return q.CognitiveLevelCode == level }))
		out[section] = SectionScore{Achieved: achieved, Possible: possible}
	}
	return out
}

func filter(qs []model.AssessmentQuestion, keep func(model.AssessmentQuestion) bool) []model.AssessmentQuestion {
	var out []model.AssessmentQuestion
	for _, q := range qs {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

type SectionAverage struct {
	Section  string          `json:"section"`
	Achieved decimal.Decimal `json:"achieved"`
	Possible decimal.Decimal `json:"possible"`
}

// CohortAverage averages each section across the cohort under policy. Rows
// missing a section count as zero for it.
func CohortAverage(rows []SectionScores, policy RoundingPolicy) []SectionAverage {
	sums := map[string]*SectionScore{}
	for _, row := range rows {
		for name, s := range row {
			acc, ok := sums[name]
			if !ok {
				acc = &SectionScore{Achieved: decimal.Zero, Possible: decimal.Zero}
				sums[name] = acc
			}
			acc.Achieved = acc.Achieved.Add(s.Achieved)
			acc.Possible = acc.Possible.Add(s.Possible)
		}
	}

	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]SectionAverage, 0, len(names))
	for _, name := range names {
		acc := sums[name]
		out = append(out, SectionAverage{
			Section:  name,
			Achieved: policy.Divide(acc.Achieved, len(rows), reportPlaces),
			Possible: policy.Divide(acc.Possible, len(rows), reportPlaces),
		})
	}
	return out
}
