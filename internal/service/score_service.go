package service

import (
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/repository"
	"assessment_results_backend/internal/scoring"
	"assessment_results_backend/internal/util"
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ScoreService computes DOAR scores for staged and main records on demand.
type ScoreService struct {
	Assessments *repository.AssessmentRepository
	Staged      *repository.StagedStudentRepository
	Students    *repository.StudentRepository
}

func NewScoreService(assessments *repository.AssessmentRepository, staged *repository.StagedStudentRepository, students *repository.StudentRepository) *ScoreService {
	return &ScoreService{Assessments: assessments, Staged: staged, Students: students}
}

type StudentScore struct {
	RecordID       string                `json:"recordId"`
	AssessmentID   string                `json:"assessmentId"`
	AssessmentType string                `json:"assessmentTypeCode"`
	Result         scoring.Result        `json:"result"`
	Percent        string                `json:"percent"`
	Sections       scoring.SectionScores `json:"sections"`
}

type SectionReport struct {
	AssessmentID   string                   `json:"assessmentId"`
	AssessmentType string                   `json:"assessmentTypeCode"`
	Scope          scoring.ReportScope      `json:"scope"`
	Rounding       string                   `json:"rounding"`
	CohortSize     int                      `json:"cohortSize"`
	AveragePercent decimal.Decimal          `json:"averagePercent"`
	Sections       []scoring.SectionAverage `json:"sections"`
}

func (s *ScoreService) ScoreStagedStudent(ctx context.Context, id string) (*StudentScore, error) {
	staged, err := s.Staged.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.score(ctx, staged.ID, staged.StudentResult, stagedComponentAnswers(staged.Components), newFormCache(s.Assessments))
}

func (s *ScoreService) ScoreStudent(ctx context.Context, id string) (*StudentScore, error) {
	student, err := s.Students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.score(ctx, student.ID, student.StudentResult, mainComponentAnswers(student.Components), newFormCache(s.Assessments))
}

func (s *ScoreService) History(ctx context.Context, id string) ([]model.AssessmentStudentHistory, error) {
	if _, err := s.Students.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.Students.FindHistory(ctx, id)
}

// SectionReport averages section scores across an assessment's cohort. The
// STAGING scope reads staged rows; every other scope reads main rows.
func (s *ScoreService) SectionReport(ctx context.Context, assessmentID string, scope scoring.ReportScope, schoolID string) (*SectionReport, error) {
	policy, err := scoring.PolicyFor(scope)
	if err != nil {
		return nil, err
	}
	// Students carry a school of record only, so there is nothing to group a
	// district by.
	if scope == scoring.ScopeDistrict {
		return nil, fmt.Errorf("%w: %s", util.ErrUnsupportedReportScope, scope)
	}
	assessment, err := s.Assessments.FindAssessmentByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	type row struct {
		id    string
		res   model.StudentResult
		comps []componentAnswers
	}
	var rows []row
	if scope == scoring.ScopeStaging {
		staged, err := s.Staged.ListByAssessment(ctx, assessmentID)
		if err != nil {
			return nil, err
		}
		for _, st := range staged {
			rows = append(rows, row{st.ID, st.StudentResult, stagedComponentAnswers(st.Components)})
		}
	} else {
		if scope == scoring.ScopeProvince || scope == scoring.ScopePublic {
			schoolID = ""
		}
		students, err := s.Students.ListByAssessment(ctx, assessmentID, schoolID)
		if err != nil {
			return nil, err
		}
		for _, st := range students {
			rows = append(rows, row{st.ID, st.StudentResult, mainComponentAnswers(st.Components)})
		}
	}

	forms := newFormCache(s.Assessments)
	sections := make([]scoring.SectionScores, 0, len(rows))
	percents := make([]decimal.Decimal, 0, len(rows))
	for _, r := range rows {
		sc, err := s.score(ctx, r.id, r.res, r.comps, forms)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sc.Sections)
		percents = append(percents, sc.Result.Percent)
	}

	return &SectionReport{
		AssessmentID:   assessmentID,
		AssessmentType: assessment.AssessmentTypeCode,
		Scope:          scope,
		Rounding:       policy.String(),
		CohortSize:     len(rows),
		AveragePercent: scoring.Average(percents, policy),
		Sections:       scoring.CohortAverage(sections, policy),
	}, nil
}

func (s *ScoreService) score(ctx context.Context, recordID string, res model.StudentResult, comps []componentAnswers, forms *formCache) (*StudentScore, error) {
	if res.AssessmentFormID == nil {
		return nil, fmt.Errorf("%w: record %s has no form", util.ErrFormNotFound, recordID)
	}
	assessment, err := forms.assessment(ctx, res.AssessmentID)
	if err != nil {
		return nil, err
	}
	build, err := scoring.BuilderFor(scoring.AssessmentTypeCode(assessment.AssessmentTypeCode))
	if err != nil {
		return nil, err
	}
	form, err := forms.form(ctx, *res.AssessmentFormID)
	if err != nil {
		return nil, err
	}

	student, mc, oe := scoringInput(form, comps)
	result := scoring.Calculate(student, oe, mc)
	return &StudentScore{
		RecordID:       recordID,
		AssessmentID:   res.AssessmentID,
		AssessmentType: assessment.AssessmentTypeCode,
		Result:         result,
		Percent:        result.Percent.StringFixed(2),
		Sections:       build(student, mc, oe),
	}, nil
}

// formCache memoises catalog reads for one request.
type formCache struct {
	repo        *repository.AssessmentRepository
	forms       map[string]*model.AssessmentForm
	assessments map[string]*model.Assessment
}

func newFormCache(repo *repository.AssessmentRepository) *formCache {
	return &formCache{
		repo:        repo,
		forms:       map[string]*model.AssessmentForm{},
		assessments: map[string]*model.Assessment{},
	}
}

func (c *formCache) form(ctx context.Context, id string) (*model.AssessmentForm, error) {
	if f, ok := c.forms[id]; ok {
		return f, nil
	}
	f, err := c.repo.FindFormWithComponents(ctx, id)
	if err != nil {
		return nil, err
	}
	c.forms[id] = f
	return f, nil
}

func (c *formCache) assessment(ctx context.Context, id string) (*model.Assessment, error) {
	if a, ok := c.assessments[id]; ok {
		return a, nil
	}
	a, err := c.repo.FindAssessmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.assessments[id] = a
	return a, nil
}
