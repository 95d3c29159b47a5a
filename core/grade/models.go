package grade

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

// Subject is the closed set of graded subjects.
type Subject string

const (
	SubjectMathematics     Subject = "Mathematics"
	SubjectScience         Subject = "Science"
	SubjectEnglish         Subject = "English"
	SubjectHistory         Subject = "History"
	SubjectGeography       Subject = "Geography"
	SubjectComputerScience Subject = "Computer Science"
	SubjectPhysics         Subject = "Physics"
	SubjectChemistry       Subject = "Chemistry"
	SubjectBiology         Subject = "Biology"
	SubjectLiterature      Subject = "Literature"
)

var Subjects = []Subject{
	SubjectMathematics,
	SubjectScience,
	SubjectEnglish,
	SubjectHistory,
	SubjectGeography,
	SubjectComputerScience,
	SubjectPhysics,
	SubjectChemistry,
	SubjectBiology,
	SubjectLiterature,
}

func (s Subject) Valid() bool {
	for _, subj := range Subjects {
		if s == subj {
			return true
		}
	}
	return false
}

// Term is the closed set of grading terms, in chronological order within an academic year.
type Term string

const (
	TermFirst Term = "First Term"
	TermMid   Term = "Mid Term"
	TermFinal Term = "Final Term"
)

var Terms = []Term{TermFirst, TermMid, TermFinal}

func (t Term) Valid() bool {
	return t.Rank() > 0
}

// Rank orders terms within an academic year; 0 for unknown terms.
func (t Term) Rank() int {
	for i, term := range Terms {
		if t == term {
			return i + 1
		}
	}
	return 0
}

type Grade struct {
	ID           string    `json:"id" db:"id"`
	StudentID    string    `json:"student_id" db:"student_id"`
	Subject      Subject   `json:"subject" db:"subject"`
	Score        float64   `json:"score" db:"score"`
	Term         Term      `json:"term" db:"term"`
	AcademicYear string    `json:"academic_year" db:"academic_year"`
	Remarks      string    `json:"remarks" db:"remarks"`
	GradedBy     string    `json:"graded_by" db:"graded_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Key is the tuple a student can hold at most one grade for.
type Key struct {
	StudentID    string
	Subject      Subject
	Term         Term
	AcademicYear string
}

func (g Grade) Key() Key {
	return Key{StudentID: g.StudentID, Subject: g.Subject, Term: g.Term, AcademicYear: g.AcademicYear}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.StudentID, k.Subject, k.Term, k.AcademicYear)
}

// NewGrade contains information needed to record a new Grade.
type NewGrade struct {
	StudentID    string   `json:"student_id" validate:"required,notblank"`
	Subject      Subject  `json:"subject" validate:"required,subject"`
	Score        *float64 `json:"score" validate:"required,gte=0,lte=100,score"`
	Term         Term     `json:"term" validate:"required,term"`
	AcademicYear string   `json:"academic_year" validate:"required,academic_year"`
	Remarks      string   `json:"remarks" validate:"max=500"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.Subject = Subject(core.CleanString(string(ng.Subject)))
	ng.Term = Term(core.CleanString(string(ng.Term)))
	ng.AcademicYear = core.CleanString(ng.AcademicYear)
	ng.Remarks = core.CleanString(ng.Remarks)
	return validate.Struct(ng)
}

// UpdateGrade lists the fields a teacher may change. The student is fixed.
type UpdateGrade struct {
	Subject      *Subject `json:"subject" validate:"omitempty,subject"`
	Score        *float64 `json:"score" validate:"omitempty,gte=0,lte=100,score"`
	Term         *Term    `json:"term" validate:"omitempty,term"`
	AcademicYear *string  `json:"academic_year" validate:"omitempty,academic_year"`
	Remarks      *string  `json:"remarks" validate:"omitempty,max=500"`
}

func (ug *UpdateGrade) Validate(validate *validator.Validate) error {
	if ug.Subject != nil {
		*ug.Subject = Subject(core.CleanString(string(*ug.Subject)))
	}
	if ug.Term != nil {
		*ug.Term = Term(core.CleanString(string(*ug.Term)))
	}
	if ug.AcademicYear != nil {
		*ug.AcademicYear = core.CleanString(*ug.AcademicYear)
	}
	if ug.Remarks != nil {
		*ug.Remarks = core.CleanString(*ug.Remarks)
	}
	return validate.Struct(ug)
}

func (ug UpdateGrade) Apply(g *Grade) {
	if ug.Subject != nil {
		g.Subject = *ug.Subject
	}
	if ug.Score != nil {
		g.Score = *ug.Score
	}
	if ug.Term != nil {
		g.Term = *ug.Term
	}
	if ug.AcademicYear != nil {
		g.AcademicYear = *ug.AcademicYear
	}
	if ug.Remarks != nil {
		g.Remarks = *ug.Remarks
	}
}

type QueryFilter struct {
	StudentID    string  `query:"student_id"`
	Subject      Subject `query:"subject"`
	Term         Term    `query:"term"`
	AcademicYear string  `query:"academic_year"`
}
