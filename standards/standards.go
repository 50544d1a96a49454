// Package standards keeps the classes (standards) the academy teaches and the subjects each one covers.
// The LMS backend has no endpoints for them, so the portal holds them in memory.
package standards

import (
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-lms-portal/internal/errors"
)

type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Standard is a class or curriculum, e.g. "O Levels"
type Standard struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	Subjects    []Subject `json:"subjects"`
}

func (s Standard) SubjectsCount() int {
	return len(s.Subjects)
}

// Matches reports whether term appears in the name, code or description, ignoring case
func (s Standard) Matches(term string) bool {
	return containsFold(term, s.Name, s.Code, s.Description)
}

// SubjectRow is a subject listed together with the standard it belongs to
type SubjectRow struct {
	Standard Standard
	Subject  Subject
}

// StandardInput is what an admin submits when creating or editing a standard
type StandardInput struct {
	Name        string `validate:"required,max=25"`
	Description string `validate:"max=100"`
}

type SubjectInput struct {
	Name string `validate:"required,max=50"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var defaultSubjects = []string{"Mathematics", "Physics", "Chemistry", "Biology"}

func seed() []Standard {
	list := []Standard{
		{ID: 1, Name: "O Levels", Code: "O-LVL", Description: "Ordinary Levels curriculum"},
		{ID: 2, Name: "A Levels", Code: "A-LVL", Description: "Advanced Levels curriculum"},
		{ID: 3, Name: "Grade 8", Code: "GR-08", Description: "Middle school standard"},
		{ID: 4, Name: "Grade 9", Code: "GR-09", Description: "Middle school standard"},
	}
	for i := range list {
		for j, name := range defaultSubjects {
			list[i].Subjects = append(list[i].Subjects, Subject{ID: j + 1, Name: name})
		}
	}
	return list
}

// Registry is a concurrency-safe set of standards
type Registry struct {
	mu        sync.RWMutex
	standards []Standard
	nextID    int
}

// Option defines a function type to modify the Registry instance.
type Option func(*Registry)

// WithStandards replaces the seeded standards
func WithStandards(list ...Standard) Option {
	return func(r *Registry) {
		r.standards = clone(list)
	}
}

// New creates a Registry seeded with the academy's standards
func New(options ...Option) *Registry {
	r := &Registry{standards: seed()}
	for _, opt := range options {
		opt(r)
	}
	for _, st := range r.standards {
		r.nextID = max(r.nextID, st.ID)
	}
	return r
}

// List returns the standards matching query, newest first
func (r *Registry) List(query string) []Standard {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := []Standard{}
	for i := len(r.standards) - 1; i >= 0; i-- {
		if r.standards[i].Matches(query) {
			found = append(found, cloneStandard(r.standards[i]))
		}
	}
	return found
}

func (r *Registry) Get(id int) (Standard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, err := r.indexOf(id)
	if err != nil {
		return Standard{}, err
	}
	return cloneStandard(r.standards[i]), nil
}

func (r *Registry) Create(in StandardInput) (Standard, error) {
	in, err := normalizeStandard(in)
	if err != nil {
		return Standard{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	st := Standard{ID: r.nextID, Name: in.Name, Code: codeFor(in.Name), Description: in.Description, Subjects: []Subject{}}
	r.standards = append(r.standards, st)
	return cloneStandard(st), nil
}

// Update renames or redescribes a standard. Its code and subjects are kept.
func (r *Registry) Update(id int, in StandardInput) (Standard, error) {
	in, err := normalizeStandard(in)
	if err != nil {
		return Standard{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i, err := r.indexOf(id)
	if err != nil {
		return Standard{}, err
	}
	r.standards[i].Name = in.Name
	r.standards[i].Description = in.Description
	return cloneStandard(r.standards[i]), nil
}

func (r *Registry) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, err := r.indexOf(id)
	if err != nil {
		return err
	}
	r.standards = slices.Delete(r.standards, i, i+1)
	return nil
}

// Subjects returns the subjects of standard id matching query
func (r *Registry) Subjects(id int, query string) ([]Subject, error) {
	st, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	found := []Subject{}
	for _, subj := range st.Subjects {
		if containsFold(query, subj.Name) {
			found = append(found, subj)
		}
	}
	return found, nil
}

// AllSubjects lists every subject of every standard whose subject or standard name matches query
func (r *Registry) AllSubjects(query string) []SubjectRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := []SubjectRow{}
	for _, st := range r.standards {
		for _, subj := range st.Subjects {
			if containsFold(query, subj.Name, st.Name) {
				rows = append(rows, SubjectRow{Standard: cloneStandard(st), Subject: subj})
			}
		}
	}
	return rows
}

func (r *Registry) AddSubject(standardID int, in SubjectInput) (Subject, error) {
	in, err := normalizeSubject(in)
	if err != nil {
		return Subject{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i, err := r.indexOf(standardID)
	if err != nil {
		return Subject{}, err
	}
	if slices.ContainsFunc(r.standards[i].Subjects, func(s Subject) bool { return strings.EqualFold(s.Name, in.Name) }) {
		return Subject{}, errors.NewValidationError("name", "Subject already exists")
	}
	next := 0
	for _, subj := range r.standards[i].Subjects {
		next = max(next, subj.ID)
	}
	subj := Subject{ID: next + 1, Name: in.Name}
	r.standards[i].Subjects = append(r.standards[i].Subjects, subj)
	return subj, nil
}

func (r *Registry) UpdateSubject(standardID, subjectID int, in SubjectInput) (Subject, error) {
	in, err := normalizeSubject(in)
	if err != nil {
		return Subject{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i, j, err := r.subjectIndex(standardID, subjectID)
	if err != nil {
		return Subject{}, err
	}
	r.standards[i].Subjects[j].Name = in.Name
	return r.standards[i].Subjects[j], nil
}

func (r *Registry) DeleteSubject(standardID, subjectID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, j, err := r.subjectIndex(standardID, subjectID)
	if err != nil {
		return err
	}
	r.standards[i].Subjects = slices.Delete(r.standards[i].Subjects, j, j+1)
	return nil
}

// indexOf expects r.mu to be held
func (r *Registry) indexOf(id int) (int, error) {
	i := slices.IndexFunc(r.standards, func(st Standard) bool { return st.ID == id })
	if i < 0 {
		return 0, errors.Wrapf(errors.ErrStandardNotFound, "[standards] id %d", id)
	}
	return i, nil
}

func (r *Registry) subjectIndex(standardID, subjectID int) (int, int, error) {
	i, err := r.indexOf(standardID)
	if err != nil {
		return 0, 0, err
	}
	j := slices.IndexFunc(r.standards[i].Subjects, func(s Subject) bool { return s.ID == subjectID })
	if j < 0 {
		return 0, 0, errors.Wrapf(errors.ErrSubjectNotFound, "[standards] standard %d subject %d", standardID, subjectID)
	}
	return i, j, nil
}

func normalizeStandard(in StandardInput) (StandardInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in, validationError(validate.Struct(in))
}

func normalizeSubject(in SubjectInput) (SubjectInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	return in, validationError(validate.Struct(in))
}

// validationError turns the first failed validator rule into a message an admin can act on
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return errors.NewValidationError(field, fe.Field()+" is required")
	case "max":
		return errors.NewValidationError(field, fe.Field()+" must be at most "+fe.Param()+" characters")
	default:
		return errors.NewValidationError(field, fe.Field()+" is invalid")
	}
}

// codeFor derives a short code from a name, e.g. "Grade 10" -> "GRADE-10"
func codeFor(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), "-"))
}

func containsFold(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func cloneStandard(st Standard) Standard {
	st.Subjects = slices.Clone(st.Subjects)
	if st.Subjects == nil {
		st.Subjects = []Subject{}
	}
	return st
}

func clone(list []Standard) []Standard {
	out := make([]Standard, len(list))
	for i, st := range list {
		out[i] = cloneStandard(st)
	}
	return out
}
