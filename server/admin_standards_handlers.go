package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-lms-portal/internal/errors"
	"github.com/jrsteele09/go-lms-portal/standards"
)

type standardsPage struct {
	Query     string
	Standards []standards.Standard
}

type standardSubjectsPage struct {
	Query    string
	Standard standards.Standard
	Subjects []standards.Subject
}

type subjectsPage struct {
	Query string
	Rows  []standards.SubjectRow
}

// AdminStandardsHandler lists standards, optionally filtered by ?q=
func (s *Server) AdminStandardsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin_standards.html")
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		data := s.newPageData(r, "Standards")
		data.Content = standardsPage{Query: query, Standards: s.standards.List(query)}
		render(w, http.StatusOK, tmpl, data)
	}
}

// AdminStandardSaveHandler creates a standard, or updates the one named by {id}
func (s *Server) AdminStandardSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		in := standards.StandardInput{Name: r.FormValue("name"), Description: r.FormValue("description")}

		var err error
		msg := "Standard created"
		if r.PathValue("id") == "" {
			_, err = s.standards.Create(in)
		} else {
			var id int
			if id, err = pathID(r, "id"); err == nil {
				_, err = s.standards.Update(id, in)
			}
			msg = "Standard updated"
		}
		if err != nil {
			redirectWithError(w, r, RouteAdminStandards, standardsErrorMessage(err))
			return
		}
		redirectWithMessage(w, r, RouteAdminStandards, msg)
	}
}

// AdminStandardDeleteHandler removes the standard named by {id} together with its subjects
func (s *Server) AdminStandardDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err == nil {
			err = s.standards.Delete(id)
		}
		if err != nil {
			redirectWithError(w, r, RouteAdminStandards, standardsErrorMessage(err))
			return
		}
		redirectWithMessage(w, r, RouteAdminStandards, "Standard deleted")
	}
}

// AdminStandardSubjectsHandler shows the subjects of the standard named by {id}
func (s *Server) AdminStandardSubjectsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin_standard.html")
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		id, err := pathID(r, "id")
		var st standards.Standard
		if err == nil {
			st, err = s.standards.Get(id)
		}
		if err != nil {
			redirectWithError(w, r, RouteAdminStandards, standardsErrorMessage(err))
			return
		}
		subjects, err := s.standards.Subjects(id, query)
		if err != nil {
			redirectWithError(w, r, RouteAdminStandards, standardsErrorMessage(err))
			return
		}

		data := s.newPageData(r, "Standard "+st.Name)
		data.Active = RouteAdminStandards
		data.Content = standardSubjectsPage{Query: query, Standard: st, Subjects: subjects}
		render(w, http.StatusOK, tmpl, data)
	}
}

// AdminSubjectSaveHandler adds a subject to standard {id}, or renames subject {subject}
func (s *Server) AdminSubjectSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		id, err := pathID(r, "id")
		if err != nil {
			redirectWithError(w, r, RouteAdminStandards, standardsErrorMessage(err))
			return
		}
		back := standardPath(id)
		in := standards.SubjectInput{Name: r.FormValue("name")}

		msg := "Subject created"
		if r.PathValue("subject") == "" {
			_, err = s.standards.AddSubject(id, in)
		} else {
			var subjectID int
			if subjectID, err = pathID(r, "subject"); err == nil {
				_, err = s.standards.UpdateSubject(id, subjectID, in)
			}
			msg = "Subject updated"
		}
		if err != nil {
			redirectWithError(w, r, back, standardsErrorMessage(err))
			return
		}
		redirectWithMessage(w, r, back, msg)
	}
}

func (s *Server) AdminSubjectDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			redirectWithError(w, r, RouteAdminStandards, standardsErrorMessage(err))
			return
		}
		subjectID, err := pathID(r, "subject")
		if err == nil {
			err = s.standards.DeleteSubject(id, subjectID)
		}
		if err != nil {
			redirectWithError(w, r, standardPath(id), standardsErrorMessage(err))
			return
		}
		redirectWithMessage(w, r, standardPath(id), "Subject deleted")
	}
}

// AdminSubjectsHandler lists the subjects of every standard, optionally filtered by ?q=
func (s *Server) AdminSubjectsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin_subjects.html")
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		data := s.newPageData(r, "Subjects")
		data.Content = subjectsPage{Query: query, Rows: s.standards.AllSubjects(query)}
		render(w, http.StatusOK, tmpl, data)
	}
}

func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, errors.Wrapf(errors.ErrNotFound, "[server] invalid %s %q", name, r.PathValue(name))
	}
	return id, nil
}

func standardPath(id int) string {
	return fmt.Sprintf("%s/%d", RouteAdminStandards, id)
}

func standardsErrorMessage(err error) string {
	if ve, ok := errors.IsValidation(err); ok {
		return ve.Msg
	}
	switch {
	case errors.Is(err, errors.ErrSubjectNotFound):
		return "Subject not found"
	case errors.Is(err, errors.ErrNotFound):
		return "Standard not found"
	default:
		return msgSomethingWrong
	}
}
