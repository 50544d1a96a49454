package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-lms-portal/internal/errors"
	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type adminDashboard struct {
	StudentCount int
	ActiveCount  int
	Unavailable  bool
}

type studentsPage struct {
	Query    string
	Students []users.Student
}

// AdminDashboardHandler renders the admin dashboard
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin_dashboard.html")
	return func(w http.ResponseWriter, r *http.Request) {
		var stats adminDashboard
		students, err := s.listStudents(r)
		switch {
		case errors.Is(err, errors.ErrUnauthorized):
			s.signOut(w, r)
			return
		case err != nil:
			log.Err(err).Msg("Failed to load students for dashboard")
			stats.Unavailable = true
		default:
			stats.StudentCount = len(students)
			for _, st := range students {
				if st.IsActive {
					stats.ActiveCount++
				}
			}
		}

		data := s.newPageData(r, "Dashboard")
		data.Content = stats
		render(w, http.StatusOK, tmpl, data)
	}
}

// AdminStudentsHandler lists students, optionally filtered by ?q=
func (s *Server) AdminStudentsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("admin_students.html")
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		page := studentsPage{Query: query, Students: []users.Student{}}

		data := s.newPageData(r, "Students")
		students, err := s.listStudents(r)
		if err != nil {
			if errors.Is(err, errors.ErrUnauthorized) {
				s.signOut(w, r)
				return
			}
			_, data.Error = formError(err, msgSomethingWrong)
		}
		for _, st := range students {
			if st.Matches(query) {
				page.Students = append(page.Students, st)
			}
		}

		data.Content = page
		render(w, http.StatusOK, tmpl, data)
	}
}

// AdminStudentSaveHandler creates a student, or updates the one named by {id}
func (s *Server) AdminStudentSaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		student := users.Student{
			ID:                r.PathValue("id"),
			FirstName:         strings.TrimSpace(r.FormValue("firstName")),
			LastName:          strings.TrimSpace(r.FormValue("lastName")),
			Email:             strings.TrimSpace(r.FormValue("email")),
			Password:          r.FormValue("password"),
			PhoneNumber:       strings.TrimSpace(r.FormValue("phoneNumber")),
			ParentPhoneNumber: strings.TrimSpace(r.FormValue("parentPhoneNumber")),
			Fees:              strings.TrimSpace(r.FormValue("fees")),
			IsActive:          r.FormValue("isActive") == "on" || r.FormValue("isActive") == "true",
		}

		var msg string
		err := s.auth.CallWithToken(r.Context(), browserKey(r), func(ts oauth2.TokenSource) error {
			var err error
			msg, err = s.students.SaveStudent(r.Context(), ts, student)
			return err
		})
		if err != nil {
			s.studentActionFailed(w, r, err)
			return
		}
		if msg == "" {
			msg = "Student saved"
		}
		redirectWithMessage(w, r, RouteAdminStudents, msg)
	}
}

// AdminStudentDeleteHandler removes the student named by {id}
func (s *Server) AdminStudentDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		err := s.auth.CallWithToken(r.Context(), browserKey(r), func(ts oauth2.TokenSource) error {
			return s.students.DeleteStudent(r.Context(), ts, id)
		})
		if err != nil {
			s.studentActionFailed(w, r, err)
			return
		}
		redirectWithMessage(w, r, RouteAdminStudents, "Student deleted")
	}
}

func (s *Server) listStudents(r *http.Request) ([]users.Student, error) {
	var students []users.Student
	err := s.auth.CallWithToken(r.Context(), browserKey(r), func(ts oauth2.TokenSource) error {
		var err error
		students, err = s.students.ListStudents(r.Context(), ts)
		return err
	})
	return students, err
}

// studentActionFailed shows the failure as a flash on the students page. Rejected credentials go to sign-in.
func (s *Server) studentActionFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errors.ErrUnauthorized) {
		s.signOut(w, r)
		return
	}
	_, msg := formError(err, msgSomethingWrong)
	redirectWithError(w, r, RouteAdminStudents, msg)
}
