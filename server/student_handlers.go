package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-lms-portal/catalog"
	"github.com/jrsteele09/go-lms-portal/internal/errors"
)

type coursesPage struct {
	Query   string
	Courses []catalog.Course
}

func (s *Server) StudentDashboardHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("student_dashboard.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.newPageData(r, "Dashboard")
		data.Content = catalog.All()
		render(w, http.StatusOK, tmpl, data)
	}
}

// StudentCoursesHandler shows the catalog, filtered by ?q= over title, description and level
func (s *Server) StudentCoursesHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("student_courses.html")
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		data := s.newPageData(r, "Course Catalog")
		data.Content = coursesPage{Query: query, Courses: catalog.Search(query)}
		render(w, http.StatusOK, tmpl, data)
	}
}

// StudentCheckoutHandler summarises the selected courses. Selections arrive as ?ids=1,3 or repeated ?course=1&course=3.
func (s *Server) StudentCheckoutHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("student_checkout.html")
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		ids, err := catalog.ParseIDs(append(q["ids"], q["course"]...)...)
		if err == nil {
			var order catalog.Order
			order, err = catalog.Checkout(ids)
			if err == nil {
				data := s.newPageData(r, "Checkout")
				data.Content = order
				render(w, http.StatusOK, tmpl, data)
				return
			}
		}

		msg := "Some selected courses are no longer available"
		if ve, ok := errors.IsValidation(err); ok {
			msg = ve.Msg
		} else if !errors.Is(err, errors.ErrCourseNotFound) {
			msg = msgSomethingWrong
		}
		redirectWithError(w, r, RouteStudentCourses, msg)
	}
}
