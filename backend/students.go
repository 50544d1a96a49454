package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-lms-portal/internal/errors"
	"github.com/jrsteele09/go-lms-portal/users"
	"golang.org/x/oauth2"
)

// Backend student routes
const (
	PathStudentsList   = "/student/get-all"
	PathStudentsCreate = "/student/create"
	PathStudentsDelete = "/student/delete"
)

type studentsResponse struct {
	Students []users.Student `json:"students"`
}

// ListStudents returns all students. ts supplies the caller's access token.
func (c *Client) ListStudents(ctx context.Context, ts oauth2.TokenSource) ([]users.Student, error) {
	var resp studentsResponse
	if err := c.do(ctx, "students_list", http.MethodGet, PathStudentsList, ts, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Students == nil {
		return []users.Student{}, nil
	}
	return resp.Students, nil
}

// SaveStudent creates a student, or updates it when student.ID is set, and returns the backend's message.
func (c *Client) SaveStudent(ctx context.Context, ts oauth2.TokenSource, student users.Student) (string, error) {
	if err := c.validateStruct(student); err != nil {
		return "", err
	}
	path := PathStudentsCreate
	if student.ID == "" {
		if student.Password == "" {
			return "", errors.NewValidationError("password", "password is required")
		}
	} else {
		path += "/" + url.PathEscape(student.ID)
	}

	var resp messageBody
	if err := c.do(ctx, "students_save", http.MethodPost, path, ts, student, &resp); err != nil {
		return "", err
	}
	return resp.text(), nil
}

// DeleteStudent removes a student by id
func (c *Client) DeleteStudent(ctx context.Context, ts oauth2.TokenSource, id string) error {
	if id == "" {
		return errors.NewValidationError("id", "student id is required")
	}
	return c.do(ctx, "students_delete", http.MethodDelete, PathStudentsDelete+"/"+url.PathEscape(id), ts, nil, nil)
}
