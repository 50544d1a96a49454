package server

import "github.com/jrsteele09/go-lms-portal/auth"

// Route path constants
const (
	RouteIndex = "/"

	// Auth
	RouteSignIn         = auth.SignInPath
	RouteRegister       = "/auth/register"
	RouteLogout         = "/auth/logout"
	RouteForgotPassword = "/auth/forgot-password"
	RouteResetPassword  = "/auth/reset-password"

	// Admin
	RouteAdminDashboard     = "/admin/dashboard"
	RouteAdminStudents      = "/admin/students"
	RouteAdminStudent       = "/admin/students/{id}"
	RouteAdminStudentDelete = "/admin/students/{id}/delete"

	RouteAdminStandards             = "/admin/standards"
	RouteAdminStandard              = "/admin/standards/{id}"
	RouteAdminStandardDelete        = "/admin/standards/{id}/delete"
	RouteAdminStandardSubjects      = "/admin/standards/{id}/subjects"
	RouteAdminStandardSubject       = "/admin/standards/{id}/subjects/{subject}"
	RouteAdminStandardSubjectDelete = "/admin/standards/{id}/subjects/{subject}/delete"
	RouteAdminSubjects              = "/admin/subjects"

	// Student
	RouteStudentDashboard = "/student/dashboard"
	RouteStudentCourses   = "/student/courses"
	RouteStudentCheckout  = "/student/courses/checkout"

	// Operational
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// Static assets
	RouteStatic = "/static/{file...}"
)
