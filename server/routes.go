package server

import (
	"github.com/jrsteele09/go-lms-portal/users"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// Sign-in style pages bounce signed-in users to their landing page
	s.RegisterRouteHandler("GET "+RouteSignIn, ChainMiddleware(s.SignInPageHandler(), s.HTMLMiddleWare(s.RedirectIfAuthenticated())...))
	s.RegisterRouteHandler("POST "+RouteSignIn, ChainMiddleware(s.SignInSubmitHandler(), s.HTMLMiddleWare(s.RedirectIfAuthenticated())...))
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.RegisterPageHandler(), s.HTMLMiddleWare(s.RedirectIfAuthenticated())...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterSubmitHandler(), s.HTMLMiddleWare(s.RedirectIfAuthenticated())...))
	s.RegisterRouteHandler("GET "+RouteForgotPassword, ChainMiddleware(s.StaticPageHandler("forgot_password.html", "Forgot password"), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteResetPassword, ChainMiddleware(s.StaticPageHandler("reset_password.html", "Reset password"), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Admin
	admin := s.HTMLMiddleWare(s.RequireRoles(users.RoleAdmin))
	s.RegisterRouteHandler("GET "+RouteAdminDashboard, ChainMiddleware(s.AdminDashboardHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteAdminStudents, ChainMiddleware(s.AdminStudentsHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminStudents, ChainMiddleware(s.AdminStudentSaveHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminStudent, ChainMiddleware(s.AdminStudentSaveHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminStudentDelete, ChainMiddleware(s.AdminStudentDeleteHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteAdminStandards, ChainMiddleware(s.AdminStandardsHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminStandards, ChainMiddleware(s.AdminStandardSaveHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteAdminStandard, ChainMiddleware(s.AdminStandardSubjectsHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminStandard, ChainMiddleware(s.AdminStandardSaveHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminStandardDelete, ChainMiddleware(s.AdminStandardDeleteHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminStandardSubjects, ChainMiddleware(s.AdminSubjectSaveHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminStandardSubject, ChainMiddleware(s.AdminSubjectSaveHandler(), admin...))
	s.RegisterRouteHandler("POST "+RouteAdminStandardSubjectDelete, ChainMiddleware(s.AdminSubjectDeleteHandler(), admin...))
	s.RegisterRouteHandler("GET "+RouteAdminSubjects, ChainMiddleware(s.AdminSubjectsHandler(), admin...))

	// Student
	student := s.HTMLMiddleWare(s.RequireRoles(users.RoleStudent))
	s.RegisterRouteHandler("GET "+RouteStudentDashboard, ChainMiddleware(s.StudentDashboardHandler(), student...))
	s.RegisterRouteHandler("GET "+RouteStudentCourses, ChainMiddleware(s.StudentCoursesHandler(), student...))
	s.RegisterRouteHandler("GET "+RouteStudentCheckout, ChainMiddleware(s.StudentCheckoutHandler(), student...))

	// Operational
	health := ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...)
	metrics := ChainMiddleware(s.metrics.Handler().ServeHTTP, s.APIMiddleware()...)
	for _, method := range []string{"GET ", "OPTIONS "} {
		s.RegisterRouteHandler(method+RouteHealth, health)
		s.RegisterRouteHandler(method+RouteMetrics, metrics)
	}

	s.RegisterRouteHandler("GET "+RouteStatic, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}
