package server

import "github.com/jrsteele09/go-lms-portal/users"

// SidebarItem is one navigation entry in the signed-in layout
type SidebarItem struct {
	Title string
	Href  string
	Icon  string
}

var adminSidebarItems = []SidebarItem{
	{Title: "Dashboard", Href: RouteAdminDashboard, Icon: "home"},
	{Title: "Standards", Href: RouteAdminStandards, Icon: "book"},
	{Title: "Subjects", Href: RouteAdminSubjects, Icon: "layers"},
	{Title: "Students", Href: RouteAdminStudents, Icon: "users"},
}

var studentSidebarItems = []SidebarItem{
	{Title: "Dashboard", Href: RouteStudentDashboard, Icon: "home"},
	{Title: "Courses Registration", Href: RouteStudentCourses, Icon: "book"},
}

func SidebarFor(role users.Role) []SidebarItem {
	if role == users.RoleAdmin {
		return adminSidebarItems
	}
	return studentSidebarItems
}
