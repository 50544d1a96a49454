package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const contentTypeHTML = "text/html; charset=utf-8"

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"pkr": func(amount int) string {
		return "RS. " + strconv.Itoa(amount)
	},
}

// ParseTemplate parses a page template together with the shared layout
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), "layout.html", name)
}

// mustParseTemplate is for handler constructors; the templates are embedded so a failure is a build defect
func mustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return tmpl
}

// PageData is the model every page is rendered with
type PageData struct {
	AppName string
	Title   string
	User    *users.Profile
	Sidebar []SidebarItem
	Active  string
	Error   string
	Message string
	Content any
}

func (s *Server) newPageData(r *http.Request, title string) PageData {
	sess := sessionFrom(r)
	data := PageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		User:    sess.User,
		Active:  r.URL.Path,
		Error:   r.URL.Query().Get("error"),
		Message: r.URL.Query().Get("msg"),
	}
	if sess.User != nil {
		data.Sidebar = SidebarFor(sess.User.Role)
	}
	return data
}

// render executes tmpl into a buffer first so a template error never leaves a half-written page
func render(w http.ResponseWriter, status int, tmpl *template.Template, data PageData) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
