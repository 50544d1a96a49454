package devbackend

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-lms-portal/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// loginUser is the profile with the token pair inlined, as the real backend returns it
type loginUser struct {
	users.Profile
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	raw, ok := bearerToken(r)
	if !ok {
		writeMsg(w, http.StatusUnauthorized, "Missing token")
		return
	}
	p, ok := s.verifyAccess(raw)
	if !ok {
		writeMsg(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": p})
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	raw, ok := bearerToken(r)
	if !ok {
		writeMsg(w, http.StatusUnauthorized, "Missing refresh token")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.refreshTokens[raw]
	if !ok {
		writeMsg(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	p, ok := s.profileByID(userID)
	if !ok || !p.IsActive {
		delete(s.refreshTokens, raw)
		writeMsg(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	access, err := s.signAccessLocked(p)
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeMsg(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	p, ok := s.checkCredentials(req.Email, req.Password)
	if !ok {
		writeMsg(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !p.IsActive {
		writeMsg(w, http.StatusForbidden, "Account is inactive")
		return
	}

	s.mu.Lock()
	a := s.accounts[p.Email]
	a.profile.LastLogin = s.nowTime().UTC()
	profile := a.profile
	pair, err := s.issuePairLocked(&profile)
	s.mu.Unlock()
	if err != nil {
		writeMsg(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": loginUser{Profile: profile, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"msg":  "Login successful",
	})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Password == "" {
		writeMsg(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid email")
		return
	}
	if _, err := s.AddUser(req.FirstName, req.LastName, req.Email, req.Password, users.RoleStudent); err != nil {
		writeMsg(w, http.StatusConflict, "User already exists")
		return
	}
	writeMsg(w, http.StatusCreated, "Registered successfully")
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeMsg(w, http.StatusUnauthorized, "Missing token")
			return
		}
		p, ok := s.verifyAccess(raw)
		if !ok {
			writeMsg(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if p.Role != users.RoleAdmin {
			writeMsg(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	}
}

func (s *Server) listStudentsHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	list := make([]users.Student, 0, len(s.students))
	for _, st := range s.students {
		st.Password = ""
		list = append(list, st)
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].LastName != list[j].LastName {
			return list[i].LastName < list[j].LastName
		}
		return list[i].FirstName < list[j].FirstName
	})
	writeJSON(w, http.StatusOK, map[string]any{"students": list})
}

func (s *Server) saveStudentHandler(w http.ResponseWriter, r *http.Request) {
	var st users.Student
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if st.FirstName == "" || st.LastName == "" || st.Email == "" {
		writeMsg(w, http.StatusBadRequest, "First name, last name and email are required")
		return
	}
	st.Email = strings.ToLower(st.Email)
	st.Password = ""

	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		for _, existing := range s.students {
			if existing.Email == st.Email {
				writeMsg(w, http.StatusConflict, "Student already exists")
				return
			}
		}
		st.ID = uuid.New().String()
		st.IsActive = true
		s.students[st.ID] = st
		writeMsg(w, http.StatusCreated, "Student created")
		return
	}
	if _, ok := s.students[id]; !ok {
		writeMsg(w, http.StatusNotFound, "Student not found")
		return
	}
	st.ID = id
	s.students[id] = st
	writeMsg(w, http.StatusOK, "Student updated")
}

func (s *Server) deleteStudentHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[id]; !ok {
		writeMsg(w, http.StatusNotFound, "Student not found")
		return
	}
	delete(s.students, id)
	writeMsg(w, http.StatusOK, "Student deleted")
}
