package http

import (
	"net/http"

	"spendlog/internal/core"
	"spendlog/internal/log"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.auth.Signup(r.Context(), p.Get("email"), p.GetRaw("password"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.events.LogAuth(r.Context(), log.OpSignup, session.User.UserID)
	Created(session).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.auth.Login(r.Context(), p.Get("email"), p.GetRaw("password"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.events.LogAuth(r.Context(), log.OpLogin, session.User.UserID)
	OK(session).Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		s.writeError(w, r, core.ErrUnauthorized)
		return
	}
	OK(map[string]core.Identity{"user": id}).Write(w)
}
