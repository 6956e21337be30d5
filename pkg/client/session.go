package client

import (
	"context"
	"errors"
	"net/http"
)

var ErrPasswordMismatch = errors.New("Passwords do not match")

type SessionState struct {
	User         *User
	Loading      bool
	CheckingAuth bool
}

type SignupInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// SessionStore mirrors who is logged in. Token refresh happens on the
// server, so the store only tracks the user.
type SessionStore struct {
	*Store[SessionState]
	api    *Client
	notify Notifier
}

func NewSessionStore(api *Client, n Notifier) *SessionStore {
	return &SessionStore{
		Store:  NewStore(SessionState{CheckingAuth: true}),
		api:    api,
		notify: orNop(n),
	}
}

func (s *SessionStore) setLoading(v bool) {
	s.update(func(st SessionState) SessionState {
		st.Loading = v
		return st
	})
}

func (s *SessionStore) setUser(u *User) {
	s.update(func(st SessionState) SessionState {
		st.User = u
		st.Loading = false
		return st
	})
}

// Signup checks the password confirmation before sending anything.
func (s *SessionStore) Signup(ctx context.Context, in SignupInput) error {
	s.setLoading(true)
	if in.Password != in.ConfirmPassword {
		s.notify.Error(ErrPasswordMismatch.Error())
		s.setLoading(false)
		return ErrPasswordMismatch
	}

	var user User
	body := map[string]string{"name": in.Name, "email": in.Email, "password": in.Password}
	if err := s.api.do(ctx, http.MethodPost, "/auth/signup", body, &user); err != nil {
		s.setLoading(false)
		s.notify.Error(messageOf(err, "Signup failed. Please try again."))
		return err
	}
	s.setUser(&user)
	s.notify.Success("Account created successfully!")
	return nil
}

func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	s.setLoading(true)
	var user User
	body := map[string]string{"email": email, "password": password}
	if err := s.api.do(ctx, http.MethodPost, "/auth/login", body, &user); err != nil {
		s.setLoading(false)
		s.notify.Error(messageOf(err, "Login failed. Please try again."))
		return err
	}
	s.setUser(&user)
	s.notify.Success("Login successful!")
	return nil
}

// CheckAuth asks the server who the session belongs to. A failure means
// nobody is logged in and is not reported.
func (s *SessionStore) CheckAuth(ctx context.Context) error {
	s.update(func(st SessionState) SessionState {
		st.CheckingAuth = true
		return st
	})

	var user User
	err := s.api.do(ctx, http.MethodGet, "/auth/profile", nil, &user)
	s.update(func(st SessionState) SessionState {
		st.CheckingAuth = false
		if err != nil {
			st.User = nil
		} else {
			st.User = &user
		}
		return st
	})
	return err
}

func (s *SessionStore) Logout(ctx context.Context) error {
	if err := s.api.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		s.notify.Error(messageOf(err, "Logout failed. Please try again."))
		return err
	}
	s.setUser(nil)
	s.notify.Success("Logged out successfully!")
	return nil
}
