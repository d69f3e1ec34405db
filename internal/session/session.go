// Package session holds the tab-lifetime state of the running UI: who is
// signed in and which recipe, if any, is open for editing. Nothing here is
// persisted; a restart always begins signed out.
package session

import "github.com/plateup-labs/plateup/internal/users"

// Session is created once at application start and owned by the UI loop.
type Session struct {
	currentUser  *users.User
	editTargetID string
}

// New returns a signed-out session.
func New() *Session {
	return &Session{}
}

// Login records the signed-in user.
func (s *Session) Login(user users.User) {
	s.currentUser = &user
}

// Logout clears the signed-in user and any in-progress edit.
func (s *Session) Logout() {
	s.currentUser = nil
	s.editTargetID = ""
}

// CurrentUser returns the signed-in user, if any.
func (s *Session) CurrentUser() (users.User, bool) {
	if s.currentUser == nil {
		return users.User{}, false
	}
	return *s.currentUser, true
}

// BeginEdit marks the recipe id the form is editing.
func (s *Session) BeginEdit(recipeID string) {
	s.editTargetID = recipeID
}

// EndEdit clears the edit target when the form closes.
func (s *Session) EndEdit() {
	s.editTargetID = ""
}

// EditTarget returns the recipe id being edited, if any.
func (s *Session) EditTarget() (string, bool) {
	if s.editTargetID == "" {
		return "", false
	}
	return s.editTargetID, true
}
