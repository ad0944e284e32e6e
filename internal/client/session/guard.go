package session

// Authorize is the route guard. It returns dest and true when the current
// session may open it, or the destination to redirect to and false:
// login when nobody is authenticated, change-password while the password is
// temporary.
func (m *Manager) Authorize(dest Destination) (Destination, bool) {
	if dest == DestinationLogin {
		return dest, true
	}
	s, ok := m.Current()
	if !ok {
		return DestinationLogin, false
	}
	if s.PasswordIsTemporary && dest != DestinationChangePassword {
		return DestinationChangePassword, false
	}
	return dest, true
}
