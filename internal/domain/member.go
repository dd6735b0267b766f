// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxDisplayNameLen = 36

var (
	ErrNameTooLong = errors.New("display name too long")
	ErrNameEmpty   = errors.New("display name empty")
)

// MemberID is assigned by the transport layer and stays stable for the
// life of one connection.
type MemberID string

type Member struct {
	ID   MemberID `json:"id"`
	Name string   `json:"name"`
}

func (m *Member) SetName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return ErrNameTooLong
	}
	m.Name = name
	return nil
}
