package model

import "time"

// User is a stored club member.
type User struct {
	ID               int64
	FirstName        string
	LastName         string
	Hash             string
	ErauID           *int64
	SignupDate       time.Time
	IsOfficer        bool
	ChessComUsername string
	Email            string
}

// NewUser is the data needed to insert a member. Hash is the credential
// digest, never the plaintext secret.
type NewUser struct {
	FirstName        string
	LastName         string
	Hash             string
	ErauID           *int64
	SignupDate       time.Time
	IsOfficer        bool
	ChessComUsername string
	Email            string
}

// PublicUser is the part of a member visible to other members.
type PublicUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ID        int64  `json:"id"`
}

// Public strips private fields.
func (u User) Public() PublicUser {
	return PublicUser{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ID:        u.ID,
	}
}
