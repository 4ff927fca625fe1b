package model

import "time"

// User is an identity record. Email is the business key; two users never
// share one. APITokens is the authoritative ordered membership list of
// API token uids owned by the user.
type User struct {
	UID           string
	Email         string
	Name          string
	Active        bool
	MailTokenHash string
	APITokens     []string
	Created       time.Time
	Updated       time.Time
}

// UserInfo is the safe projection of a User.
type UserInfo struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Created   time.Time `json:"created"`
	Active    bool      `json:"active"`
	APITokens []string  `json:"api_tokens"`
}

func (u *User) SafeInfo() UserInfo {
	tokens := u.APITokens
	if tokens == nil {
		tokens = []string{}
	}
	return UserInfo{
		UID:       u.UID,
		Email:     u.Email,
		Name:      u.Name,
		Created:   u.Created,
		Active:    u.Active,
		APITokens: tokens,
	}
}
