package model

import "time"

// ApiToken is a long-lived delegated credential. The raw secret exists
// only transiently at creation; only its hash and display mask persist.
type ApiToken struct {
	UID          string
	UserUID      string
	Name         string
	TokenHash    string
	TokenDisplay string
	Active       bool
	Expires      *time.Time
	Created      time.Time
}

// ApiTokenInfo is the safe projection of an ApiToken: no hash, no raw
// secret, only the display mask.
type ApiTokenInfo struct {
	UID          string     `json:"uid"`
	UserUID      string     `json:"user_uid"`
	Name         string     `json:"name"`
	TokenDisplay string     `json:"token_display"`
	Created      time.Time  `json:"created"`
	Expires      *time.Time `json:"expires"`
	Active       bool       `json:"active"`
}

func (t *ApiToken) SafeInfo() ApiTokenInfo {
	return ApiTokenInfo{
		UID:          t.UID,
		UserUID:      t.UserUID,
		Name:         t.Name,
		TokenDisplay: t.TokenDisplay,
		Created:      t.Created,
		Expires:      t.Expires,
		Active:       t.Active,
	}
}

// Valid reports whether the token can still authenticate at the given
// instant: active and either non-expiring or not yet expired.
func (t *ApiToken) Valid(now time.Time) bool {
	if !t.Active {
		return false
	}
	if t.Expires != nil && !t.Expires.After(now) {
		return false
	}
	return true
}
