package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an identifier the API may send either as a JSON string or a number.
// It is kept in its textual form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Int64 returns the numeric form of id, if it has one.
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// User is the authenticated-user record returned by the identity service.
// It is a snapshot: consumers replace it wholesale on every refetch.
type User struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Surname  string `json:"surname,omitempty"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
	Verified bool   `json:"verified"`
}

// UnmarshalJSON accepts the verification flag under any of the spellings the
// backend has used.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var aux struct {
		plain
		EmailVerified      *bool `json:"email_verified"`
		EmailVerifiedCamel *bool `json:"emailVerified"`
		IsVerified         *bool `json:"is_verified"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	for _, v := range []*bool{aux.EmailVerified, aux.EmailVerifiedCamel, aux.IsVerified} {
		if v != nil && *v {
			u.Verified = true
		}
	}
	return nil
}

// Clone returns a copy of u (nil-safe).
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// DisplayName joins name and surname.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Surname == "" {
		return u.Name
	}
	return u.Name + " " + u.Surname
}
