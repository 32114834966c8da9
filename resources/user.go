package resources

import (
	"fmt"

	"github.com/storymarket/go-storymarket/core"
)

// User is an embedded value, not an addressable resource: it has no manager
// and cannot be fetched by id.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

var userFields = []string{"username", "first_name", "last_name", "email"}

// newUser builds a User from a relation slot. A bare string is taken as the username.
func newUser(slot any) (*User, error) {
	switch v := slot.(type) {
	case string:
		return &User{Username: v}, nil
	case map[string]any:
		return userFromRecord(core.Record(v))
	case core.Record:
		return userFromRecord(v)
	}
	return nil, fmt.Errorf("user: unexpected value of type %T", slot)
}

func userFromRecord(rec core.Record) (*User, error) {
	for _, field := range userFields {
		if _, ok := rec[field]; !ok {
			return nil, &core.MissingFieldError{Type: "User", Field: field}
		}
	}
	user := &User{}
	if err := rec.Fill(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *User) record() core.Record {
	return core.Record{
		"username":   u.Username,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
	}
}

// Equal reports whether both users have the same username.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.Username == other.Username
}

func (u *User) String() string {
	return fmt.Sprintf("<User: %s>", u.Username)
}
