package models

import "fmt"

// User is an account as seen by the admin console.
type User struct {
	ID           int64         `json:"id"`
	CNPJ         string        `json:"cnpj"`
	Name         string        `json:"name"`
	Email        string        `json:"email,omitempty"`
	UF           string        `json:"uf,omitempty"`
	IsAdmin      bool          `json:"is_admin"`
	AccessLevels []AccessLevel `json:"access_levels"`
}

// Label is the human readable form used in selection lists.
func (u User) Label() string {
	return fmt.Sprintf("%s (%s)", u.Name, u.CNPJ)
}

// AccessLevelIDs returns the ids of the user's access levels as a set.
func (u User) AccessLevelIDs() IDSet {
	var s IDSet
	for _, al := range u.AccessLevels {
		s.Add(al.ID)
	}
	return s
}

// UserDraft is the pending state of the "create user" form.
type UserDraft struct {
	CNPJ           string `json:"cnpj"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	UF             string `json:"uf,omitempty"`
	Password       string `json:"password"`
	IsAdmin        bool   `json:"is_admin"`
	AccessLevelIDs IDSet  `json:"access_level_ids"`
}

// AccessUpdate is the body of PUT /admin/users/{id}/access-levels.
type AccessUpdate struct {
	AccessLevelIDs IDSet `json:"access_level_ids"`
}
