package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Identity is the profile of the signed-in administrator.
type Identity struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Merge returns a copy of i with the fields present in patch overwritten.
// Keys are matched against the JSON names; unknown keys are ignored.
func (i Identity) Merge(patch map[string]any) (Identity, error) {
	if len(patch) == 0 {
		return i, nil
	}

	b, err := json.Marshal(i)
	if err != nil {
		return i, err
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return i, err
	}
	for k, v := range patch {
		fields[k] = v
	}

	b, err = json.Marshal(fields)
	if err != nil {
		return i, err
	}
	var out Identity
	if err := json.Unmarshal(b, &out); err != nil {
		return i, fmt.Errorf("apply identity patch: %w", err)
	}
	return out, nil
}

// Credential is the bearer token together with the identity it belongs to.
type Credential struct {
	Token    string
	Identity Identity
}

// LoginResult is the data part of a successful /login response.
type LoginResult struct {
	Token string    `json:"token"`
	Admin *Identity `json:"admin"`
}
