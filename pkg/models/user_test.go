package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestIgnoresClientSuppliedRole(t *testing.T) {
	payload := []byte(`{
		"first_name": "Jo",
		"last_name":  "Doe",
		"email":      "jo@example.com",
		"password":   "s3cret-pass",
		"role":       "admin"
	}`)

	var req RegisterRequest
	assert.NoError(t, json.Unmarshal(payload, &req))

	user := req.ToUser("hashed")
	assert.Equal(t, RoleCustomer, user.Role, "self-registration must never grant admin")
	assert.False(t, user.IsAdmin())
}

func TestRegisterRequestToUser(t *testing.T) {
	req := RegisterRequest{
		FirstName: "Jo",
		LastName:  "Doe",
		Email:     "jo@example.com",
		Password:  "plaintext",
	}

	user := req.ToUser("bcrypt-hash")

	assert.Equal(t, "bcrypt-hash", user.Password, "stored password must be the hash, not the input")
	assert.Equal(t, RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.False(t, user.CreatedAt.IsZero())
}
