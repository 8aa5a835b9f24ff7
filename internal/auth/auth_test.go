package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"example.com/storefront/pkg/models"
)

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")

	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hashed)
	assert.True(t, CheckPassword(hashed, "s3cret-pass"))
	assert.False(t, CheckPassword(hashed, "wrong-pass"))
}

func TestIssueAndParseToken(t *testing.T) {
	svc := NewService("test-secret")
	user := &models.User{
		ID:    bson.NewObjectID(),
		Email: "jo@example.com",
		Role:  models.RoleAdmin,
	}

	token, err := svc.IssueToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "jo@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewService("secret-one")
	verifier := NewService("secret-two")

	token, err := issuer.IssueToken(&models.User{ID: bson.NewObjectID(), Email: "jo@example.com", Role: models.RoleCustomer})
	assert.NoError(t, err)

	claims, err := verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := NewService("test-secret")

	claims, err := svc.ParseToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestNewResetTokenIsUnique(t *testing.T) {
	assert.NotEqual(t, NewResetToken(), NewResetToken())
}
