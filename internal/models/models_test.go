package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	u := &User{Password: hash}
	assert.True(t, u.CheckPassword("s3cret"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestRegisterInputValidate(t *testing.T) {
	valid := RegisterInput{FirstName: "Dana", LastName: "Levi", Email: "dana@example.com", Password: "1234"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"missing first name", RegisterInput{LastName: "Levi", Email: "dana@example.com", Password: "1234"}},
		{"blank last name", RegisterInput{FirstName: "Dana", LastName: "  ", Email: "dana@example.com", Password: "1234"}},
		{"missing email", RegisterInput{FirstName: "Dana", LastName: "Levi", Password: "1234"}},
		{"bad email", RegisterInput{FirstName: "Dana", LastName: "Levi", Email: "not-an-email", Password: "1234"}},
		{"email without tld", RegisterInput{FirstName: "Dana", LastName: "Levi", Email: "dana@example", Password: "1234"}},
		{"short password", RegisterInput{FirstName: "Dana", LastName: "Levi", Email: "dana@example.com", Password: "123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.in.Validate())
		})
	}
}

func TestVacationInputValidate(t *testing.T) {
	now := time.Date(2027, 5, 5, 13, 30, 0, 0, time.UTC)

	base := VacationInput{
		Destination: "Paris",
		Description: "A week away",
		StartDate:   "2027-05-10",
		EndDate:     "2027-05-17",
		Price:       500,
	}
	require.NoError(t, base.Validate(true, now))

	t.Run("price boundaries inclusive", func(t *testing.T) {
		in := base
		in.Price = 10000
		assert.NoError(t, in.Validate(true, now))
		in.Price = 10001
		assert.Error(t, in.Validate(true, now))
		in.Price = -1
		assert.Error(t, in.Validate(true, now))
	})

	t.Run("end before start", func(t *testing.T) {
		in := base
		in.EndDate = "2027-05-09"
		assert.Error(t, in.Validate(true, now))
		assert.Error(t, in.Validate(false, now))
	})

	t.Run("start in the past rejected on create only", func(t *testing.T) {
		in := base
		in.StartDate = "2027-05-01"
		assert.Error(t, in.Validate(true, now))
		assert.NoError(t, in.Validate(false, now))
	})

	t.Run("start today accepted", func(t *testing.T) {
		in := base
		in.StartDate = "2027-05-05"
		assert.NoError(t, in.Validate(true, now))
	})

	t.Run("missing fields", func(t *testing.T) {
		in := base
		in.Destination = ""
		assert.Error(t, in.Validate(true, now))

		in = base
		in.StartDate = ""
		assert.Error(t, in.Validate(true, now))
	})

	t.Run("unparseable dates", func(t *testing.T) {
		in := base
		in.StartDate = "10/05/2027"
		assert.Error(t, in.Validate(true, now))
	})
}
