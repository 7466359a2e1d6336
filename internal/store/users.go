package store

import (
	"database/sql"
	"fmt"

	"github.com/TripShare-io/tripshare/internal/apperr"
	"github.com/TripShare-io/tripshare/internal/models"
)

// CreateUser inserts a new user row. The email must be unique; a duplicate
// yields a conflict error whether caught by the pre-check or by the
// constraint when two registrations race.
func (s *Store) CreateUser(user *models.User) error {
	exists, err := s.EmailExists(user.Email)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("Email already registered")
	}

	if s.dialect == "postgres" {
		err = s.db.QueryRow(
			s.rebind("INSERT INTO users (first_name, last_name, email, password, role) VALUES (?, ?, ?, ?, ?) RETURNING id"),
			user.FirstName, user.LastName, user.Email, user.Password, user.Role,
		).Scan(&user.ID)
	} else {
		var result sql.Result
		result, err = s.db.Exec(
			"INSERT INTO users (first_name, last_name, email, password, role) VALUES (?, ?, ?, ?, ?)",
			user.FirstName, user.LastName, user.Email, user.Password, user.Role,
		)
		if err == nil {
			user.ID, err = result.LastInsertId()
		}
	}
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("Email already registered")
		}
		return apperr.Internal("failed to create user", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(
		s.rebind("SELECT id, first_name, last_name, email, password, role FROM users WHERE email = ?"),
		email,
	).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Password, &user.Role)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to get user", err)
	}
	return user, nil
}

// EmailExists reports whether a user with the given email is registered.
func (s *Store) EmailExists(email string) (bool, error) {
	var id int64
	err := s.db.QueryRow(s.rebind("SELECT id FROM users WHERE email = ?"), email).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return true, nil
}
