package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TripShare-io/tripshare/internal/apperr"
	"github.com/TripShare-io/tripshare/internal/models"
)

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (api *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, apperr.Validation("Invalid request body"))
		return
	}

	if err := in.Validate(); err != nil {
		respondError(w, err)
		return
	}

	hash, err := models.HashPassword(in.Password)
	if err != nil {
		respondError(w, apperr.Internal("failed to hash password", err))
		return
	}

	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  hash,
		Role:      models.RoleUser,
	}
	if err := api.store.CreateUser(user); err != nil {
		respondError(w, err)
		return
	}

	token, err := api.tokens.GenerateToken(user)
	if err != nil {
		respondError(w, apperr.Internal("failed to generate token", err))
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, apperr.Validation("Invalid request body"))
		return
	}

	if err := in.Validate(); err != nil {
		respondError(w, err)
		return
	}

	// Unknown email and wrong password report identically so the endpoint
	// cannot be used to enumerate accounts.
	user, err := api.store.GetUserByEmail(in.Email)
	if err != nil {
		if errors.Is(err, apperr.NotFound("")) {
			respondError(w, apperr.Auth("Incorrect email or password"))
			return
		}
		respondError(w, err)
		return
	}
	if !user.CheckPassword(in.Password) {
		respondError(w, apperr.Auth("Incorrect email or password"))
		return
	}

	token, err := api.tokens.GenerateToken(user)
	if err != nil {
		respondError(w, apperr.Internal("failed to generate token", err))
		return
	}

	respondJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (api *Api) CheckEmailHandler(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	exists, err := api.store.EmailExists(email)
	if err != nil {
		respondError(w, apperr.Internal("failed to check email", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}
