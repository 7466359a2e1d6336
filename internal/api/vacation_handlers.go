package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TripShare-io/tripshare/internal/apperr"
	"github.com/TripShare-io/tripshare/internal/models"
	"github.com/TripShare-io/tripshare/internal/storage"
	"github.com/TripShare-io/tripshare/internal/store"
)

const (
	defaultPage    = 1
	defaultLimit   = 10
	maxUploadBytes = 32 << 20
)

type vacationListResponse struct {
	Vacations  []*models.Vacation `json:"vacations"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	TotalPages int                `json:"totalPages"`
}

func (api *Api) ListVacationsHandler(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	page := positiveQueryInt(r, "page", defaultPage)
	limit := positiveQueryInt(r, "limit", defaultLimit)

	var callerID int64
	if claims != nil {
		callerID = claims.UserID
	}

	params := store.ListParams{
		CallerID: callerID,
		Page:     page,
		Limit:    limit,
		Filter: store.Filter{
			Kind:     store.ParseFilterKind(r.URL.Query().Get("filter")),
			CallerID: callerID,
			AsOf:     time.Now().Format(models.DateLayout),
		},
	}

	vacations, total, err := api.store.ListVacations(params)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, vacationListResponse{
		Vacations:  vacations,
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	})
}

func (api *Api) GetVacationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := vacationID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	claims, _ := ClaimsFromContext(r.Context())

	var callerID int64
	if claims != nil {
		callerID = claims.UserID
	}

	vacation, err := api.store.GetVacationByID(id, callerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vacation)
}

func (api *Api) CreateVacationHandler(w http.ResponseWriter, r *http.Request) {
	in, upload, err := parseVacationForm(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := in.Validate(true, time.Now()); err != nil {
		respondError(w, err)
		return
	}

	imageFileName := models.DefaultImage
	if upload != nil {
		imageFileName, err = api.images.Save(r.Context(), *upload)
		if err != nil {
			respondError(w, apperr.Internal("failed to store image", err))
			return
		}
	}

	vacation, err := api.store.CreateVacation(in, imageFileName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, vacation)
}

func (api *Api) UpdateVacationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := vacationID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	in, upload, err := parseVacationForm(r)
	if err != nil {
		respondError(w, err)
		return
	}
	// Start dates are not re-checked against today on update, so listings
	// already underway stay editable.
	if err := in.Validate(false, time.Now()); err != nil {
		respondError(w, err)
		return
	}

	claims, _ := ClaimsFromContext(r.Context())
	var callerID int64
	if claims != nil {
		callerID = claims.UserID
	}

	current, err := api.store.GetVacationByID(id, callerID)
	if err != nil {
		respondError(w, err)
		return
	}

	imageFileName := current.ImageFileName
	if upload != nil {
		imageFileName, err = api.images.Save(r.Context(), *upload)
		if err != nil {
			respondError(w, apperr.Internal("failed to store image", err))
			return
		}
		if err := api.images.Remove(r.Context(), current.ImageFileName); err != nil {
			log.Printf("failed to remove replaced image %s: %v", current.ImageFileName, err)
		}
	}

	if err := api.store.UpdateVacation(id, in, imageFileName); err != nil {
		respondError(w, err)
		return
	}

	vacation, err := api.store.GetVacationByID(id, callerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vacation)
}

func (api *Api) DeleteVacationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := vacationID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	imageFileName, err := api.store.DeleteVacation(id)
	if err != nil {
		respondError(w, err)
		return
	}

	// Best effort once the rows are gone; a leaked file is not worth a 500.
	if err := api.images.Remove(r.Context(), imageFileName); err != nil {
		log.Printf("failed to remove image %s: %v", imageFileName, err)
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Vacation deleted successfully"})
}

func (api *Api) FollowVacationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := vacationID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, apperr.Auth("Access denied. No token provided."))
		return
	}

	if err := api.store.FollowVacation(claims.UserID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "Vacation followed successfully"})
}

func (api *Api) UnfollowVacationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := vacationID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, apperr.Auth("Access denied. No token provided."))
		return
	}

	if err := api.store.UnfollowVacation(claims.UserID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Vacation unfollowed successfully"})
}

func vacationID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid vacation id")
	}
	return id, nil
}

func positiveQueryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// parseVacationForm reads the multipart vacation fields and the optional
// image file. The returned upload, if any, stays readable until the
// request body is closed.
func parseVacationForm(r *http.Request) (models.VacationInput, *storage.Upload, error) {
	var in models.VacationInput

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return in, nil, apperr.Validation("Invalid multipart form")
	}

	in.Destination = r.FormValue("destination")
	in.Description = r.FormValue("description")
	in.StartDate = r.FormValue("startDate")
	in.EndDate = r.FormValue("endDate")

	priceStr := r.FormValue("price")
	if priceStr == "" {
		return in, nil, apperr.Validation("All fields are required")
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return in, nil, apperr.Validation("Invalid price")
	}
	in.Price = price

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return in, nil, nil
		}
		return in, nil, apperr.Validation("Invalid image upload")
	}

	return in, &storage.Upload{
		OriginalName: header.Filename,
		Reader:       file,
		Size:         header.Size,
	}, nil
}
