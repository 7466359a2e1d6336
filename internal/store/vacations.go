package store

import (
	"database/sql"

	"github.com/TripShare-io/tripshare/internal/apperr"
	"github.com/TripShare-io/tripshare/internal/models"
)

// FilterKind selects the predicate applied to a vacation listing.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterFollowing
	FilterNotStarted
	FilterActive
)

// Filter is a tagged descriptor compiled into a parameterized WHERE
// clause. CallerID is required for FilterFollowing; AsOf (a DateLayout
// string) is required for the date filters.
type Filter struct {
	Kind     FilterKind
	CallerID int64
	AsOf     string
}

// ParseFilterKind maps the query-string filter value onto a kind. Unknown
// values mean no filtering, matching the lenient query contract.
func ParseFilterKind(s string) FilterKind {
	switch s {
	case "following":
		return FilterFollowing
	case "notStarted":
		return FilterNotStarted
	case "active":
		return FilterActive
	default:
		return FilterNone
	}
}

// compile returns the WHERE clause (possibly empty) and its bind args.
func (f Filter) compile() (string, []interface{}, error) {
	switch f.Kind {
	case FilterNone:
		return "", nil, nil
	case FilterFollowing:
		if f.CallerID == 0 {
			return "", nil, apperr.Validation("The following filter requires an authenticated caller")
		}
		return "WHERE v.id IN (SELECT vacation_id FROM followers WHERE user_id = ?)",
			[]interface{}{f.CallerID}, nil
	case FilterNotStarted:
		return "WHERE v.start_date > ?", []interface{}{f.AsOf}, nil
	case FilterActive:
		return "WHERE v.start_date <= ? AND v.end_date >= ?", []interface{}{f.AsOf, f.AsOf}, nil
	}
	return "", nil, apperr.Validation("Unknown filter")
}

// ListParams holds the inputs of a vacation listing query. CallerID of 0
// means no caller is known and IsFollowing is reported false throughout.
type ListParams struct {
	CallerID int64
	Page     int
	Limit    int
	Filter   Filter
}

const vacationColumns = `v.id, v.destination, v.description, v.start_date, v.end_date, v.price, v.image_file_name,
		COUNT(DISTINCT f.user_id) AS followers_count,
		MAX(CASE WHEN f.user_id = ? THEN 1 ELSE 0 END) AS is_following`

func scanVacation(row interface{ Scan(...interface{}) error }) (*models.Vacation, error) {
	var (
		v          models.Vacation
		start, end dateText
		following  sql.NullInt64
	)
	err := row.Scan(&v.ID, &v.Destination, &v.Description, &start, &end, &v.Price,
		&v.ImageFileName, &v.FollowersCount, &following)
	if err != nil {
		return nil, err
	}
	v.StartDate = string(start)
	v.EndDate = string(end)
	v.IsFollowing = following.Valid && following.Int64 == 1
	return &v, nil
}

// ListVacations returns one page of vacations matching the filter, with
// per-vacation follower counts and the caller's follow status, plus the
// total number of matching rows across all pages.
func (s *Store) ListVacations(p ListParams) ([]*models.Vacation, int, error) {
	where, whereArgs, err := p.Filter.compile()
	if err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM vacations v " + where
	if err := s.db.QueryRow(s.rebind(countQuery), whereArgs...).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("failed to count vacations", err)
	}

	offset := (p.Page - 1) * p.Limit
	query := `SELECT ` + vacationColumns + `
		FROM vacations v
		LEFT JOIN followers f ON v.id = f.vacation_id
		` + where + `
		GROUP BY v.id, v.destination, v.description, v.start_date, v.end_date, v.price, v.image_file_name
		ORDER BY v.start_date ASC
		LIMIT ? OFFSET ?`

	args := append([]interface{}{p.CallerID}, whereArgs...)
	args = append(args, p.Limit, offset)

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list vacations", err)
	}
	defer rows.Close()

	vacations := []*models.Vacation{}
	for rows.Next() {
		v, err := scanVacation(rows)
		if err != nil {
			return nil, 0, apperr.Internal("failed to scan vacation", err)
		}
		vacations = append(vacations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("failed to list vacations", err)
	}

	return vacations, total, nil
}

// GetVacationByID returns a single vacation with follower aggregates.
func (s *Store) GetVacationByID(id, callerID int64) (*models.Vacation, error) {
	query := `SELECT ` + vacationColumns + `
		FROM vacations v
		LEFT JOIN followers f ON v.id = f.vacation_id
		WHERE v.id = ?
		GROUP BY v.id, v.destination, v.description, v.start_date, v.end_date, v.price, v.image_file_name`

	v, err := scanVacation(s.db.QueryRow(s.rebind(query), callerID, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("Vacation not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to get vacation", err)
	}
	return v, nil
}

// CreateVacation inserts a new vacation row and returns it with a zero
// follower count.
func (s *Store) CreateVacation(in models.VacationInput, imageFileName string) (*models.Vacation, error) {
	v := &models.Vacation{
		Destination:   in.Destination,
		Description:   in.Description,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Price:         in.Price,
		ImageFileName: imageFileName,
	}

	var err error
	if s.dialect == "postgres" {
		err = s.db.QueryRow(
			s.rebind("INSERT INTO vacations (destination, description, start_date, end_date, price, image_file_name) VALUES (?, ?, ?, ?, ?, ?) RETURNING id"),
			v.Destination, v.Description, v.StartDate, v.EndDate, v.Price, v.ImageFileName,
		).Scan(&v.ID)
	} else {
		var result sql.Result
		result, err = s.db.Exec(
			"INSERT INTO vacations (destination, description, start_date, end_date, price, image_file_name) VALUES (?, ?, ?, ?, ?, ?)",
			v.Destination, v.Description, v.StartDate, v.EndDate, v.Price, v.ImageFileName,
		)
		if err == nil {
			v.ID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return nil, apperr.Internal("failed to create vacation", err)
	}

	return v, nil
}

// UpdateVacation overwrites the mutable fields of an existing vacation.
func (s *Store) UpdateVacation(id int64, in models.VacationInput, imageFileName string) error {
	result, err := s.db.Exec(
		s.rebind("UPDATE vacations SET destination = ?, description = ?, start_date = ?, end_date = ?, price = ?, image_file_name = ? WHERE id = ?"),
		in.Destination, in.Description, in.StartDate, in.EndDate, in.Price, imageFileName, id,
	)
	if err != nil {
		return apperr.Internal("failed to update vacation", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Internal("failed to update vacation", err)
	}
	if rows == 0 {
		return apperr.NotFound("Vacation not found")
	}
	return nil
}

// DeleteVacation removes a vacation and its follower rows in one
// transaction and returns the stored image filename so the caller can
// clean up the file after commit.
func (s *Store) DeleteVacation(id int64) (string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return "", apperr.Internal("failed to delete vacation", err)
	}
	defer tx.Rollback()

	var imageFileName string
	err = tx.QueryRow(s.rebind("SELECT image_file_name FROM vacations WHERE id = ?"), id).Scan(&imageFileName)
	if err == sql.ErrNoRows {
		return "", apperr.NotFound("Vacation not found")
	}
	if err != nil {
		return "", apperr.Internal("failed to delete vacation", err)
	}

	if _, err := tx.Exec(s.rebind("DELETE FROM followers WHERE vacation_id = ?"), id); err != nil {
		return "", apperr.Internal("failed to delete vacation followers", err)
	}
	if _, err := tx.Exec(s.rebind("DELETE FROM vacations WHERE id = ?"), id); err != nil {
		return "", apperr.Internal("failed to delete vacation", err)
	}

	if err := tx.Commit(); err != nil {
		return "", apperr.Internal("failed to delete vacation", err)
	}
	return imageFileName, nil
}

// FollowVacation records that a user follows a vacation. Concurrent
// duplicate follows are resolved by the primary key on (user_id,
// vacation_id); the second writer gets the conflict.
func (s *Store) FollowVacation(userID, vacationID int64) error {
	var id int64
	err := s.db.QueryRow(s.rebind("SELECT id FROM vacations WHERE id = ?"), vacationID).Scan(&id)
	if err == sql.ErrNoRows {
		return apperr.NotFound("Vacation not found")
	}
	if err != nil {
		return apperr.Internal("failed to follow vacation", err)
	}

	_, err = s.db.Exec(
		s.rebind("INSERT INTO followers (user_id, vacation_id) VALUES (?, ?)"),
		userID, vacationID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("Already following this vacation")
		}
		return apperr.Internal("failed to follow vacation", err)
	}
	return nil
}

// UnfollowVacation removes a follow row.
func (s *Store) UnfollowVacation(userID, vacationID int64) error {
	result, err := s.db.Exec(
		s.rebind("DELETE FROM followers WHERE user_id = ? AND vacation_id = ?"),
		userID, vacationID,
	)
	if err != nil {
		return apperr.Internal("failed to unfollow vacation", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.Internal("failed to unfollow vacation", err)
	}
	if rows == 0 {
		return apperr.NotFound("Follow record not found")
	}
	return nil
}

// FollowerReport returns follower counts grouped per vacation, most
// followed first. Vacations sharing a destination name stay separate rows.
func (s *Store) FollowerReport() ([]models.ReportRow, error) {
	rows, err := s.db.Query(`SELECT v.destination, COUNT(f.user_id) AS followers_count
		FROM vacations v
		LEFT JOIN followers f ON v.id = f.vacation_id
		GROUP BY v.id, v.destination
		ORDER BY followers_count DESC`)
	if err != nil {
		return nil, apperr.Internal("failed to build report", err)
	}
	defer rows.Close()

	report := []models.ReportRow{}
	for rows.Next() {
		var row models.ReportRow
		if err := rows.Scan(&row.Destination, &row.FollowersCount); err != nil {
			return nil, apperr.Internal("failed to scan report row", err)
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("failed to build report", err)
	}
	return report, nil
}
