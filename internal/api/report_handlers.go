package api

import (
	"encoding/csv"
	"log"
	"net/http"
	"strconv"
)

func (api *Api) FollowerReportHandler(w http.ResponseWriter, r *http.Request) {
	report, err := api.store.FollowerReport()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// FollowerReportCSVHandler renders the follower report as a CSV download.
// Destinations with embedded commas or quotes are escaped per RFC 4180.
func (api *Api) FollowerReportCSVHandler(w http.ResponseWriter, r *http.Request) {
	report, err := api.store.FollowerReport()
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=vacations-report.csv")

	cw := csv.NewWriter(w)
	records := [][]string{{"Destination", "Followers"}}
	for _, row := range report {
		records = append(records, []string{row.Destination, strconv.Itoa(row.FollowersCount)})
	}
	if err := cw.WriteAll(records); err != nil {
		log.Printf("failed to write CSV report: %v", err)
	}
}
