package controllers

import (
	"context"
	"net/http"

	"avado-backend/store"
	"avado-backend/utils"
)

// OverviewSource computes the admin dashboard aggregates.
type OverviewSource interface {
	Overview(ctx context.Context) (store.Overview, error)
}

// StatsController serves the admin dashboard numbers.
type StatsController struct {
	Stats OverviewSource
}

func NewStatsController(stats OverviewSource) *StatsController {
	return &StatsController{Stats: stats}
}

// Overview returns order counts, delivered revenue, and monthly sales.
func (sc *StatsController) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := sc.Stats.Overview(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to load dashboard stats")
		return
	}
	utils.JSON(w, http.StatusOK, ov)
}
