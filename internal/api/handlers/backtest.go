package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/ff-alpha-core/internal/backtest"
	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
)

// BacktestRequest names the hydrated league plus the evaluation window
// to replay. Feed/alpha tunables fall back to the server's configured
// pipeline dependencies when left zero.
type BacktestRequest struct {
	League          domain.LeagueContext `json:"league"`
	WindowStartWeek int                   `json:"window_start_week"`
	WindowEndWeek   int                   `json:"window_end_week"`
	Seed            *int64                `json:"seed,omitempty"`
}

// RunBacktest answers "how much better is alpha than the naive
// baseline over this window": it replays every evaluated week's feeds
// as of their recorded cutoffs and reports MAE lift and Brier-score
// calibration.
func (h *Handler) RunBacktest(c *gin.Context) {
	var req BacktestRequest
	if !bindJSON(c, &req) {
		return
	}

	cfg := backtest.Config{
		WindowStartWeek: req.WindowStartWeek,
		WindowEndWeek:   req.WindowEndWeek,
		Store:           h.deps.PipelineDeps.Snapshots,
		FeedNames:       h.deps.PipelineDeps.FeedNames,
		PublicationLag:  h.deps.PipelineDeps.PublicationLag,
		Staleness:       h.deps.PipelineDeps.Staleness,
		Provider:        h.deps.PipelineDeps.Provider,
		BlendConfig:     h.deps.PipelineDeps.BlendConfig,
		InjuryPenalties: h.deps.PipelineDeps.InjuryPenalties,
		Simulation:      h.simulationConfig(req.Seed),
	}

	result, err := backtest.Run(c.Request.Context(), &req.League, cfg)
	if err != nil {
		utils.SendInternalError(c, "backtest run failed: "+err.Error())
		return
	}
	utils.SendSuccess(c, result)
}

// RunScheduledBacktest triggers the configured backtest scheduler's
// standing window once, outside its cron cadence, returning 409 when
// no scheduler is configured.
func (h *Handler) RunScheduledBacktest(c *gin.Context) {
	if h.deps.Scheduler == nil {
		utils.SendConflict(c, "backtest scheduler is not enabled")
		return
	}
	result, err := h.deps.Scheduler.RunOnce(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "backtest run failed: "+err.Error())
		return
	}
	utils.SendSuccess(c, result)
}
