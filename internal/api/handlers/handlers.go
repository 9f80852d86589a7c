// Package handlers implements the HTTP surface over C5-C8: lineup,
// free-agent, trade, draft-compare, matchup/season/playoff simulation
// and backtest replay. Every handler is a thin decode-delegate-respond
// wrapper; all decision and simulation math lives in internal/decisions,
// internal/montecarlo and internal/backtest.
package handlers

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/ff-alpha-core/internal/audit"
	"github.com/jstittsworth/ff-alpha-core/internal/backtest"
	"github.com/jstittsworth/ff-alpha-core/internal/cache"
	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/montecarlo"
	"github.com/jstittsworth/ff-alpha-core/internal/pipeline"
	"github.com/jstittsworth/ff-alpha-core/pkg/config"
	"github.com/jstittsworth/ff-alpha-core/pkg/database"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
)

// Deps bundles every collaborator a handler needs. DB and Cache may be
// nil (sqlite-less / redis-less deployments still answer every
// decision question; they simply skip audit persistence and
// memoization).
type Deps struct {
	Pipeline     *pipeline.Service
	PipelineDeps pipeline.Deps
	DB           *database.DB
	Cache        *cache.ProjectionCache
	Scheduler    *backtest.Scheduler
	Cfg          *config.Config
	Logger       *logrus.Logger
}

// Handler holds the shared dependencies every route method closes
// over.
type Handler struct {
	deps Deps
}

// New builds a Handler from its dependencies.
func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// simulationConfig builds a montecarlo.Config from runtime
// configuration, optionally overridden by a per-request seed so a
// caller can request a reproducible run.
func (h *Handler) simulationConfig(seedOverride *int64) montecarlo.Config {
	cfg := montecarlo.Config{
		NumSimulations:     h.deps.Cfg.NumSimulations,
		Workers:            h.deps.Cfg.Workers,
		Seed:               h.deps.Cfg.Seed,
		ScoreVarianceFloor: h.deps.Cfg.ScoreVarianceFloor,
	}
	if seedOverride != nil {
		cfg.Seed = *seedOverride
	}
	return cfg
}

// ratingsConfig builds a montecarlo.RatingsConfig from runtime
// configuration for BuildTeamRatings.
func (h *Handler) ratingsConfig() montecarlo.RatingsConfig {
	return montecarlo.RatingsConfig{
		AlphaMode:          h.deps.Cfg.AlphaMode,
		ScoreVarianceFloor: h.deps.Cfg.ScoreVarianceFloor,
		RatingsBlend:       h.deps.Cfg.RatingsBlend,
	}
}

func (h *Handler) rng(seedOverride *int64) *rand.Rand {
	seed := h.deps.Cfg.Seed
	if seedOverride != nil {
		seed = *seedOverride
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// recordAudit persists a decision-audit row when a database is
// configured; persistence failures are logged, never surfaced to the
// caller.
func (h *Handler) recordAudit(kind audit.DecisionKind, leagueID string, week int, request, result audit.JSONBlob) {
	if h.deps.DB == nil {
		return
	}
	row := audit.NewDecisionAudit(kind, leagueID, week, request, result)
	if err := h.deps.DB.Create(&row).Error; err != nil {
		h.deps.Logger.WithError(err).Warn("failed to persist decision audit row")
	}
}

// leagueTeam resolves the team named by teamID within league, sending
// a 404 and returning ok=false when it cannot be found.
func leagueTeam(c *gin.Context, league *domain.LeagueContext, teamID string) (*domain.Team, bool) {
	team, ok := league.TeamByID(teamID)
	if !ok {
		utils.SendNotFound(c, "team not found in league: "+teamID)
		return nil, false
	}
	return team, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return false
	}
	return true
}

// Health reports basic liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
