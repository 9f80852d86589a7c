// Package audit holds the two narrow GORM-backed records the system
// persists for later querying: one row per answered decision question
// and one row per backtest evaluation. Neither participates in
// simulation or training — both are write-once history.
package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DecisionKind is the closed set of C7 questions an audit row records.
type DecisionKind string

const (
	DecisionKindLineup       DecisionKind = "lineup"
	DecisionKindFreeAgent    DecisionKind = "free_agent"
	DecisionKindTrade        DecisionKind = "trade"
	DecisionKindDraftCompare DecisionKind = "draft_compare"
)

// JSONBlob is an opaque JSON document stored as a single jsonb column.
type JSONBlob map[string]interface{}

// Scan implements sql.Scanner for JSONBlob.
func (b *JSONBlob) Scan(value interface{}) error {
	if value == nil {
		*b = JSONBlob{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONBlob", value)
	}
	result := make(map[string]interface{})
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*b = JSONBlob(result)
	return nil
}

// Value implements driver.Valuer for JSONBlob.
func (b JSONBlob) Value() (driver.Value, error) {
	if b == nil {
		return "{}", nil
	}
	return json.Marshal(b)
}

// DecisionAudit is one row per answered lineup/free-agent/trade/draft-
// compare question, queryable later by league and week.
type DecisionAudit struct {
	ID                string       `gorm:"primaryKey;type:uuid" json:"id"`
	Kind              DecisionKind `gorm:"index:idx_audit_league_week_kind;not null" json:"kind"`
	LeagueID          string       `gorm:"index:idx_audit_league_week_kind;not null" json:"league_id"`
	Week              int          `gorm:"index:idx_audit_league_week_kind" json:"week"`
	RequestedAt       time.Time    `gorm:"not null" json:"requested_at"`
	RequestJSON       JSONBlob     `gorm:"type:jsonb" json:"request_json"`
	ResultSummaryJSON JSONBlob     `gorm:"type:jsonb" json:"result_summary_json"`
}

func (DecisionAudit) TableName() string {
	return "decision_audits"
}

// NewDecisionAudit stamps a fresh audit row with a generated id and
// the current UTC time.
func NewDecisionAudit(kind DecisionKind, leagueID string, week int, request, resultSummary JSONBlob) DecisionAudit {
	return DecisionAudit{
		ID:                uuid.NewString(),
		Kind:              kind,
		LeagueID:          leagueID,
		Week:              week,
		RequestedAt:       time.Now().UTC(),
		RequestJSON:       request,
		ResultSummaryJSON: resultSummary,
	}
}

// ReliabilityRow is one bucket of a BacktestRun's stored calibration
// table, the JSON-serializable twin of backtest.ReliabilityBucket.
type ReliabilityRow struct {
	BucketLow   float64 `json:"bucket_low"`
	BucketHigh  float64 `json:"bucket_high"`
	Predictions int     `json:"predictions"`
	Wins        int     `json:"wins"`
}

// ReliabilityTable is a slice of ReliabilityRow with the Scan/Value
// pair needed to store it as one jsonb column.
type ReliabilityTable []ReliabilityRow

func (t *ReliabilityTable) Scan(value interface{}) error {
	if value == nil {
		*t = ReliabilityTable{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into ReliabilityTable", value)
	}
	return json.Unmarshal(bytes, t)
}

func (t ReliabilityTable) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	return json.Marshal(t)
}

// BacktestRun is one row per C8 evaluation window.
type BacktestRun struct {
	ID               string           `gorm:"primaryKey;type:uuid" json:"id"`
	LeagueID         string           `gorm:"index:idx_backtest_league;not null" json:"league_id"`
	WindowStartWeek  int              `gorm:"not null" json:"window_start_week"`
	WindowEndWeek    int              `gorm:"not null" json:"window_end_week"`
	BaselineMAE      float64          `json:"baseline_mae"`
	AlphaMAE         float64          `json:"alpha_mae"`
	AlphaLift        float64          `json:"alpha_lift"`
	BrierScore       float64          `json:"brier_score"`
	ReliabilityJSON  ReliabilityTable `gorm:"type:jsonb" json:"reliability_json"`
	RunAt            time.Time        `gorm:"not null;index:idx_backtest_league" json:"run_at"`
}

func (BacktestRun) TableName() string {
	return "backtest_runs"
}

// NewBacktestRun stamps a fresh BacktestRun row from a backtest.Result,
// without importing the backtest package directly (it would create an
// import cycle since backtest records runs via this package). Callers
// pass the already-extracted scalar fields and reliability rows.
func NewBacktestRun(leagueID string, windowStartWeek, windowEndWeek int, baselineMAE, alphaMAE, alphaLift, brierScore float64, reliability []ReliabilityRow) BacktestRun {
	return BacktestRun{
		ID:              uuid.NewString(),
		LeagueID:        leagueID,
		WindowStartWeek: windowStartWeek,
		WindowEndWeek:   windowEndWeek,
		BaselineMAE:     baselineMAE,
		AlphaMAE:        alphaMAE,
		AlphaLift:       alphaLift,
		BrierScore:      brierScore,
		ReliabilityJSON: reliability,
		RunAt:           time.Now().UTC(),
	}
}

// Migrate runs the GORM auto-migration for both audit models.
func Migrate(db interface {
	AutoMigrate(dst ...interface{}) error
}) error {
	return db.AutoMigrate(&DecisionAudit{}, &BacktestRun{})
}
