package logging

// #region imports
import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/rate-advisor/internal/orchestrator"
)

// #endregion

// #region schema

const turnLogSchema = `
CREATE TABLE IF NOT EXISTS turn_log (
    id          TEXT PRIMARY KEY,
    session_id  TEXT NOT NULL,
    seq         INTEGER NOT NULL,
    text        TEXT NOT NULL,
    kind        TEXT NOT NULL,
    service     TEXT,
    cost_usd    REAL,
    path        TEXT NOT NULL,
    notes       TEXT,
    reply       TEXT NOT NULL,
    total_ns    INTEGER NOT NULL,
    created_at  TEXT NOT NULL
);
`

const turnLogIndex = `
CREATE INDEX IF NOT EXISTS idx_turn_log_session
ON turn_log(session_id, created_at);
`

// halfLifeHours weights recent turns over old ones in Shares.
const halfLifeHours = 7.0 * 24.0

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #endregion

// #region turn-log

// TurnLog persists every processed turn. It implements
// orchestrator.Observer.
type TurnLog struct {
	db     *sql.DB
	owned  bool
	logger zerolog.Logger
	now    func() time.Time
}

// OpenTurnLog opens (or creates) a turn log database at path.
func OpenTurnLog(path string, l zerolog.Logger) (*TurnLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open turn log: %w", err)
	}
	db.SetMaxOpenConns(1)
	tl, err := NewTurnLog(db, l)
	if err != nil {
		db.Close()
		return nil, err
	}
	tl.owned = true
	return tl, nil
}

// NewTurnLog initializes the turn_log table on an existing database.
func NewTurnLog(db *sql.DB, l zerolog.Logger) (*TurnLog, error) {
	if _, err := db.Exec(turnLogSchema); err != nil {
		return nil, fmt.Errorf("turn log schema: %w", err)
	}
	if _, err := db.Exec(turnLogIndex); err != nil {
		return nil, fmt.Errorf("turn log index: %w", err)
	}
	return &TurnLog{
		db:     db,
		logger: l.With().Str("component", "turnlog").Logger(),
		now:    time.Now,
	}, nil
}

// Close releases the database if the log opened it.
func (t *TurnLog) Close() error {
	if !t.owned {
		return nil
	}
	return t.db.Close()
}

// #endregion

// #region record

// Record writes one turn.
func (t *TurnLog) Record(ctx context.Context, text string, res orchestrator.TurnResult) error {
	var service string
	var cost any
	if res.Recommendation != nil {
		service = res.Recommendation.Service
		cost = res.Recommendation.CostUSD
	}
	path := make([]string, len(res.Path))
	for i, s := range res.Path {
		path[i] = string(s)
	}

	_, err := t.db.ExecContext(ctx, `
		INSERT INTO turn_log
		(id, session_id, seq, text, kind, service, cost_usd, path, notes, reply, total_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		res.SessionID,
		res.Seq,
		text,
		string(res.Kind),
		nullIfEmpty(service),
		cost,
		strings.Join(path, ","),
		nullIfEmpty(strings.Join(res.Notes, ",")),
		res.ReplyText,
		res.Total.Nanoseconds(),
		t.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// ObserveTurn records res, logging rather than returning failures.
func (t *TurnLog) ObserveTurn(ctx context.Context, text string, res orchestrator.TurnResult) {
	if err := t.Record(ctx, text, res); err != nil {
		t.logger.Warn().Err(err).Str("session", res.SessionID).Msg("turn not logged")
	}
}

// #endregion

// #region query

// Recent returns the newest turns first. An empty sessionID means all
// sessions; limit <= 0 means 50.
func (t *TurnLog) Recent(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, session_id, seq, text, kind, service, cost_usd, path, notes, reply, total_ns, created_at
		FROM turn_log`
	args := []any{}
	if sessionID != "" {
		q += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	q += ` ORDER BY created_at DESC, seq DESC LIMIT ?`
	args = append(args, limit)

	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e              Entry
			kind, path, at string
			service, notes sql.NullString
			cost           sql.NullFloat64
			totalNs        int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &e.Text, &kind, &service, &cost,
			&path, &notes, &e.Reply, &totalNs, &at); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		e.Kind = orchestrator.Kind(kind)
		e.Service = service.String
		e.CostUSD = cost.Float64
		for _, s := range splitList(path) {
			e.Path = append(e.Path, orchestrator.State(s))
		}
		e.Notes = splitList(notes.String)
		e.Total = time.Duration(totalNs)
		e.CreatedAt, _ = time.Parse(timeLayout, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Shares returns each kind's decay-weighted share of all logged turns,
// heaviest first. Each turn weighs exp(-age/halfLifeHours).
func (t *TurnLog) Shares(ctx context.Context) ([]KindShare, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT kind, created_at FROM turn_log`)
	if err != nil {
		return nil, fmt.Errorf("turn shares: %w", err)
	}
	defer rows.Close()

	now := t.now()
	acc := make(map[orchestrator.Kind]*KindShare)
	var total float64
	for rows.Next() {
		var kind, at string
		if err := rows.Scan(&kind, &at); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		created, err := time.Parse(timeLayout, at)
		if err != nil {
			continue
		}
		w := math.Exp(-now.Sub(created).Hours() / halfLifeHours)
		k := orchestrator.Kind(kind)
		if acc[k] == nil {
			acc[k] = &KindShare{Kind: k}
		}
		acc[k].Count++
		acc[k].Weight += w
		total += w
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]KindShare, 0, len(acc))
	for _, s := range acc {
		if total > 0 {
			s.Weight /= total
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}

// #endregion

// #region helpers

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// #endregion
