// Package rulestore archives extraction runs in sqlite so successive
// scrapes of the same firms stay comparable.
package rulestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"propfirm-backend/lib/rules"

	_ "embed"

	_ "modernc.org/sqlite"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("propscrape.lib.rulestore")

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

// New wraps an already-open database, applying the schema. The caller
// keeps ownership of the handle.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Open opens (or creates) the sqlite file at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return New(db)
}

func (s *Store) Close() error { return s.db.Close() }

// BeginRun registers a new run and returns its id.
func (s *Store) BeginRun(ctx context.Context, startedAt time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "BeginRun")
	defer span.End()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO run (started_at) VALUES (?)`, startedAt.Unix())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return res.LastInsertId()
}

// FinishRun stamps a run's end time and site count.
func (s *Store) FinishRun(ctx context.Context, runID int64, finishedAt time.Time, siteCount int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE run SET finished_at = ?, site_count = ? WHERE id = ?`,
		finishedAt.Unix(), siteCount, runID)
	return err
}

// SaveRecords archives the records of one run in a single transaction.
func (s *Store) SaveRecords(ctx context.Context, runID int64, records []rules.Record) error {
	ctx, span := tracer.Start(ctx, "SaveRecords")
	defer span.End()
	span.SetAttributes(attribute.Int("count", len(records)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO record (
			run_id, firm_name, account_size, account_size_usd, website_url,
			broker, platform, last_updated, status,
			evaluation_target_usd, evaluation_max_drawdown_usd,
			evaluation_daily_loss_usd, evaluation_drawdown_kind,
			evaluation_min_days, evaluation_consistency,
			funded_max_drawdown_usd, funded_daily_loss_usd, funded_drawdown_kind,
			profit_split_percent, payout_cadence, min_payout_usd,
			evaluation_fee_usd, reset_fee_usd, diagnostics
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		diag, err := json.Marshal(r.Diagnostics)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			runID, r.FirmName, r.AccountSize, r.AccountSizeUSD, r.WebsiteURL,
			string(r.Broker), string(r.Platform), r.LastUpdated.Unix(), string(r.Status),
			nullFloat(r.EvaluationTargetUSD), nullFloat(r.EvaluationMaxDrawdownUSD),
			nullFloat(r.EvaluationDailyLossUSD), string(r.EvaluationDrawdownKind),
			nullInt(r.EvaluationMinDays), nullBool(r.EvaluationConsistency),
			nullFloat(r.FundedMaxDrawdownUSD), nullFloat(r.FundedDailyLossUSD),
			string(r.FundedDrawdownKind),
			nullFloat(r.ProfitSplitPercent), string(r.PayoutCadence),
			nullFloat(r.MinPayoutUSD),
			nullFloat(r.EvaluationFeeUSD), nullFloat(r.ResetFeeUSD),
			string(diag))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	return tx.Commit()
}

// RunRecords loads every record archived under a run, in insert order.
func (s *Store) RunRecords(ctx context.Context, runID int64) ([]rules.Record, error) {
	ctx, span := tracer.Start(ctx, "RunRecords")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT firm_name, account_size, account_size_usd, website_url,
			broker, platform, last_updated, status,
			evaluation_target_usd, evaluation_max_drawdown_usd,
			evaluation_daily_loss_usd, evaluation_drawdown_kind,
			evaluation_min_days, evaluation_consistency,
			funded_max_drawdown_usd, funded_daily_loss_usd, funded_drawdown_kind,
			profit_split_percent, payout_cadence, min_payout_usd,
			evaluation_fee_usd, reset_fee_usd, diagnostics
		FROM record WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	var out []rules.Record
	for rows.Next() {
		var (
			r          rules.Record
			broker     string
			platform   string
			updated    int64
			status     string
			ddKind     string
			fundedKind string
			cadence    string
			target     sql.NullFloat64
			maxDD      sql.NullFloat64
			dailyLoss  sql.NullFloat64
			minDays    sql.NullInt64
			consist    sql.NullBool
			fundedDD   sql.NullFloat64
			fundedDL   sql.NullFloat64
			split      sql.NullFloat64
			minPayout  sql.NullFloat64
			evalFee    sql.NullFloat64
			resetFee   sql.NullFloat64
			diag       string
		)
		err := rows.Scan(
			&r.FirmName, &r.AccountSize, &r.AccountSizeUSD, &r.WebsiteURL,
			&broker, &platform, &updated, &status,
			&target, &maxDD, &dailyLoss, &ddKind,
			&minDays, &consist,
			&fundedDD, &fundedDL, &fundedKind,
			&split, &cadence, &minPayout,
			&evalFee, &resetFee, &diag)
		if err != nil {
			return nil, err
		}

		r.Broker = rules.Broker(broker)
		r.Platform = rules.Platform(platform)
		r.LastUpdated = time.Unix(updated, 0).UTC()
		r.Status = rules.Status(status)
		r.EvaluationDrawdownKind = rules.DrawdownKind(ddKind)
		r.FundedDrawdownKind = rules.DrawdownKind(fundedKind)
		r.PayoutCadence = rules.PayoutCadence(cadence)
		r.EvaluationTargetUSD = fromNullFloat(target)
		r.EvaluationMaxDrawdownUSD = fromNullFloat(maxDD)
		r.EvaluationDailyLossUSD = fromNullFloat(dailyLoss)
		r.FundedMaxDrawdownUSD = fromNullFloat(fundedDD)
		r.FundedDailyLossUSD = fromNullFloat(fundedDL)
		r.ProfitSplitPercent = fromNullFloat(split)
		r.MinPayoutUSD = fromNullFloat(minPayout)
		r.EvaluationFeeUSD = fromNullFloat(evalFee)
		r.ResetFeeUSD = fromNullFloat(resetFee)
		if minDays.Valid {
			r.EvaluationMinDays = rules.Int(int(minDays.Int64))
		}
		if consist.Valid {
			r.EvaluationConsistency = rules.Bool(consist.Bool)
		}
		if err := json.Unmarshal([]byte(diag), &r.Diagnostics); err != nil {
			return nil, err
		}

		out = append(out, r)
	}
	return out, rows.Err()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
