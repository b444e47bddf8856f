package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/biji/pkg/core"
)

// MedicalRepository implements core.MedicalRepository on the medical collection.
type MedicalRepository struct {
	g *Gateway
}

// Medical returns the medical repository backed by this gateway.
func (g *Gateway) Medical() *MedicalRepository {
	return &MedicalRepository{g: g}
}

var _ core.MedicalRepository = (*MedicalRepository)(nil)

var medicalScope = []string{MedicalStore}

// Get returns the stored profile, or an empty profile if none was saved.
func (r *MedicalRepository) Get(ctx context.Context) (core.MedicalProfile, error) {
	var (
		raw      string
		modified int64
	)
	err := r.g.View(ctx, medicalScope, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT data, modified FROM medical WHERE id = ?`, core.MedicalKey)
		return row.Scan(&raw, &modified)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.MedicalProfile{Data: core.MedicalData{}}, nil
	}
	if err != nil {
		return core.MedicalProfile{}, &core.ReadError{Op: "load medical profile", Err: err}
	}

	data := core.MedicalData{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return core.MedicalProfile{}, &core.ReadError{Op: "load medical profile", Err: fmt.Errorf("corrupt record: %w", err)}
	}

	return core.MedicalProfile{Data: data, Modified: modified}, nil
}

// Put replaces the singleton profile with data.
func (r *MedicalRepository) Put(ctx context.Context, data core.MedicalData) error {
	if data == nil {
		data = core.MedicalData{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return &core.WriteError{Op: "save medical profile", Err: err}
	}

	modified := r.g.now()
	err = r.g.Update(ctx, medicalScope, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO medical (id, data, modified) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET data = excluded.data, modified = excluded.modified`,
			core.MedicalKey, string(raw), modified,
		)
		return err
	})
	if err != nil {
		return &core.WriteError{Op: "save medical profile", Err: err}
	}

	r.g.config.Logger.Debug("medical profile saved", "fields", len(data))
	return nil
}
