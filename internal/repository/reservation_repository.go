package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gamebox/reservation-server/internal/engine"
	"github.com/gamebox/reservation-server/internal/model"
)

// ReservationRepo provides persistence for reservations and their
// participants. Reservations occupy one (res_date, slot_time) slot in
// the shared pool; the uq_slot unique key over (res_date, slot_time,
// slot_claim) is the authoritative guard against double-booking.
// slot_claim is a generated column that goes NULL when status is
// cancelled, so a cancelled row keeps its record but releases its
// slot, matching what IsSlotAvailable reports. The uq_res_email key
// keeps each email unique within one reservation. Capacity is re-validated inside a
// transaction at write time because a client-side check can be stale
// under concurrent joins. All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, owner_id, DATE_FORMAT(res_date, '%Y-%m-%d'), slot_time,
	game_mode, level, is_public, max_participants, status, created_at, updated_at`

// Create inserts a reservation and its initial participant list in
// one transaction. The caller supplies the generated ID and the
// normalized slot time; timestamps are read back after insert. When
// another non-cancelled booking holds the slot, the uq_slot duplicate
// maps to engine.ErrSlotConflict so exactly one of two concurrent
// creates survives; cancelled rows carry no slot claim and never
// collide.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const ins = `INSERT INTO reservations
		(id, owner_id, res_date, slot_time, game_mode, level, is_public, max_participants, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, ins,
		res.ID, res.OwnerID, res.Date, res.SlotTime, res.GameMode, res.Level,
		res.IsPublic, res.MaxParticipants, res.Status,
	)
	if err != nil {
		if isDuplicate(err, "uq_slot") {
			return engine.ErrSlotConflict
		}
		return err
	}
	if err := insertParticipantsTx(ctx, tx, res.ID, res.Participants); err != nil {
		return err
	}
	// Read back the stored timestamps and defaults.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// insertParticipantsTx bulk-inserts participant rows for one
// reservation. Passing an empty slice has no effect and returns nil.
func insertParticipantsTx(ctx context.Context, tx *sql.Tx, reservationID string, ps []model.Participant) error {
	if len(ps) == 0 {
		return nil
	}
	query := `INSERT INTO participants (reservation_id, email, name, confirmed) VALUES `
	args := make([]interface{}, 0, len(ps)*4)
	for i, p := range ps {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, reservationID, p.Email, p.Name, p.Confirmed)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID loads a reservation with its full participant list in
// insertion order. Unknown IDs return engine.ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ? LIMIT 1`, id)
	res, err := scanReservation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Reservation{}, engine.ErrNotFound
		}
		return model.Reservation{}, err
	}
	ps, err := r.participantsFor(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	res.Participants = ps
	return res, nil
}

// ListForUser returns the reservations the user owns plus those where
// their email appears as a participant, newest slot first.
func (r *ReservationRepo) ListForUser(ctx context.Context, userID uint64, email string) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
		WHERE owner_id = ?
		   OR id IN (SELECT reservation_id FROM participants WHERE email = ?)
		ORDER BY res_date DESC, slot_time DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out, err := collectReservations(rows)
	if err != nil {
		return nil, err
	}
	for i := range out {
		ps, err := r.participantsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Participants = ps
	}
	return out, nil
}

// ListByDay returns the reservations on one calendar date without
// their participant lists. It backs the slot availability queries,
// which only need the slot time and status of each row.
func (r *ReservationRepo) ListByDay(ctx context.Context, date string) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
		WHERE res_date = ? ORDER BY slot_time`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ConfirmParticipant records an acceptance with capacity re-validated
// under a row lock. The reservation row is locked FOR UPDATE, so two
// concurrent joins for the last seat serialize and the loser gets
// engine.ErrCapacityExceeded. An already-listed email is updated in
// place (idempotent). When the write leaves every participant
// confirmed on a pending reservation, its status is promoted and the
// returned change reports the transition.
func (r *ReservationRepo) ConfirmParticipant(ctx context.Context, id, email, name string, effectiveMax int) (engine.StatusChange, bool, error) {
	return r.writeParticipant(ctx, id, email, name, true, effectiveMax)
}

// SetParticipantConfirmation explicitly sets a participant's
// confirmed flag with the same locking discipline as
// ConfirmParticipant.
func (r *ReservationRepo) SetParticipantConfirmation(ctx context.Context, id, email string, confirmed bool, effectiveMax int) (engine.StatusChange, bool, error) {
	return r.writeParticipant(ctx, id, email, "", confirmed, effectiveMax)
}

func (r *ReservationRepo) writeParticipant(ctx context.Context, id, email, name string, confirmed bool, effectiveMax int) (engine.StatusChange, bool, error) {
	var change engine.StatusChange
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return change, false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM reservations WHERE id = ? FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return change, false, engine.ErrNotFound
		}
		return change, false, err
	}

	var existing bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM participants WHERE reservation_id = ? AND email = ?)`,
		id, email).Scan(&existing)
	if err != nil {
		return change, false, err
	}

	if existing {
		_, err = tx.ExecContext(ctx,
			`UPDATE participants SET confirmed = ?, name = IF(name = '' AND ? <> '', ?, name)
			 WHERE reservation_id = ? AND email = ?`,
			confirmed, name, name, id, email)
		if err != nil {
			return change, false, err
		}
	} else {
		if engine.IsTerminal(status) {
			return change, false, engine.ErrInvalidTransition
		}
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM participants WHERE reservation_id = ?`, id).Scan(&count); err != nil {
			return change, false, err
		}
		if count >= effectiveMax {
			return change, false, engine.ErrCapacityExceeded
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO participants (reservation_id, email, name, confirmed) VALUES (?, ?, ?, ?)`,
			id, email, name, confirmed)
		if err != nil {
			// A concurrent insert of the same email landed first;
			// fall back to the idempotent update path.
			if isDuplicate(err, "uq_res_email") {
				_, err = tx.ExecContext(ctx,
					`UPDATE participants SET confirmed = ? WHERE reservation_id = ? AND email = ?`,
					confirmed, id, email)
			}
			if err != nil {
				return change, false, err
			}
		}
	}

	promoted := false
	if status == model.StatusPending {
		var unconfirmed int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM participants WHERE reservation_id = ? AND confirmed = 0`,
			id).Scan(&unconfirmed); err != nil {
			return change, false, err
		}
		if unconfirmed == 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE reservations SET status = ?, updated_at = NOW() WHERE id = ?`,
				model.StatusConfirmed, id); err != nil {
				return change, false, err
			}
			change = engine.StatusChange{
				ReservationID: id,
				From:          model.StatusPending,
				To:            model.StatusConfirmed,
			}
			promoted = true
		}
	}
	if !promoted {
		if _, err := tx.ExecContext(ctx,
			`UPDATE reservations SET updated_at = NOW() WHERE id = ?`, id); err != nil {
			return change, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return change, false, err
	}
	committed = true
	return change, promoted, nil
}

// UpdateStatus writes a status transition with an optimistic guard on
// the previous status. When the row has moved on since the caller
// read it, the stale write affects no rows and the current state
// decides between engine.ErrNotFound and engine.ErrInvalidTransition.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var current string
		err := r.db.QueryRowContext(ctx,
			`SELECT status FROM reservations WHERE id = ? LIMIT 1`, id).Scan(&current)
		if err == sql.ErrNoRows {
			return engine.ErrNotFound
		}
		if err != nil {
			return err
		}
		if current == to {
			// A concurrent identical transition already landed.
			return nil
		}
		return engine.ErrInvalidTransition
	}
	return nil
}

// ReservationPatch carries the admin-editable core fields. Nil
// pointers leave the stored value untouched. Date and SlotTime must
// be validated and normalized by the caller.
type ReservationPatch struct {
	Date            *string
	SlotTime        *string
	GameMode        *string
	Level           *string
	MaxParticipants *int
	IsPublic        *bool
}

// UpdateFields applies an admin edit under a row lock. Lowering
// max_participants below the current participant count returns
// engine.ErrCapacityViolation; moving to an occupied slot loses on
// uq_slot and returns engine.ErrSlotConflict.
func (r *ReservationRepo) UpdateFields(ctx context.Context, id string, patch ReservationPatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM reservations WHERE id = ? FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return engine.ErrNotFound
		}
		return err
	}

	if patch.MaxParticipants != nil {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM participants WHERE reservation_id = ?`, id).Scan(&count); err != nil {
			return err
		}
		if *patch.MaxParticipants < 1 || *patch.MaxParticipants < count {
			return engine.ErrCapacityViolation
		}
	}

	sets := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	if patch.Date != nil {
		sets = append(sets, "res_date = ?")
		args = append(args, *patch.Date)
	}
	if patch.SlotTime != nil {
		sets = append(sets, "slot_time = ?")
		args = append(args, *patch.SlotTime)
	}
	if patch.GameMode != nil {
		sets = append(sets, "game_mode = ?")
		args = append(args, *patch.GameMode)
	}
	if patch.Level != nil {
		sets = append(sets, "level = ?")
		args = append(args, *patch.Level)
	}
	if patch.MaxParticipants != nil {
		sets = append(sets, "max_participants = ?")
		args = append(args, *patch.MaxParticipants)
	}
	if patch.IsPublic != nil {
		sets = append(sets, "is_public = ?")
		args = append(args, *patch.IsPublic)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	_, err = tx.ExecContext(ctx,
		`UPDATE reservations SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isDuplicate(err, "uq_slot") {
			return engine.ErrSlotConflict
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a reservation and, via the foreign key cascade, its
// participants. This is the admin hard delete, distinct from
// cancellation: the record is gone afterwards.
func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrNotFound
	}
	return nil
}

// participantsFor loads the participant list for one reservation in
// insertion order.
func (r *ReservationRepo) participantsFor(ctx context.Context, id string) ([]model.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT email, name, confirmed FROM participants WHERE reservation_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ps := make([]model.Participant, 0, 4)
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.Email, &p.Name, &p.Confirmed); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID, &res.OwnerID, &res.Date, &res.SlotTime, &res.GameMode,
		&res.Level, &res.IsPublic, &res.MaxParticipants, &res.Status,
		&res.CreatedAt, &res.UpdatedAt,
	)
	return res, err
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0, 16)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
