package repository

import (
    "context"      // context allows query cancellation and timeouts
    "database/sql" // sql provides DB primitives
    "errors"       // errors is used to classify driver results
    "fmt"          // fmt wraps errors with the failing step

    "github.com/iliyamo/airport-checkin/internal/model"
)

// MySQLRepo implements Repository on top of the flights, seats,
// passengers, boarding_passes and baggage tables.  All timestamps are
// stored in UTC (the DSN is opened with loc=UTC).
type MySQLRepo struct {
    db *sql.DB
}

var _ Repository = (*MySQLRepo)(nil)

// NewMySQLRepo returns a new MySQLRepo bound to the provided database.
func NewMySQLRepo(db *sql.DB) *MySQLRepo { return &MySQLRepo{db: db} }

// DB exposes the underlying handle for health checks.
func (r *MySQLRepo) DB() *sql.DB { return r.db }

// ListFlights returns every flight ordered by id.
func (r *MySQLRepo) ListFlights(ctx context.Context) ([]model.Flight, error) {
    const q = `SELECT id, flight_number, destination, departure_time, gate, status, total_seats
               FROM flights ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.Flight
    for rows.Next() {
        var f model.Flight
        var status string
        if err := rows.Scan(&f.ID, &f.FlightNumber, &f.Destination, &f.DepartureTime, &f.Gate, &status, &f.TotalSeats); err != nil {
            return nil, err
        }
        f.Status = model.FlightStatus(status)
        out = append(out, f)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// ListSeats returns the seats of one flight ordered by id.
func (r *MySQLRepo) ListSeats(ctx context.Context, flightID uint64) ([]model.Seat, error) {
    const q = `SELECT id, flight_id, seat_number, class, is_occupied, passenger_id
               FROM seats WHERE flight_id = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, flightID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.Seat
    for rows.Next() {
        var s model.Seat
        var class string
        var pid sql.NullInt64
        if err := rows.Scan(&s.ID, &s.FlightID, &s.SeatNumber, &class, &s.Occupied, &pid); err != nil {
            return nil, err
        }
        s.Class = model.SeatClass(class)
        s.PassengerID = nullID(pid)
        out = append(out, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetPassengerByPassport returns ErrPassengerNotFound when no row matches.
func (r *MySQLRepo) GetPassengerByPassport(ctx context.Context, passportNumber string) (*model.Passenger, error) {
    const q = `SELECT id, passport_number, first_name, last_name, email, phone_number, nationality, date_of_birth, flight_id
               FROM passengers WHERE passport_number = ?`
    var p model.Passenger
    var fid sql.NullInt64
    err := r.db.QueryRowContext(ctx, q, passportNumber).Scan(
        &p.ID, &p.PassportNumber, &p.FirstName, &p.LastName, &p.Email, &p.PhoneNumber,
        &p.Nationality, &p.DateOfBirth, &fid,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrPassengerNotFound
        }
        return nil, err
    }
    p.FlightID = nullID(fid)
    return &p, nil
}

// SaveAssignment marks the seat occupied, links the passenger to the
// flight and inserts the boarding pass in a single transaction.  The seat
// update only matches a free seat, so a concurrent writer on another
// instance makes it fail with ErrConflict instead of double booking.
func (r *MySQLRepo) SaveAssignment(ctx context.Context, a Assignment) error {
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

    res, err := tx.ExecContext(ctx,
        `UPDATE seats SET is_occupied = 1, passenger_id = ? WHERE id = ? AND flight_id = ? AND is_occupied = 0`,
        a.PassengerID, a.SeatID, a.FlightID,
    )
    if err != nil {
        return fmt.Errorf("update seat: %w", err)
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return fmt.Errorf("seat %s: %w", a.SeatNumber, ErrConflict)
    }

    res, err = tx.ExecContext(ctx,
        `UPDATE passengers SET flight_id = ? WHERE id = ?`,
        a.FlightID, a.PassengerID,
    )
    if err != nil {
        return fmt.Errorf("update passenger: %w", err)
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return fmt.Errorf("passenger %d: %w", a.PassengerID, ErrPassengerNotFound)
    }

    if bp := a.BoardingPass; bp != nil {
        res, err = tx.ExecContext(ctx,
            `INSERT INTO boarding_passes
                (flight_id, passenger_id, seat_id, passenger_name, passport_number, flight_number,
                 destination, departure_time, gate, seat_number, check_in_time, boarding_group, bar_code)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
            bp.FlightID, bp.PassengerID, bp.SeatID, bp.PassengerName, bp.PassportNumber, bp.FlightNumber,
            bp.Destination, bp.DepartureTime, bp.Gate, bp.SeatNumber, bp.CheckInTime, bp.BoardingGroup, bp.BarCode,
        )
        if err != nil {
            return fmt.Errorf("insert boarding pass: %w", err)
        }
        id, err := res.LastInsertId()
        if err != nil {
            return err
        }
        bp.ID = uint64(id)
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// RevertAssignment undoes SaveAssignment.  Only rows still pointing at
// this passenger are touched.
func (r *MySQLRepo) RevertAssignment(ctx context.Context, a Assignment) error {
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

    if _, err := tx.ExecContext(ctx,
        `DELETE FROM boarding_passes WHERE passenger_id = ? AND seat_id = ?`,
        a.PassengerID, a.SeatID,
    ); err != nil {
        return fmt.Errorf("delete boarding pass: %w", err)
    }
    if _, err := tx.ExecContext(ctx,
        `UPDATE seats SET is_occupied = 0, passenger_id = NULL WHERE id = ? AND passenger_id = ?`,
        a.SeatID, a.PassengerID,
    ); err != nil {
        return fmt.Errorf("free seat: %w", err)
    }
    if _, err := tx.ExecContext(ctx,
        `UPDATE passengers SET flight_id = NULL WHERE id = ? AND flight_id = ?`,
        a.PassengerID, a.FlightID,
    ); err != nil {
        return fmt.Errorf("unlink passenger: %w", err)
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// SaveFlightStatus updates flights.status.
func (r *MySQLRepo) SaveFlightStatus(ctx context.Context, flightID uint64, status model.FlightStatus) error {
    res, err := r.db.ExecContext(ctx, `UPDATE flights SET status = ? WHERE id = ?`, string(status), flightID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // MySQL reports 0 affected rows when the value is unchanged, so
        // confirm the flight exists before failing.
        var one int
        if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM flights WHERE id = ?`, flightID).Scan(&one); err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                return fmt.Errorf("flight %d: %w", flightID, ErrNotFound)
            }
            return err
        }
    }
    return nil
}

// GetBoardingPassByPassenger returns ErrBoardingPassNotFound when the
// passenger has not been checked in.
func (r *MySQLRepo) GetBoardingPassByPassenger(ctx context.Context, passengerID uint64) (*model.BoardingPass, error) {
    const q = `SELECT id, flight_id, passenger_id, seat_id, passenger_name, passport_number, flight_number,
                      destination, departure_time, gate, seat_number, check_in_time, boarding_group, bar_code
               FROM boarding_passes WHERE passenger_id = ?`
    var bp model.BoardingPass
    err := r.db.QueryRowContext(ctx, q, passengerID).Scan(
        &bp.ID, &bp.FlightID, &bp.PassengerID, &bp.SeatID, &bp.PassengerName, &bp.PassportNumber, &bp.FlightNumber,
        &bp.Destination, &bp.DepartureTime, &bp.Gate, &bp.SeatNumber, &bp.CheckInTime, &bp.BoardingGroup, &bp.BarCode,
    )
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrBoardingPassNotFound
        }
        return nil, err
    }
    return &bp, nil
}

// SaveBaggage inserts a bag.  On success the bag's ID is populated.
func (r *MySQLRepo) SaveBaggage(ctx context.Context, b *model.Baggage) error {
    const q = `INSERT INTO baggage (passenger_id, flight_id, weight, barcode_number, check_in_time)
               VALUES (?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, b.PassengerID, b.FlightID, b.Weight, b.BarcodeNumber, b.CheckInTime)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    return nil
}

// ListBaggageByPassenger returns the passenger's bags in check-in order.
func (r *MySQLRepo) ListBaggageByPassenger(ctx context.Context, passengerID uint64) ([]model.Baggage, error) {
    const q = `SELECT id, passenger_id, flight_id, weight, barcode_number, check_in_time
               FROM baggage WHERE passenger_id = ? ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, passengerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    out := []model.Baggage{}
    for rows.Next() {
        var b model.Baggage
        if err := rows.Scan(&b.ID, &b.PassengerID, &b.FlightID, &b.Weight, &b.BarcodeNumber, &b.CheckInTime); err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

func nullID(v sql.NullInt64) *uint64 {
    if !v.Valid {
        return nil
    }
    id := uint64(v.Int64)
    return &id
}
