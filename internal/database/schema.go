package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/iliyamo/airport-checkin/internal/repository"
)

// schema holds one statement per table; the driver runs a single
// statement per Exec.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS flights (
        id             BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
        flight_number  VARCHAR(16)  NOT NULL,
        destination    VARCHAR(128) NOT NULL,
        departure_time DATETIME     NOT NULL,
        gate           VARCHAR(16)  NOT NULL DEFAULT '',
        status         VARCHAR(16)  NOT NULL DEFAULT 'CheckingIn',
        total_seats    INT          NOT NULL DEFAULT 0,
        UNIQUE KEY uq_flight_number (flight_number)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS passengers (
        id              BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
        passport_number VARCHAR(32)  NOT NULL,
        first_name      VARCHAR(64)  NOT NULL,
        last_name       VARCHAR(64)  NOT NULL,
        email           VARCHAR(128) NOT NULL DEFAULT '',
        phone_number    VARCHAR(32)  NOT NULL DEFAULT '',
        nationality     VARCHAR(64)  NOT NULL DEFAULT '',
        date_of_birth   DATE         NOT NULL,
        flight_id       BIGINT UNSIGNED NULL,
        UNIQUE KEY uq_passport_number (passport_number),
        CONSTRAINT fk_passengers_flight FOREIGN KEY (flight_id) REFERENCES flights(id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS seats (
        id           BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
        flight_id    BIGINT UNSIGNED NOT NULL,
        seat_number  VARCHAR(8)  NOT NULL,
        class        VARCHAR(16) NOT NULL DEFAULT 'Economy',
        is_occupied  TINYINT(1)  NOT NULL DEFAULT 0,
        passenger_id BIGINT UNSIGNED NULL,
        UNIQUE KEY uq_flight_seat (flight_id, seat_number),
        UNIQUE KEY uq_seat_passenger (passenger_id),
        CONSTRAINT fk_seats_flight FOREIGN KEY (flight_id) REFERENCES flights(id),
        CONSTRAINT fk_seats_passenger FOREIGN KEY (passenger_id) REFERENCES passengers(id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS boarding_passes (
        id              BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
        flight_id       BIGINT UNSIGNED NOT NULL,
        passenger_id    BIGINT UNSIGNED NOT NULL,
        seat_id         BIGINT UNSIGNED NOT NULL,
        passenger_name  VARCHAR(128) NOT NULL,
        passport_number VARCHAR(32)  NOT NULL,
        flight_number   VARCHAR(16)  NOT NULL,
        destination     VARCHAR(128) NOT NULL,
        departure_time  DATETIME     NOT NULL,
        gate            VARCHAR(16)  NOT NULL,
        seat_number     VARCHAR(8)   NOT NULL,
        check_in_time   DATETIME     NOT NULL,
        boarding_group  VARCHAR(4)   NOT NULL,
        bar_code        VARCHAR(96)  NOT NULL,
        UNIQUE KEY uq_pass_passenger (passenger_id),
        UNIQUE KEY uq_pass_seat (seat_id),
        CONSTRAINT fk_pass_flight FOREIGN KEY (flight_id) REFERENCES flights(id),
        CONSTRAINT fk_pass_passenger FOREIGN KEY (passenger_id) REFERENCES passengers(id),
        CONSTRAINT fk_pass_seat FOREIGN KEY (seat_id) REFERENCES seats(id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS baggage (
        id             BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
        passenger_id   BIGINT UNSIGNED NOT NULL,
        flight_id      BIGINT UNSIGNED NOT NULL,
        weight         DECIMAL(5,2) NOT NULL,
        barcode_number VARCHAR(96)  NOT NULL,
        check_in_time  DATETIME     NOT NULL,
        INDEX idx_baggage_passenger (passenger_id),
        CONSTRAINT fk_baggage_passenger FOREIGN KEY (passenger_id) REFERENCES passengers(id),
        CONSTRAINT fk_baggage_flight FOREIGN KEY (flight_id) REFERENCES flights(id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

// Migrate creates any missing tables.  Existing tables are left alone.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Seed loads the demo inventory when the flights table is empty.  A seeded
// database is never touched again so restarts keep earlier check-ins.
func Seed(ctx context.Context, db *sql.DB, data repository.Seed) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flights`).Scan(&n); err != nil {
		return fmt.Errorf("seed: count flights: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, f := range data.Flights {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO flights (id, flight_number, destination, departure_time, gate, status, total_seats)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.FlightNumber, f.Destination, f.DepartureTime, f.Gate, string(f.Status), f.TotalSeats,
		); err != nil {
			return fmt.Errorf("seed flight %s: %w", f.FlightNumber, err)
		}
	}
	for _, p := range data.Passengers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO passengers (id, passport_number, first_name, last_name, email, phone_number, nationality, date_of_birth)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.PassportNumber, p.FirstName, p.LastName, p.Email, p.PhoneNumber, p.Nationality, p.DateOfBirth,
		); err != nil {
			return fmt.Errorf("seed passenger %s: %w", p.PassportNumber, err)
		}
	}
	if len(data.Seats) > 0 {
		// same bulk insert shape as the seat layout import
		query := `INSERT INTO seats (id, flight_id, seat_number, class) VALUES `
		args := make([]interface{}, 0, len(data.Seats)*4)
		for i, s := range data.Seats {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?)"
			args = append(args, s.ID, s.FlightID, s.SeatNumber, string(s.Class))
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed seats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	log.Printf("database: seeded %d flights, %d seats, %d passengers", len(data.Flights), len(data.Seats), len(data.Passengers))
	return nil
}
