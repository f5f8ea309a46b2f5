package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidReservation = errors.New("invalid reservation")
	ErrInvalidRate        = errors.New("invalid rate record")
	ErrCheckRunning       = errors.New("check already running")
	ErrNoReservations     = errors.New("no reservations configured")
)
