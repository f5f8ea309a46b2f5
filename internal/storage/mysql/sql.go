package mysql

const upsertReservationSQL = `
INSERT INTO reservations
  (id, name, property_id, check_in, check_out, adults, num_rooms,
   original_rate_per_night, currency, cancellation_type, stay_type)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name                    = VALUES(name),
  property_id             = VALUES(property_id),
  check_in                = VALUES(check_in),
  check_out               = VALUES(check_out),
  adults                  = VALUES(adults),
  num_rooms               = VALUES(num_rooms),
  original_rate_per_night = VALUES(original_rate_per_night),
  currency                = VALUES(currency),
  cancellation_type       = VALUES(cancellation_type),
  stay_type               = VALUES(stay_type),
  updated_at              = CURRENT_TIMESTAMP
`

const deleteReservationSQL = `DELETE FROM reservations WHERE id = ?`

// Column order must match scanReservation.
const selectReservationCols = `
SELECT
  id,
  name,
  property_id,
  check_in,
  check_out,
  adults,
  num_rooms,
  original_rate_per_night,
  currency,
  cancellation_type,
  stay_type
FROM reservations`

const listReservationsSQL = selectReservationCols + `
ORDER BY check_in, created_at, id`

const getReservationSQL = selectReservationCols + `
WHERE id = ?`

// Runs are append-only; re-saving the same id replaces the report blob.
const insertRunSQL = `
INSERT INTO check_runs (id, started_at, finished_at, reports, cheaper)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  finished_at = VALUES(finished_at),
  reports     = VALUES(reports),
  cheaper     = VALUES(cheaper)
`

const latestRunSQL = `
SELECT id, started_at, finished_at, reports
FROM check_runs
ORDER BY started_at DESC, id DESC
LIMIT 1
`
