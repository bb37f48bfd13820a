package store

// Schema DDL. Identities are opaque uuid strings, timestamps RFC3339Nano
// text. Referential integrity between the tables is contractual (the
// repos delete children before parents), not enforced with FOREIGN KEY
// clauses, so stale references affect zero rows instead of failing.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS exercise (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		body_part TEXT NOT NULL DEFAULT '',
		primary_muscles TEXT NOT NULL DEFAULT '',
		secondary_muscles TEXT NOT NULL DEFAULT '',
		equipment TEXT NOT NULL DEFAULT '',
		custom INTEGER NOT NULL DEFAULT 0
	);`,

	`CREATE TABLE IF NOT EXISTS routine (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS routine_exercise (
		id TEXT PRIMARY KEY,
		routine_id TEXT NOT NULL,
		exercise_id TEXT NOT NULL,
		order_index INTEGER NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS routine_set (
		id TEXT PRIMARY KEY,
		routine_exercise_id TEXT NOT NULL,
		reps INTEGER,
		weight REAL
	);`,

	`CREATE TABLE IF NOT EXISTS workout_session (
		id TEXT PRIMARY KEY,
		routine_id TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS workout_item (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		exercise_id TEXT NOT NULL,
		name TEXT NOT NULL,
		body_part TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS workout_set (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL,
		reps INTEGER,
		weight REAL,
		done INTEGER NOT NULL DEFAULT 0
	);`,

	`CREATE INDEX IF NOT EXISTS idx_routine_exercise_routine ON routine_exercise (routine_id);`,
	`CREATE INDEX IF NOT EXISTS idx_routine_set_rex ON routine_set (routine_exercise_id);`,
	`CREATE INDEX IF NOT EXISTS idx_workout_item_session ON workout_item (session_id);`,
	`CREATE INDEX IF NOT EXISTS idx_workout_set_item ON workout_set (item_id);`,
}
