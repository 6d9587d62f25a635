package storage

// Schema DDL for the SQL backends. Both keep one row per saved snapshot and
// prune to the newest rows after each write.
const (
	createSnapshotsSQLite = `CREATE TABLE IF NOT EXISTS snapshots (
    snapshot_id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    content TEXT NOT NULL
);`

	createSnapshotsPostgres = `CREATE TABLE IF NOT EXISTS snapshots (
    snapshot_id TEXT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    content TEXT NOT NULL
)`
)

// Queries shared by the SQL backends, in database/sql (?) and pgx ($n)
// placeholder styles.
const (
	selectLatest = `SELECT content FROM snapshots ORDER BY snapshot_id DESC LIMIT 1`

	insertSnapshotSQLite = `INSERT INTO snapshots (snapshot_id, created_at, content) VALUES (?, ?, ?)`
	pruneSnapshotsSQLite = `DELETE FROM snapshots WHERE snapshot_id NOT IN (
    SELECT snapshot_id FROM snapshots ORDER BY snapshot_id DESC LIMIT ?
)`

	insertSnapshotPostgres = `INSERT INTO snapshots (snapshot_id, created_at, content) VALUES ($1, $2, $3)`
	pruneSnapshotsPostgres = `DELETE FROM snapshots WHERE snapshot_id NOT IN (
    SELECT snapshot_id FROM snapshots ORDER BY snapshot_id DESC LIMIT $1
)`
)
