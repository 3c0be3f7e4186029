package storage

// sqlite.go: schema del dialecto SQLite (modernc, pure Go, sin CGo).
//
//   - `bets`: una fila por apuesta simulada. (platform, user_id, market_id) es único:
//     un usuario apuesta una sola vez por mercado.
//   - `leaderboard_snapshots`: una única fila (id = 1) con el último leaderboard
//     unificado en JSON, para arrancar en caliente.
//   - Timestamps como TEXT con ancho fijo (ver timeLayout), igual en ambos dialectos.

import (
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS bets (
    id            TEXT PRIMARY KEY,
    platform      TEXT    NOT NULL,
    user_id       TEXT    NOT NULL,
    market_id     TEXT    NOT NULL,
    question      TEXT,
    outcome       INTEGER NOT NULL DEFAULT 0,
    outcome_label TEXT,
    amount        REAL    NOT NULL,
    price         REAL    NOT NULL,
    status        TEXT    NOT NULL DEFAULT 'pending',
    pnl           REAL    NOT NULL DEFAULT 0,
    created_at    TEXT    NOT NULL,
    resolved_at   TEXT,
    UNIQUE (platform, user_id, market_id)
);

CREATE TABLE IF NOT EXISTS leaderboard_snapshots (
    id          INTEGER PRIMARY KEY CHECK (id = 1),
    payload     TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bets_status  ON bets(status, platform, created_at);
CREATE INDEX IF NOT EXISTS idx_bets_user    ON bets(user_id);
`

// sqliteMigrations añade columnas que pueden faltar en schemas antiguos.
var sqliteMigrations = []string{
	"ALTER TABLE bets ADD COLUMN outcome_label TEXT",
}
