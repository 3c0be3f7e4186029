package storage

import (
	_ "github.com/lib/pq"
)

// postgresSchema es el equivalente Postgres/Supabase de sqliteSchema.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS bets (
    id            TEXT PRIMARY KEY,
    platform      TEXT             NOT NULL,
    user_id       TEXT             NOT NULL,
    market_id     TEXT             NOT NULL,
    question      TEXT,
    outcome       INTEGER          NOT NULL DEFAULT 0,
    outcome_label TEXT,
    amount        DOUBLE PRECISION NOT NULL,
    price         DOUBLE PRECISION NOT NULL,
    status        TEXT             NOT NULL DEFAULT 'pending',
    pnl           DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at    TEXT             NOT NULL,
    resolved_at   TEXT,
    UNIQUE (platform, user_id, market_id)
);

CREATE TABLE IF NOT EXISTS leaderboard_snapshots (
    id          INTEGER PRIMARY KEY CHECK (id = 1),
    payload     TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bets_status ON bets(status, platform, created_at);
CREATE INDEX IF NOT EXISTS idx_bets_user   ON bets(user_id);
`

var postgresMigrations = []string{
	"ALTER TABLE bets ADD COLUMN IF NOT EXISTS outcome_label TEXT",
}
