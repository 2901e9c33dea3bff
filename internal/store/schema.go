package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS portfolios (
    record_key           TEXT PRIMARY KEY,
    total_funds          TEXT NOT NULL DEFAULT '',
    id_counter           INTEGER NOT NULL DEFAULT 0,
    saved_at             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS line_items (
    record_key           TEXT NOT NULL REFERENCES portfolios(record_key) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    item_id              TEXT NOT NULL,
    name                 TEXT NOT NULL DEFAULT '',
    amount               REAL NOT NULL DEFAULT 0,
    percentage           REAL NOT NULL DEFAULT 0,
    category             TEXT NOT NULL,
    color                TEXT NOT NULL,
    PRIMARY KEY (record_key, position)
);

CREATE INDEX IF NOT EXISTS idx_line_items_key ON line_items(record_key);
`
