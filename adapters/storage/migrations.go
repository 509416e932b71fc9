package storage

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
    id TEXT PRIMARY KEY,
    run_id TEXT,
    source TEXT,
    input_hash TEXT,
    min_support REAL NOT NULL,
    max_len INTEGER NOT NULL DEFAULT 0,
    metric TEXT NOT NULL,
    min_threshold REAL NOT NULL,
    baskets INTEGER NOT NULL DEFAULT 0,
    services INTEGER NOT NULL DEFAULT 0,
    itemsets INTEGER NOT NULL DEFAULT 0,
    rule_count INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rules (
    snapshot_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    antecedents TEXT NOT NULL,
    consequents TEXT NOT NULL,
    antecedent_support REAL NOT NULL,
    consequent_support REAL NOT NULL,
    support REAL NOT NULL,
    confidence REAL NOT NULL,
    lift REAL NOT NULL,
    leverage REAL NOT NULL,
    conviction REAL,
    zhangs_metric REAL NOT NULL,
    PRIMARY KEY (snapshot_id, position)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_input_hash ON snapshots(input_hash);
`
