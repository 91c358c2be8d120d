package schema

// SchemaSQL contains the full database schema initialization script
const SchemaSQL = `
-- Event Store

CREATE TABLE IF NOT EXISTS events (
    event_id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    user_id TEXT NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL,
    attributes JSONB
);

CREATE INDEX IF NOT EXISTS idx_events_user ON events (user_id, occurred_at);
CREATE INDEX IF NOT EXISTS idx_events_type ON events (event_type, occurred_at);
CREATE INDEX IF NOT EXISTS idx_events_user_type ON events (user_id, event_type, occurred_at);

-- User State Projection

CREATE TABLE IF NOT EXISTS user_states (
    user_id TEXT PRIMARY KEY,
    points_by_category JSONB NOT NULL DEFAULT '{}',
    badges JSONB NOT NULL DEFAULT '[]',
    trophies JSONB NOT NULL DEFAULT '[]',
    level_by_category JSONB NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Rules

CREATE TABLE IF NOT EXISTS rules (
    rule_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    triggers JSONB NOT NULL,
    conditions JSONB,
    rewards JSONB,
    spendings JSONB
);

CREATE INDEX IF NOT EXISTS idx_rules_triggers ON rules USING GIN (triggers);

-- Entity Catalog

CREATE TABLE IF NOT EXISTS badges (
    badge_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    visible BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS trophies (
    trophy_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    visible BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS levels (
    level_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    visible BOOLEAN NOT NULL DEFAULT TRUE,
    category TEXT NOT NULL,
    min_points BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_levels_category ON levels (category, min_points);

CREATE TABLE IF NOT EXISTS point_categories (
    category_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    aggregation TEXT NOT NULL DEFAULT 'sum'
);

CREATE TABLE IF NOT EXISTS event_definitions (
    event_type TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    payload_schema JSONB
);

-- Wallet Ledger

CREATE TABLE IF NOT EXISTS wallet_transactions (
    tx_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    category_id TEXT NOT NULL,
    tx_type TEXT NOT NULL,
    amount BIGINT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    reference_id TEXT NOT NULL DEFAULT '',
    metadata JSONB,
    ts TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_wallet_tx_user_category ON wallet_transactions (user_id, category_id, ts);
CREATE INDEX IF NOT EXISTS idx_wallet_tx_window ON wallet_transactions (category_id, tx_type, ts);

-- Reference ids key idempotency: one ledger entry per
-- (user, category, reference, type) tuple.
CREATE UNIQUE INDEX IF NOT EXISTS uq_wallet_tx_reference
    ON wallet_transactions (user_id, category_id, reference_id, tx_type)
    WHERE reference_id <> '';

CREATE TABLE IF NOT EXISTS wallet_balances (
    user_id TEXT NOT NULL,
    category_id TEXT NOT NULL,
    balance BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, category_id)
);

CREATE INDEX IF NOT EXISTS idx_wallet_balances_category ON wallet_balances (category_id);

-- Reward History

CREATE TABLE IF NOT EXISTS reward_history (
    entry_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    reward_id TEXT NOT NULL DEFAULT '',
    reward_type TEXT NOT NULL,
    trigger_event_id TEXT NOT NULL,
    rule_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    awarded_at TIMESTAMPTZ NOT NULL,
    success BOOLEAN NOT NULL,
    message TEXT NOT NULL DEFAULT '',
    details JSONB
);

CREATE INDEX IF NOT EXISTS idx_reward_history_user ON reward_history (user_id, awarded_at DESC);
CREATE INDEX IF NOT EXISTS idx_reward_history_slot ON reward_history (trigger_event_id, rule_id, position);
CREATE INDEX IF NOT EXISTS idx_reward_history_type_window ON reward_history (reward_type, awarded_at);

-- Webhooks

CREATE TABLE IF NOT EXISTS webhooks (
    webhook_id TEXT PRIMARY KEY,
    url TEXT NOT NULL,
    event_types JSONB,
    secret TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
