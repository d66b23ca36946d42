package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Letterpress store.
var Migrations = migrate.NewGroup("letterpress")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_letterpress_letters",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS letterpress_letters (
    id          TEXT PRIMARY KEY,
    account_id  TEXT NOT NULL DEFAULT '',
    reviewer_id TEXT NOT NULL DEFAULT '',
    type        TEXT NOT NULL DEFAULT '',
    subject     TEXT NOT NULL DEFAULT '',
    matter      TEXT NOT NULL DEFAULT '',
    resolution  TEXT NOT NULL DEFAULT '',
    sender      TEXT NOT NULL DEFAULT '{}',
    recipient   TEXT NOT NULL DEFAULT '{}',
    tone        TEXT NOT NULL DEFAULT '',
    priority    TEXT NOT NULL DEFAULT 'normal',
    status      TEXT NOT NULL DEFAULT 'draft',
    content     TEXT NOT NULL DEFAULT '',
    metadata    TEXT NOT NULL DEFAULT '{}',
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_letterpress_letters_account ON letterpress_letters (account_id);
CREATE INDEX IF NOT EXISTS idx_letterpress_letters_status ON letterpress_letters (account_id, status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS letterpress_letters`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_letterpress_events",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS letterpress_events (
    id          TEXT PRIMARY KEY,
    letter_id   TEXT NOT NULL DEFAULT '',
    from_status TEXT NOT NULL DEFAULT '',
    to_status   TEXT NOT NULL DEFAULT '',
    actor_id    TEXT NOT NULL DEFAULT '',
    note        TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_letterpress_events_letter ON letterpress_events (letter_id, created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS letterpress_events`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_letterpress_codes",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS letterpress_codes (
    id              TEXT PRIMARY KEY,
    code            TEXT NOT NULL DEFAULT '',
    partner_id      TEXT NOT NULL DEFAULT '',
    percentage      INTEGER NOT NULL DEFAULT 0,
    times_redeemed  INTEGER NOT NULL DEFAULT 0,
    max_redemptions INTEGER NOT NULL DEFAULT 0,
    expires_at      TEXT,
    active          INTEGER NOT NULL DEFAULT 1,
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_letterpress_codes_code ON letterpress_codes (code);
CREATE INDEX IF NOT EXISTS idx_letterpress_codes_partner ON letterpress_codes (partner_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS letterpress_codes`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_letterpress_usages",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS letterpress_usages (
    id                  TEXT PRIMARY KEY,
    code_id             TEXT NOT NULL DEFAULT '',
    account_id          TEXT NOT NULL DEFAULT '',
    partner_id          TEXT NOT NULL DEFAULT '',
    charge_cents        INTEGER NOT NULL DEFAULT 0,
    charge_currency     TEXT NOT NULL DEFAULT 'usd',
    discount_cents      INTEGER NOT NULL DEFAULT 0,
    discount_currency   TEXT NOT NULL DEFAULT 'usd',
    commission_cents    INTEGER NOT NULL DEFAULT 0,
    commission_currency TEXT NOT NULL DEFAULT 'usd',
    created_at          TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_letterpress_usages_partner ON letterpress_usages (partner_id, created_at);
CREATE INDEX IF NOT EXISTS idx_letterpress_usages_code ON letterpress_usages (code_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS letterpress_usages`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_letterpress_subscriptions",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS letterpress_subscriptions (
    id                TEXT PRIMARY KEY,
    account_id        TEXT NOT NULL DEFAULT '',
    plan_id           TEXT NOT NULL DEFAULT '',
    status            TEXT NOT NULL DEFAULT 'active',
    original_cents    INTEGER NOT NULL DEFAULT 0,
    original_currency TEXT NOT NULL DEFAULT 'usd',
    discount_cents    INTEGER NOT NULL DEFAULT 0,
    discount_currency TEXT NOT NULL DEFAULT 'usd',
    final_cents       INTEGER NOT NULL DEFAULT 0,
    final_currency    TEXT NOT NULL DEFAULT 'usd',
    usage_id          TEXT NOT NULL DEFAULT '',
    letter_credits    INTEGER NOT NULL DEFAULT 0,
    expires_at        TEXT,
    created_at        TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at        TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_letterpress_subs_account ON letterpress_subscriptions (account_id, status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS letterpress_subscriptions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_letterpress_points",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS letterpress_points (
    id         TEXT PRIMARY KEY,
    partner_id TEXT NOT NULL DEFAULT '',
    points     INTEGER NOT NULL DEFAULT 0,
    source     TEXT NOT NULL DEFAULT '',
    usage_id   TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_letterpress_points_partner ON letterpress_points (partner_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_letterpress_points_usage ON letterpress_points (usage_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS letterpress_points`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_letterpress_plans",
			Version: "20240101000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS letterpress_plans (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL DEFAULT '',
    slug           TEXT NOT NULL DEFAULT '',
    description    TEXT NOT NULL DEFAULT '',
    price_cents    INTEGER NOT NULL DEFAULT 0,
    price_currency TEXT NOT NULL DEFAULT 'usd',
    letter_credits INTEGER NOT NULL DEFAULT 0,
    period         TEXT NOT NULL DEFAULT 'monthly',
    status         TEXT NOT NULL DEFAULT 'active',
    created_at     TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_letterpress_plans_slug ON letterpress_plans (slug);
CREATE INDEX IF NOT EXISTS idx_letterpress_plans_status ON letterpress_plans (status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS letterpress_plans`)
				return err
			},
		},
	)
}
