package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS spreadsheets (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	project        TEXT NOT NULL DEFAULT '',
	type           TEXT NOT NULL DEFAULT 'outros'
	               CHECK(type IN ('embalagem_primaria', 'outros')),
	imported_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	total_rows     INTEGER NOT NULL DEFAULT 0,
	completed_rows INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tasks (
	id               TEXT PRIMARY KEY,
	sheet_id         TEXT NOT NULL REFERENCES spreadsheets(id) ON DELETE CASCADE,
	number           INTEGER NOT NULL,
	classification   TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT '',
	phase            TEXT NOT NULL DEFAULT '',
	condition        TEXT NOT NULL DEFAULT '',
	name             TEXT NOT NULL,
	duration_days    INTEGER NOT NULL DEFAULT 1 CHECK(duration_days >= 1),
	percent          INTEGER NOT NULL DEFAULT 0 CHECK(percent BETWEEN 0 AND 100),
	start_date       DATETIME,
	end_date         DATETIME,
	deadline         DATETIME,
	delay_days       INTEGER NOT NULL DEFAULT 0,
	responsible_id   TEXT NOT NULL DEFAULT '',
	responsible_name TEXT NOT NULL DEFAULT '',
	how_to           TEXT NOT NULL DEFAULT '',
	reference_url    TEXT NOT NULL DEFAULT '',
	project_name     TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(sheet_id, number)
);

CREATE TABLE IF NOT EXISTS notifications (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL DEFAULT 'info'
	            CHECK(type IN ('info', 'success', 'warning', 'error')),
	category    TEXT NOT NULL DEFAULT 'system'
	            CHECK(category IN ('event', 'system', 'task')),
	read        INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	ref         TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_sheet_id ON tasks(sheet_id);
CREATE INDEX IF NOT EXISTS idx_tasks_responsible ON tasks(responsible_name);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);

CREATE INDEX IF NOT EXISTS idx_notifications_ref
	ON notifications(ref) WHERE ref != '';

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE TABLE IF NOT EXISTS events (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	date          DATETIME NOT NULL,
	time          TEXT NOT NULL DEFAULT '',
	type          TEXT NOT NULL DEFAULT 'other'
	              CHECK(type IN ('meeting', 'deadline', 'review', 'other')),
	description   TEXT NOT NULL DEFAULT '',
	duration_days INTEGER NOT NULL DEFAULT 1 CHECK(duration_days >= 1),
	progress      INTEGER NOT NULL DEFAULT 0 CHECK(progress BETWEEN 0 AND 100),
	priority      TEXT NOT NULL DEFAULT 'medium'
	              CHECK(priority IN ('low', 'medium', 'high')),
	dependencies  TEXT NOT NULL DEFAULT '[]',
	task_id       TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);

CREATE TABLE IF NOT EXISTS team_members (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	role            TEXT NOT NULL DEFAULT '',
	team            TEXT NOT NULL DEFAULT '',
	email           TEXT NOT NULL DEFAULT '',
	phone           TEXT NOT NULL DEFAULT '',
	location        TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'active'
	                CHECK(status IN ('active', 'inactive', 'vacation')),
	tasks_completed INTEGER NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_team_members_name ON team_members(name);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}
