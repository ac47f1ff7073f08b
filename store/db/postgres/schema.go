package postgres

// schema is the full database schema. Statements are idempotent so a partial
// migration can be retried.
const schema = `
CREATE TABLE IF NOT EXISTS conversation (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	user_id INTEGER,
	session_id TEXT,
	title TEXT,
	status TEXT NOT NULL DEFAULT 'active',
	metadata JSONB,
	last_message_ts BIGINT,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversation_user_status ON conversation (user_id, status);
CREATE INDEX IF NOT EXISTS idx_conversation_session_status ON conversation (session_id, status);

CREATE TABLE IF NOT EXISTS message (
	id SERIAL PRIMARY KEY,
	conversation_id INTEGER NOT NULL REFERENCES conversation (id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	metadata JSONB,
	parent_message_id INTEGER REFERENCES message (id) ON DELETE SET NULL,
	tokens_used INTEGER,
	processing_time_ms INTEGER,
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_message_conversation_created ON message (conversation_id, created_ts);
CREATE INDEX IF NOT EXISTS idx_message_role ON message (role);

CREATE TABLE IF NOT EXISTS tool_execution (
	id SERIAL PRIMARY KEY,
	message_id INTEGER NOT NULL REFERENCES message (id) ON DELETE CASCADE,
	tool_name TEXT NOT NULL,
	arguments JSONB NOT NULL DEFAULT '{}',
	result JSONB,
	execution_time_ms INTEGER,
	status TEXT NOT NULL DEFAULT 'pending',
	error_message TEXT,
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tool_execution_message ON tool_execution (message_id);
CREATE INDEX IF NOT EXISTS idx_tool_execution_status ON tool_execution (status);

CREATE TABLE IF NOT EXISTS category (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	description TEXT,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS product (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	price DOUBLE PRECISION NOT NULL,
	discount DOUBLE PRECISION NOT NULL DEFAULT 0,
	category_id INTEGER REFERENCES category (id) ON DELETE SET NULL,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_product_category ON product (category_id);
CREATE INDEX IF NOT EXISTS idx_product_name ON product (name);
`
