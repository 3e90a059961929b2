package postgresql

// migrations returns the ordered schema migrations for the automation store.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS triggers (
				id UUID PRIMARY KEY,
				project_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				event_source VARCHAR(64) NOT NULL,
				status VARCHAR(32) NOT NULL DEFAULT 'inactive',
				filter JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_triggers_project_source
				ON triggers (project_id, event_source)
				WHERE deleted_at IS NULL;

			CREATE TABLE IF NOT EXISTS actions (
				id UUID PRIMARY KEY,
				project_id VARCHAR(255) NOT NULL,
				type VARCHAR(32) NOT NULL,
				config JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS automations (
				id UUID PRIMARY KEY,
				project_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				trigger_id UUID NOT NULL REFERENCES triggers (id),
				action_id UUID NOT NULL REFERENCES actions (id),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_automations_trigger
				ON automations (trigger_id);

			CREATE TABLE IF NOT EXISTS executions (
				id UUID PRIMARY KEY,
				project_id VARCHAR(255) NOT NULL,
				automation_id UUID NOT NULL,
				trigger_id UUID NOT NULL,
				action_id UUID NOT NULL,
				status VARCHAR(32) NOT NULL DEFAULT 'pending',
				source_id VARCHAR(255) NOT NULL,
				input JSONB NOT NULL DEFAULT '{}',
				error TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				finished_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_executions_project
				ON executions (project_id, created_at DESC);
		`,
	}
}
