package migration

// getAllMigrations retorna todas as migrações disponíveis
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_tasks",
			Up: `
				CREATE TABLE tasks (
					id UUID PRIMARY KEY,
					user_id VARCHAR(255) NOT NULL,
					title VARCHAR(500) NOT NULL,
					due_date VARCHAR(50) NOT NULL,
					duration VARCHAR(50) NOT NULL,
					category VARCHAR(100) NOT NULL,
					created_at TIMESTAMP DEFAULT NOW(),
					updated_at TIMESTAMP DEFAULT NOW()
				);

				CREATE INDEX idx_tasks_user_id ON tasks(user_id, created_at);
			`,
			Down: `DROP TABLE IF EXISTS tasks;`,
		},
		{
			Version: 2,
			Name:    "create_goals",
			Up: `
				CREATE TABLE goals (
					user_id VARCHAR(255) NOT NULL,
					category VARCHAR(100) NOT NULL,
					percent DOUBLE PRECISION NOT NULL CHECK (percent >= 0 AND percent <= 100),
					updated_at TIMESTAMP DEFAULT NOW(),
					PRIMARY KEY (user_id, category)
				);
			`,
			Down: `DROP TABLE IF EXISTS goals;`,
		},
		{
			Version: 3,
			Name:    "create_recommendation_history",
			Up: `
				CREATE TABLE recommendation_history (
					id SERIAL PRIMARY KEY,
					user_id VARCHAR(255) NOT NULL,
					recommendations JSONB NOT NULL,
					created_at TIMESTAMP DEFAULT NOW()
				);

				CREATE INDEX idx_recommendation_history_user ON recommendation_history(user_id, created_at DESC);
			`,
			Down: `DROP TABLE IF EXISTS recommendation_history;`,
		},
	}
}
