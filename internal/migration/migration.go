package migration

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/cleberrangel/timelyai-api/internal/logger"
)

// lockKey identifica o advisory lock das migrações; várias instâncias da API
// podem subir ao mesmo tempo
const lockKey = 0x54494d45 // "TIME"

// Migration é um passo versionado do schema
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Migrator aplica as migrações pendentes
type Migrator struct {
	db         *sql.DB
	migrations []Migration
}

// NewMigrator cria o migrator com as migrações embutidas
func NewMigrator(db *sql.DB) *Migrator {
	migrations := getAllMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return &Migrator{db: db, migrations: migrations}
}

// Run aplica, em ordem e cada uma em sua transação, as migrações ainda não
// registradas em schema_migrations
func (m *Migrator) Run(ctx context.Context) error {
	log := logger.Get(ctx)

	conn, err := m.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("erro ao obter conexão: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", lockKey); err != nil {
		return fmt.Errorf("erro ao obter lock de migração: %w", err)
	}
	defer conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", lockKey)

	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(255) NOT NULL DEFAULT '',
			applied_at TIMESTAMP DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("erro ao criar tabela de migrações: %w", err)
	}

	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return fmt.Errorf("erro ao ler migrações aplicadas: %w", err)
	}

	todo := pending(m.migrations, applied)
	if len(todo) == 0 {
		log.Debug().Int("applied", len(applied)).Msg("Schema atualizado")
		return nil
	}

	for _, mig := range todo {
		start := time.Now()
		if err := apply(ctx, conn, mig); err != nil {
			return fmt.Errorf("erro ao executar migração %d (%s): %w", mig.Version, mig.Name, err)
		}
		log.Info().
			Int("version", mig.Version).
			Str("name", mig.Name).
			Dur("took", time.Since(start)).
			Msg("Migração aplicada")
	}
	return nil
}

func appliedVersions(ctx context.Context, conn *sql.Conn) (map[int]bool, error) {
	rows, err := conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// pending retorna, na ordem de all, as migrações fora de applied
func pending(all []Migration, applied map[int]bool) []Migration {
	var out []Migration
	for _, m := range all {
		if !applied[m.Version] {
			out = append(out, m)
		}
	}
	return out
}

func apply(ctx context.Context, conn *sql.Conn, mig Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.Up); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)",
		mig.Version, mig.Name,
	); err != nil {
		return err
	}
	return tx.Commit()
}
