package storage

import (
	"context"
	"database/sql"
	"fmt"

	"ewintr.nl/ytcollect/model"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type PostgresInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

func (pi PostgresInfo) ConnString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", pi.Host, pi.Port, pi.User, pi.Password, pi.Database)
}

func ConnectPostgres(pgInfo PostgresInfo) (*sql.DB, error) {
	db, err := sql.Open("postgres", pgInfo.ConnString())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) (*Postgres, error) {
	p := &Postgres{db: db}
	if err := p.migrate(pgMigration); err != nil {
		return &Postgres{}, err
	}

	return p, nil
}

func (p *Postgres) Name() string {
	return "postgres"
}

// Save stores the run and all its rows in one transaction.
func (p *Postgres) Save(ctx context.Context, ds model.Dataset) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO run (id, query) VALUES ($1, $2)`, ds.RunID.String(), ds.Query); err != nil {
		return fmt.Errorf("could not save run: %w", err)
	}

	query := `INSERT INTO video
(id, run_id, position, youtube_id, title, description, channel_title, published_at, url,
keyword_tags, category_id, duration, duration_formatted, view_count, comment_count, recording_location, topics,
captions_available, caption_text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	for i, row := range ds.Rows {
		var (
			tags, category, duration, formatted, location, topics *string
			views, comments                                       *int64
			available                                             *bool
			text                                                  *string
		)
		if d := row.Detail; d != nil {
			tags, topics = &d.Tags, &d.Topics
			category, duration, location = d.CategoryID, d.Duration, d.Location
			formatted = &d.FormattedDuration
			views, comments = toInt64(d.ViewCount), toInt64(d.CommentCount)
		}
		if tr := row.Transcript; tr != nil {
			available = &tr.Available
			text = tr.Text
		}

		if _, err := tx.ExecContext(ctx, query,
			uuid.New().String(), ds.RunID.String(), i, string(row.YoutubeID),
			row.Title, row.Description, row.ChannelTitle, row.PublishedAt, row.URL,
			tags, category, duration, formatted, views, comments, location, topics,
			available, text,
		); err != nil {
			return fmt.Errorf("could not save video %s: %w", row.YoutubeID, err)
		}
	}

	return tx.Commit()
}

func toInt64(c *uint64) *int64 {
	if c == nil {
		return nil
	}
	v := int64(*c)
	return &v
}

func (p *Postgres) migrate(wanted []string) error {
	query := `CREATE TABLE IF NOT EXISTS migration
("id" SERIAL PRIMARY KEY, "query" TEXT)`
	_, err := p.db.Exec(query)
	if err != nil {
		return err
	}

	// find existing
	rows, err := p.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}

	existing := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return err
		}
		existing = append(existing, query)
	}
	rows.Close()

	// compare
	missing, err := compareMigrations(wanted, existing)
	if err != nil {
		return err
	}

	// execute missing
	for _, query := range missing {
		if _, err := p.db.Exec(query); err != nil {
			return err
		}

		// register
		if _, err := p.db.Exec(`
INSERT INTO migration
(query) VALUES ($1)
`, query); err != nil {
			return err
		}
	}

	return nil
}

func compareMigrations(wanted, existing []string) ([]string, error) {
	needed := []string{}
	if len(wanted) < len(existing) {
		return []string{}, fmt.Errorf("not enough migrations")
	}

	for i, want := range wanted {
		switch {
		case i >= len(existing):
			needed = append(needed, want)
		case want == existing[i]:
			// do nothing
		case want != existing[i]:
			return []string{}, fmt.Errorf("incompatible migration: %v", want)
		}
	}

	return needed, nil
}
