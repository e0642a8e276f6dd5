package storage

var pgMigration = []string{
	`CREATE TABLE run (
id uuid PRIMARY KEY,
query TEXT NOT NULL,
created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE video (
id uuid PRIMARY KEY,
run_id uuid NOT NULL REFERENCES run(id) ON DELETE CASCADE,
position INTEGER NOT NULL,
youtube_id VARCHAR(255) NOT NULL,
title TEXT NOT NULL,
description TEXT NOT NULL,
channel_title TEXT NOT NULL,
published_at VARCHAR(255) NOT NULL,
url VARCHAR(255) NOT NULL,
UNIQUE (run_id, youtube_id)
)`,
	`ALTER TABLE video
ADD COLUMN keyword_tags TEXT,
ADD COLUMN category_id VARCHAR(255),
ADD COLUMN duration VARCHAR(255),
ADD COLUMN duration_formatted VARCHAR(255),
ADD COLUMN view_count BIGINT,
ADD COLUMN comment_count BIGINT,
ADD COLUMN recording_location TEXT,
ADD COLUMN topics TEXT`,
	`ALTER TABLE video
ADD COLUMN captions_available BOOLEAN,
ADD COLUMN caption_text TEXT`,
}
