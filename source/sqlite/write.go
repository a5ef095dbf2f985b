package sqlite

import (
	"context"

	"github.com/poiesic/forumsync/core"
)

// The write side belongs to the scraping layer; these helpers exist so tests
// and the local seeder can populate a database with the same schema.

// AddPosts inserts or replaces posts.
func (s *Store) AddPosts(ctx context.Context, posts ...core.Post) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT OR REPLACE INTO posts
			(post_id, topic_id, board_id, author_uid, author, title, content,
			 posted_at, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range posts {
		if _, err := stmt.ExecContext(ctx, p.PostID, p.TopicID, p.BoardID, p.AuthorUID,
			p.Author, p.Title, p.Content, toMicros(p.PostedAt), p.Archived,
			toMicros(p.CreatedAt), toMicros(p.UpdatedAt)); err != nil {
			return err
		}
	}
	return nil
}

// AddPostVersions inserts edit-history rows. A zero VersionID lets the
// database assign the next one.
func (s *Store) AddPostVersions(ctx context.Context, versions ...core.PostVersion) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT OR REPLACE INTO posts_history
			(version_id, post_id, title, content, edited_at, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range versions {
		var versionID any
		if v.VersionID != 0 {
			versionID = v.VersionID
		}
		if _, err := stmt.ExecContext(ctx, versionID, v.PostID, v.Title, v.Content,
			toMicros(v.EditedAt), v.Deleted, toMicros(v.CreatedAt), toMicros(v.UpdatedAt)); err != nil {
			return err
		}
	}
	return nil
}

// AddMerits inserts or replaces merit awards.
func (s *Store) AddMerits(ctx context.Context, merits ...core.Merit) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT OR REPLACE INTO merits
			(merit_id, post_id, topic_id, amount, sender_uid, receiver_uid,
			 awarded_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range merits {
		if _, err := stmt.ExecContext(ctx, m.MeritID, m.PostID, m.TopicID, m.Amount,
			m.SenderUID, m.ReceiverUID, toMicros(m.AwardedAt),
			toMicros(m.CreatedAt), toMicros(m.UpdatedAt)); err != nil {
			return err
		}
	}
	return nil
}

// AddTopics inserts or replaces topics.
func (s *Store) AddTopics(ctx context.Context, topics ...core.Topic) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT OR REPLACE INTO topics
			(topic_id, first_post_id, board_id, author_uid, author, title,
			 posted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range topics {
		if _, err := stmt.ExecContext(ctx, t.TopicID, t.FirstPostID, t.BoardID, t.AuthorUID,
			t.Author, t.Title, toMicros(t.PostedAt), toMicros(t.CreatedAt), toMicros(t.UpdatedAt)); err != nil {
			return err
		}
	}
	return nil
}

// AddBoards inserts or replaces boards.
func (s *Store) AddBoards(ctx context.Context, boards ...core.Board) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT OR REPLACE INTO boards
			(board_id, name, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range boards {
		if _, err := stmt.ExecContext(ctx, b.BoardID, b.Name, b.ParentID,
			toMicros(b.CreatedAt), toMicros(b.UpdatedAt)); err != nil {
			return err
		}
	}
	return nil
}

// AddAddressMentions inserts or replaces address mentions.
func (s *Store) AddAddressMentions(ctx context.Context, mentions ...core.AddressMention) error {
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT OR REPLACE INTO posts_addresses
			(address, coin, post_id, topic_id, board_id, author_uid, author,
			 mentioned_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range mentions {
		if _, err := stmt.ExecContext(ctx, m.Address, m.Coin, m.PostID, m.TopicID, m.BoardID,
			m.AuthorUID, m.Author, toMicros(m.MentionedAt), toMicros(m.CreatedAt), toMicros(m.UpdatedAt)); err != nil {
			return err
		}
	}
	return nil
}
