package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/poiesic/forumsync/core"
)

// PostsAfter returns posts modified strictly after since, oldest first.
func (s *Store) PostsAfter(ctx context.Context, since time.Time, limit int) ([]core.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, topic_id, board_id, author_uid, author, title, content,
		       posted_at, archived, created_at, updated_at
		FROM posts
		WHERE updated_at > ?
		ORDER BY updated_at ASC
		LIMIT ?`, toMicros(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// PostsAfterID returns posts with an id strictly greater than id, in id
// order. This is the backfill read path.
func (s *Store) PostsAfterID(ctx context.Context, id int64, limit int) ([]core.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, topic_id, board_id, author_uid, author, title, content,
		       posted_at, archived, created_at, updated_at
		FROM posts
		WHERE post_id > ?
		ORDER BY post_id ASC
		LIMIT ?`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func scanPosts(rows *sql.Rows) ([]core.Post, error) {
	var posts []core.Post
	for rows.Next() {
		var (
			p                              core.Post
			postedAt, createdAt, updatedAt int64
		)
		if err := rows.Scan(&p.PostID, &p.TopicID, &p.BoardID, &p.AuthorUID, &p.Author,
			&p.Title, &p.Content, &postedAt, &p.Archived, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.PostedAt = fromMicros(postedAt)
		p.CreatedAt = fromMicros(createdAt)
		p.UpdatedAt = fromMicros(updatedAt)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// PostVersionsAfter returns edit-history rows modified strictly after since,
// joined to the parent post for denormalized topic/board/author fields.
func (s *Store) PostVersionsAfter(ctx context.Context, since time.Time, limit int) ([]core.PostVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.version_id, h.post_id, h.title, h.content, h.edited_at, h.deleted,
		       h.created_at, h.updated_at,
		       p.topic_id, p.board_id, p.author_uid, p.author
		FROM posts_history h
		JOIN posts p ON p.post_id = h.post_id
		WHERE h.updated_at > ?
		ORDER BY h.updated_at ASC
		LIMIT ?`, toMicros(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []core.PostVersion
	for rows.Next() {
		var (
			v                              core.PostVersion
			editedAt, createdAt, updatedAt int64
		)
		if err := rows.Scan(&v.VersionID, &v.PostID, &v.Title, &v.Content, &editedAt, &v.Deleted,
			&createdAt, &updatedAt, &v.TopicID, &v.BoardID, &v.AuthorUID, &v.Author); err != nil {
			return nil, err
		}
		v.EditedAt = fromMicros(editedAt)
		v.CreatedAt = fromMicros(createdAt)
		v.UpdatedAt = fromMicros(updatedAt)
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// MeritsAfter returns merit awards modified strictly after since.
func (s *Store) MeritsAfter(ctx context.Context, since time.Time, limit int) ([]core.Merit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT merit_id, post_id, topic_id, amount, sender_uid, receiver_uid,
		       awarded_at, created_at, updated_at
		FROM merits
		WHERE updated_at > ?
		ORDER BY updated_at ASC
		LIMIT ?`, toMicros(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var merits []core.Merit
	for rows.Next() {
		var (
			m                               core.Merit
			awardedAt, createdAt, updatedAt int64
		)
		if err := rows.Scan(&m.MeritID, &m.PostID, &m.TopicID, &m.Amount, &m.SenderUID,
			&m.ReceiverUID, &awardedAt, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		m.AwardedAt = fromMicros(awardedAt)
		m.CreatedAt = fromMicros(createdAt)
		m.UpdatedAt = fromMicros(updatedAt)
		merits = append(merits, m)
	}
	return merits, rows.Err()
}

// TopicsAfter returns topics modified strictly after since.
func (s *Store) TopicsAfter(ctx context.Context, since time.Time, limit int) ([]core.Topic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT topic_id, first_post_id, board_id, author_uid, author, title,
		       posted_at, created_at, updated_at
		FROM topics
		WHERE updated_at > ?
		ORDER BY updated_at ASC
		LIMIT ?`, toMicros(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []core.Topic
	for rows.Next() {
		var (
			t                              core.Topic
			postedAt, createdAt, updatedAt int64
		)
		if err := rows.Scan(&t.TopicID, &t.FirstPostID, &t.BoardID, &t.AuthorUID, &t.Author,
			&t.Title, &postedAt, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		t.PostedAt = fromMicros(postedAt)
		t.CreatedAt = fromMicros(createdAt)
		t.UpdatedAt = fromMicros(updatedAt)
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// BoardsAfter returns boards modified strictly after since.
func (s *Store) BoardsAfter(ctx context.Context, since time.Time, limit int) ([]core.Board, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT board_id, name, parent_id, created_at, updated_at
		FROM boards
		WHERE updated_at > ?
		ORDER BY updated_at ASC
		LIMIT ?`, toMicros(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []core.Board
	for rows.Next() {
		var (
			b                    core.Board
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&b.BoardID, &b.Name, &b.ParentID, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		b.CreatedAt = fromMicros(createdAt)
		b.UpdatedAt = fromMicros(updatedAt)
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// AddressMentionsAfter returns address mentions modified strictly after since.
func (s *Store) AddressMentionsAfter(ctx context.Context, since time.Time, limit int) ([]core.AddressMention, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, coin, post_id, topic_id, board_id, author_uid, author,
		       mentioned_at, created_at, updated_at
		FROM posts_addresses
		WHERE updated_at > ?
		ORDER BY updated_at ASC
		LIMIT ?`, toMicros(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mentions []core.AddressMention
	for rows.Next() {
		var (
			m                                 core.AddressMention
			mentionedAt, createdAt, updatedAt int64
		)
		if err := rows.Scan(&m.Address, &m.Coin, &m.PostID, &m.TopicID, &m.BoardID,
			&m.AuthorUID, &m.Author, &mentionedAt, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		m.MentionedAt = fromMicros(mentionedAt)
		m.CreatedAt = fromMicros(createdAt)
		m.UpdatedAt = fromMicros(updatedAt)
		mentions = append(mentions, m)
	}
	return mentions, rows.Err()
}
