// forumseed fills a relational store with a synthetic forum so the
// replication pipelines have something to chew on during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/poiesic/forumsync/core"
	"github.com/poiesic/forumsync/source/sqlite"
)

var sentences = []string{
	"Has anyone tried running a full node on a Raspberry Pi?",
	"The fee market did something strange again last night.",
	"I finally got my miner stable after swapping the power supply.",
	"This altcoin whitepaper reads like it was written in a weekend.",
	"Cold storage is the only storage worth trusting.",
	"My node fell three days behind and caught up in an hour.",
	"The difficulty adjustment this epoch surprised nobody.",
	"Remember to verify signatures before running any binary.",
	"The testnet faucet has been dry for a week now.",
	"Reorgs this deep deserve their own thread.",
	"I lost access to an old wallet and learned my lesson about backups.",
	"Hardware wallets are cheap compared to what they protect.",
	"The mempool cleared out overnight for the first time in months.",
	"Someone necro-bumped a thread from 2013 and it still holds up.",
	"Mixing up mainnet and testnet addresses is a rite of passage.",
	"The new release notes are worth reading top to bottom.",
	"Block propagation times improved noticeably after the upgrade.",
	"An exchange that asks for your private key is not an exchange.",
	"I merited this post because the math actually checks out.",
	"The signature campaign spam is getting out of hand again.",
}

var authors = []string{"satoshi_fan", "blockwatcher", "hexdump", "minerbob", "coldkey", "noderunner"}

var (
	dbPath = flag.String("db", "forum.db", "path to the relational store")
	topics = flag.Int("topics", 20, "number of topics to generate")
	posts  = flag.Int("posts", 10, "posts per topic")
	seed   = flag.Int64("seed", 1, "random seed")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	ctx := context.Background()

	store, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	rng := rand.New(rand.NewSource(*seed))
	base := time.Now().Add(-30 * 24 * time.Hour)

	if err := seedForum(ctx, store, rng, base); err != nil {
		panic(err)
	}

	slog.Info("seeded forum", "db", *dbPath, "topics", *topics, "postsPerTopic", *posts)
}

func seedForum(ctx context.Context, store *sqlite.Store, rng *rand.Rand, base time.Time) error {
	boards := []core.Board{
		{BoardID: 1, Name: "Bitcoin Discussion", UpdatedAt: base},
		{BoardID: 2, Name: "Mining", ParentID: 1, UpdatedAt: base},
		{BoardID: 3, Name: "Development & Technical Discussion", ParentID: 1, UpdatedAt: base},
	}
	if err := store.AddBoards(ctx, boards...); err != nil {
		return err
	}

	var postID, meritID int64
	for t := 1; t <= *topics; t++ {
		boardID := boards[rng.Intn(len(boards))].BoardID
		starter := authors[rng.Intn(len(authors))]
		starterUID := int64(100 + rng.Intn(900))
		topicStart := base.Add(time.Duration(t) * time.Hour)
		title := sentences[rng.Intn(len(sentences))]

		firstPostID := postID + 1
		topic := core.Topic{
			TopicID:     int64(t),
			FirstPostID: firstPostID,
			BoardID:     boardID,
			AuthorUID:   starterUID,
			Author:      starter,
			Title:       title,
			PostedAt:    topicStart,
			UpdatedAt:   topicStart,
		}
		if err := store.AddTopics(ctx, topic); err != nil {
			return err
		}

		for n := 0; n < *posts; n++ {
			postID++
			author := starter
			authorUID := starterUID
			if n > 0 {
				i := rng.Intn(len(authors))
				author = authors[i]
				authorUID = int64(100 + i)
			}
			when := topicStart.Add(time.Duration(n) * 10 * time.Minute)

			content := fmt.Sprintf("<div>%s</div>", sentences[rng.Intn(len(sentences))])
			if n > 0 && rng.Intn(3) == 0 {
				// Quote the topic starter the way forum markup renders it.
				content = fmt.Sprintf(
					`<div class="quoteheader"><a href="https://forum.example/index.php?topic=%d.msg%d#msg%d">Quote from: %s on %s</a></div>`+
						`<div class="quote">%s</div>%s`,
					t, firstPostID, firstPostID, starter,
					topicStart.Format("January 02, 2006, 03:04:05 PM"), title, content)
			}

			p := core.Post{
				PostID:    postID,
				TopicID:   int64(t),
				BoardID:   boardID,
				AuthorUID: authorUID,
				Author:    author,
				Title:     "Re: " + title,
				Content:   content,
				PostedAt:  when,
				UpdatedAt: when,
			}
			if n == 0 {
				p.Title = title
			}
			if err := store.AddPosts(ctx, p); err != nil {
				return err
			}

			if rng.Intn(4) == 0 {
				meritID++
				m := core.Merit{
					MeritID:     meritID,
					PostID:      postID,
					TopicID:     int64(t),
					Amount:      1 + rng.Intn(10),
					SenderUID:   int64(100 + rng.Intn(900)),
					ReceiverUID: authorUID,
					AwardedAt:   when.Add(time.Hour),
					UpdatedAt:   when.Add(time.Hour),
				}
				if err := store.AddMerits(ctx, m); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
