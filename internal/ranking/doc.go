// Package ranking implements the popularity ranking engine for the
// discovery feed.
//
// Each ranking pass is purely functional over a snapshot of candidate
// posts: an engagement score (weighted likes, comments, bookmarks), a
// time factor (recency tiers plus short-window virality detection), and
// a quality bonus (content length, media, tags) combine into a single
// popularity score. Under-engaged candidates are dropped, the survivors
// are sorted, and the top N are returned as plain posts.
//
// Basic Usage:
//
//	engine := ranking.NewEngine(store, ranking.NewMetrics())
//	posts, err := engine.PopularPosts(ctx, 15, "Yazılım")
//
// Scores are recomputed on every call against the wall clock; nothing is
// persisted and no state is shared between calls, so concurrent ranking
// requests are safe.
//
// The weights and the qualification threshold are fixed package constants
// rather than per-call parameters. Comments outweigh bookmarks, which
// outweigh likes, reflecting the effort each interaction takes.
package ranking
