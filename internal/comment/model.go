// Package comment stores the comment bodies attached to posts. The
// denormalized comment count the ranking engine reads lives on the post
// itself; this package is the source of truth for the bodies.
package comment

import "time"

// Comment is a single comment on a post.
//
// Author display metadata is resolved from the author profile at read
// time, like the matching fields on a post, and never persisted here.
type Comment struct {
	ID       string `json:"id" bson:"_id"`
	PostID   string `json:"post_id" bson:"post_id"`
	AuthorID string `json:"author_id" bson:"author_id"`

	AuthorName     string `json:"author_name,omitempty" bson:"-"`
	AuthorUsername string `json:"author_username,omitempty" bson:"-"`
	AuthorAvatar   string `json:"author_avatar,omitempty" bson:"-"`

	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
