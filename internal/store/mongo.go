package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teknoblog/teknoblog/internal/post"
)

// PostsCollection is the MongoDB collection holding posts.
const PostsCollection = "posts"

// MongoStore implements ContentStore backed by MongoDB.
//
// Likes and bookmarks map onto $addToSet/$pull so set semantics are
// enforced server-side even under concurrent writers.
type MongoStore struct {
	posts *mongo.Collection
}

// NewMongoStore creates a MongoStore over the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		posts: db.Collection(PostsCollection),
	}
}

// EnsureIndexes creates the indexes the list queries depend on.
// Safe to call on every startup; index creation is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "bookmarks", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return storeFailure("ensure indexes", err)
	}
	return nil
}

// imageDoc is the stored form of post.Image.
type imageDoc struct {
	URL      string `bson:"url"`
	Position string `bson:"position,omitempty"`
}

// postDoc is the stored form of post.Post. Display metadata resolved from
// author profiles is intentionally absent: it is attached at read time.
type postDoc struct {
	ID        string     `bson:"_id"`
	Title     string     `bson:"title"`
	Content   string     `bson:"content"`
	AuthorID  string     `bson:"author_id"`
	Category  string     `bson:"category"`
	Tags      []string   `bson:"tags,omitempty"`
	ImageURL  string     `bson:"image_url,omitempty"`
	Images    []imageDoc `bson:"images,omitempty"`
	Likes     []string   `bson:"likes,omitempty"`
	Bookmarks []string   `bson:"bookmarks,omitempty"`
	Comments  int        `bson:"comments"`
	Status    string     `bson:"status"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

func toDoc(p *post.Post) *postDoc {
	images := make([]imageDoc, len(p.Images))
	for i, img := range p.Images {
		images[i] = imageDoc(img)
	}
	return &postDoc{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		Category:  p.Category,
		Tags:      p.Tags,
		ImageURL:  p.ImageURL,
		Images:    images,
		Likes:     p.Likes,
		Bookmarks: p.Bookmarks,
		Comments:  p.Comments,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func fromDoc(d *postDoc) *post.Post {
	images := make([]post.Image, len(d.Images))
	for i, img := range d.Images {
		images[i] = post.Image(img)
	}
	return &post.Post{
		ID:        d.ID,
		Title:     d.Title,
		Content:   d.Content,
		AuthorID:  d.AuthorID,
		Category:  d.Category,
		Tags:      d.Tags,
		ImageURL:  d.ImageURL,
		Images:    images,
		Likes:     d.Likes,
		Bookmarks: d.Bookmarks,
		Comments:  d.Comments,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// storeFailure wraps a driver error so callers can match ErrUnavailable
// while keeping the underlying cause in the chain.
func storeFailure(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrUnavailable, err))
}

// activeFilter narrows a query to active posts, optionally by category.
func activeFilter(category string) bson.D {
	filter := bson.D{{Key: "status", Value: post.StatusActive}}
	if category != "" && category != post.CategoryAll {
		filter = append(filter, bson.E{Key: "category", Value: category})
	}
	return filter
}

// ListByCreation returns up to limit active posts newest first. The
// category filter is pushed down into the query rather than applied after
// the fetch, so a filtered pool is never starved by unrelated posts.
func (s *MongoStore) ListByCreation(ctx context.Context, limit int, category string) ([]*post.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.posts.Find(ctx, activeFilter(category), opts)
	if err != nil {
		return nil, storeFailure("list posts", err)
	}
	return drainPosts(ctx, cursor)
}

// ListByAuthor returns up to limit posts by the given author, newest first.
func (s *MongoStore) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*post.Post, error) {
	return s.ListByAuthors(ctx, []string{authorID}, limit, "")
}

// ListByAuthors returns up to limit active posts by any of the given
// authors, newest first. Unlike the reference system there is no batch
// ceiling on the author list; a single $in query covers any size.
func (s *MongoStore) ListByAuthors(ctx context.Context, authorIDs []string, limit int, category string) ([]*post.Post, error) {
	if len(authorIDs) == 0 {
		return []*post.Post{}, nil
	}

	filter := activeFilter(category)
	filter = append(filter, bson.E{Key: "author_id", Value: bson.D{{Key: "$in", Value: authorIDs}}})

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeFailure("list posts by authors", err)
	}
	return drainPosts(ctx, cursor)
}

// ListBookmarkedBy returns up to limit active posts the user has
// bookmarked, newest first. Matching on the bookmarks array keeps the
// bookmark feed a single indexed query instead of a per-post fan-out.
func (s *MongoStore) ListBookmarkedBy(ctx context.Context, userID string, limit int) ([]*post.Post, error) {
	filter := activeFilter("")
	filter = append(filter, bson.E{Key: "bookmarks", Value: userID})

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeFailure("list bookmarked posts", err)
	}
	return drainPosts(ctx, cursor)
}

func drainPosts(ctx context.Context, cursor *mongo.Cursor) ([]*post.Post, error) {
	defer func() { _ = cursor.Close(ctx) }()

	var results []*post.Post
	for cursor.Next(ctx) {
		var doc postDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, storeFailure("decode post", err)
		}
		results = append(results, fromDoc(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, storeFailure("read posts", err)
	}
	if results == nil {
		results = []*post.Post{}
	}
	return results, nil
}

// GetByID retrieves a post by its ID.
func (s *MongoStore) GetByID(ctx context.Context, id string) (*post.Post, error) {
	var doc postDoc
	err := s.posts.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeFailure("get post", err)
	}
	return fromDoc(&doc), nil
}

// Create inserts a new post, assigning ID, timestamps, and default status.
func (s *MongoStore) Create(ctx context.Context, p *post.Post) error {
	now := time.Now()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = post.StatusActive
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.posts.InsertOne(ctx, toDoc(p)); err != nil {
		return storeFailure("create post", err)
	}
	return nil
}

// Update replaces the mutable content fields of an existing post.
func (s *MongoStore) Update(ctx context.Context, p *post.Post) error {
	images := make([]imageDoc, len(p.Images))
	for i, img := range p.Images {
		images[i] = imageDoc(img)
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: p.Title},
		{Key: "content", Value: p.Content},
		{Key: "category", Value: p.Category},
		{Key: "tags", Value: p.Tags},
		{Key: "image_url", Value: p.ImageURL},
		{Key: "images", Value: images},
		{Key: "updated_at", Value: time.Now()},
	}}}

	result, err := s.posts.UpdateOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, update)
	if err != nil {
		return storeFailure("update post", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	result, err := s.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return storeFailure("delete post", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus moves a post between lifecycle states.
func (s *MongoStore) SetStatus(ctx context.Context, id, status string) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: time.Now()},
	}}}

	result, err := s.posts.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return storeFailure("set post status", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Like adds userID to the post's like set.
func (s *MongoStore) Like(ctx context.Context, postID, userID string) error {
	return s.updateSet(ctx, postID, "$addToSet", "likes", userID)
}

// Unlike removes userID from the post's like set.
func (s *MongoStore) Unlike(ctx context.Context, postID, userID string) error {
	return s.updateSet(ctx, postID, "$pull", "likes", userID)
}

// Bookmark adds userID to the post's bookmark set.
func (s *MongoStore) Bookmark(ctx context.Context, postID, userID string) error {
	return s.updateSet(ctx, postID, "$addToSet", "bookmarks", userID)
}

// Unbookmark removes userID from the post's bookmark set.
func (s *MongoStore) Unbookmark(ctx context.Context, postID, userID string) error {
	return s.updateSet(ctx, postID, "$pull", "bookmarks", userID)
}

func (s *MongoStore) updateSet(ctx context.Context, postID, op, field, userID string) error {
	update := bson.D{{Key: op, Value: bson.D{{Key: field, Value: userID}}}}
	result, err := s.posts.UpdateOne(ctx, bson.D{{Key: "_id", Value: postID}}, update)
	if err != nil {
		return storeFailure("update engagement", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustCommentCount shifts the comment count by delta, clamping at zero
// server-side so concurrent decrements can never drive it negative.
func (s *MongoStore) AdjustCommentCount(ctx context.Context, postID string, delta int) error {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "comments", Value: bson.D{
			{Key: "$max", Value: bson.A{0, bson.D{
				{Key: "$add", Value: bson.A{
					bson.D{{Key: "$ifNull", Value: bson.A{"$comments", 0}}},
					delta,
				}},
			}}},
		}}}}},
	}

	result, err := s.posts.UpdateOne(ctx, bson.D{{Key: "_id", Value: postID}}, pipeline)
	if err != nil {
		return storeFailure("adjust comment count", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
