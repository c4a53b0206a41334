package ranking

import (
	"time"
	"unicode/utf8"

	"github.com/teknoblog/teknoblog/internal/post"
)

// Engagement weights. Fixed constants: a comment takes more effort than a
// bookmark, which takes more commitment than a like.
const (
	LikeWeight     = 1.0
	CommentWeight  = 2.5
	BookmarkWeight = 1.5
)

// MinEngagement is the qualification threshold. Candidates with an
// engagement score below it are excluded from the popular feed no matter
// how young or rich their content is.
const MinEngagement = 2.0

// Time factor tiers, from viral burst down to stale.
const (
	TimeFactorViral   = 2.0 // <= 6h old with >= 2 engagement/hour
	TimeFactorSurging = 1.8 // <= 12h old with >= 1 engagement/hour
	TimeFactorDay     = 1.5 // <= 1 day
	TimeFactorRecent  = 1.3 // <= 3 days
	TimeFactorWeek    = 1.1 // <= 7 days
	TimeFactorMonth   = 1.0 // <= 30 days
	TimeFactorStale   = 0.8 // older than 30 days
)

// Quality bonus components, added onto a 1.0 base. All applicable bonuses
// stack, unlike the time tiers.
const (
	LongContentBonus = 0.1
	MediaBonus       = 0.1
	TagBonus         = 0.05

	// LongContentChars is the content length at which the long-content
	// bonus applies.
	LongContentChars = 200
)

// Breakdown holds the derived scoring components for one candidate.
// It exists only for the duration of a ranking pass and is never exposed
// to callers or written back to the store.
type Breakdown struct {
	Engagement float64
	TimeFactor float64
	Quality    float64
	Popularity float64
}

// EngagementScore computes the weighted engagement sum for the given counts.
//
// Formula: likes*1.0 + comments*2.5 + bookmarks*1.5
func EngagementScore(likes, comments, bookmarks int) float64 {
	return float64(likes)*LikeWeight +
		float64(comments)*CommentWeight +
		float64(bookmarks)*BookmarkWeight
}

// TimeFactor computes the recency/virality multiplier for a post created at
// createdAt, evaluated at now with the given engagement score.
//
// The tiers cascade: the first matching condition wins and later, broader
// tiers are never consulted. The two leading tiers detect virality via
// engagement per hour; a post exactly at creation time (zero hours old)
// has its engagement rate treated as 0 to avoid division by zero.
//
// A zero createdAt is treated as maximally old and lands in the stale tier.
func TimeFactor(createdAt, now time.Time, engagement float64) float64 {
	if createdAt.IsZero() {
		return TimeFactorStale
	}

	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	days := hours / 24

	perHour := 0.0
	if hours > 0 {
		perHour = engagement / hours
	}

	switch {
	case hours <= 6 && perHour >= 2:
		return TimeFactorViral
	case hours <= 12 && perHour >= 1:
		return TimeFactorSurging
	case days <= 1:
		return TimeFactorDay
	case days <= 3:
		return TimeFactorRecent
	case days <= 7:
		return TimeFactorWeek
	case days <= 30:
		return TimeFactorMonth
	default:
		return TimeFactorStale
	}
}

// QualityBonus computes the additive content quality multiplier.
//
// Starts at 1.0; long content, media, and tags each add their bonus.
// Maximum value: 1.25.
func QualityBonus(contentLen int, hasMedia, hasTags bool) float64 {
	bonus := 1.0
	if contentLen >= LongContentChars {
		bonus += LongContentBonus
	}
	if hasMedia {
		bonus += MediaBonus
	}
	if hasTags {
		bonus += TagBonus
	}
	return bonus
}

// Score derives the full scoring breakdown for a post at the given
// evaluation time. The post is only read, never mutated.
func Score(p *post.Post, now time.Time) Breakdown {
	engagement := EngagementScore(p.LikeCount(), p.CommentCount(), p.BookmarkCount())
	timeFactor := TimeFactor(p.CreatedAt, now, engagement)
	// Content length is measured in characters, not bytes, so Turkish
	// text does not reach the long-content threshold early.
	quality := QualityBonus(utf8.RuneCountInString(p.Content), p.HasMedia(), p.HasTags())

	return Breakdown{
		Engagement: engagement,
		TimeFactor: timeFactor,
		Quality:    quality,
		Popularity: engagement * timeFactor * quality,
	}
}
