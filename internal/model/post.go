package model

import "time"

// Post is a single published post as stored.
//
// MediaURL points at an externally hosted image or video (Cloudinary).
// It may be empty. Likes are NOT embedded — they live in the likes table,
// keyed (post_id, user_id), so a user can never appear twice and the like
// count is always the row count.
type Post struct {
	ID        string    `json:"id"        db:"id"`
	AuthorID  string    `json:"authorId"  db:"author_id"`
	Content   string    `json:"content"   db:"content"`
	MediaURL  string    `json:"mediaUrl"  db:"media_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// PostWithAuthor is a post joined with its author's public fields.
// This is what the repository's feed queries return — the join happens in
// SQL, not by re-fetching each author afterwards.
type PostWithAuthor struct {
	Post
	Author Author
}

// FeedPost is a post annotated for a specific viewer: whether THEY liked it
// and how many likes it has in total. This is the shape the API returns.
type FeedPost struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	MediaURL   string    `json:"mediaUrl,omitempty"`
	Author     Author    `json:"author"`
	LikesCount int       `json:"likesCount"`
	IsLiked    bool      `json:"isLiked"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FeedPage is one window of the feed.
// HasMore is true when further pages exist: skip + len(Posts) < Total.
type FeedPage struct {
	Posts   []FeedPost `json:"posts"`
	Total   int        `json:"total"`
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
	HasMore bool       `json:"hasMore"`
}
