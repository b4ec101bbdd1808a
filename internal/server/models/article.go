package models

import "time"

type Article struct {
	ID         int64
	Title      string
	Content    string
	AuthorID   int64
	ThemeID    int64
	CreatedAt  time.Time
	CommentIDs []int64
}

// ArticleView is an Article enriched with its author's display name and
// its theme's title.
type ArticleView struct {
	Article
	AuthorName string
	ThemeTitle string
}

type Comment struct {
	ID        int64
	Content   string
	ArticleID int64
	UserID    int64
	CreatedAt time.Time
}

// CommentView adds the author's display name to a Comment.
type CommentView struct {
	Comment
	AuthorName string
}
