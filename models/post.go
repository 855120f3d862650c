package models

import "time"

// Post - чирп. ReplyingTo = 0 означает пост верхнего уровня,
// иначе это ответ на пост с указанным ID. Посты неизменяемы после создания.
type Post struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID   string    `gorm:"size:64;index" json:"author_id"`
	Content    string    `gorm:"type:text" json:"content"`
	ReplyingTo int64     `gorm:"index;default:0" json:"replying_to"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// PostView - пост с данными автора и счетчиками для выдачи в API
type PostView struct {
	ID           int64     `json:"id"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	Content      string    `json:"content"`
	ReplyingTo   int64     `json:"replying_to,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LikeCount    int64     `json:"like_count"`
	ReplyCount   int64     `json:"reply_count"`
	LikedByMe    bool      `json:"liked_by_me"`
}
