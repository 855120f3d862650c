package models

import "time"

// Like - лайк пользователя на посте, не больше одного на пару (пост, пользователь)
type Like struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    int64     `gorm:"uniqueIndex:likes_post_user_key" json:"post_id"`
	UserID    string    `gorm:"size:64;uniqueIndex:likes_post_user_key" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}
