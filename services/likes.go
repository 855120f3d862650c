package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"chirp/db"
	"chirp/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeService struct{}

func NewLikeService() *LikeService {
	return &LikeService{}
}

// CountByPost считает лайки поста
func (ls *LikeService) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// postExists проверяет, что целевой пост существует; лайк несуществующего
// поста не должен молча ложиться в хранилище
func (ls *LikeService) postExists(ctx context.Context, postID int64) error {
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check post existence: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	return nil
}

// Create ставит лайк; повторный лайк той же пары - ошибка уникальности
func (ls *LikeService) Create(ctx context.Context, postID int64, userID string) (*models.Like, error) {
	if err := ls.postExists(ctx, postID); err != nil {
		return nil, err
	}

	like := &models.Like{
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	err := db.GetWriteDB(ctx).Create(like).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: post %d", ErrAlreadyLiked, postID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create like: %w", err)
	}

	go ls.notifyAuthor(postID, userID)
	return like, nil
}

// Delete снимает лайк; отсутствующий лайк - ошибка
func (ls *LikeService) Delete(ctx context.Context, postID int64, userID string) error {
	trx := db.GetWriteDB(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if trx.Error != nil {
		return fmt.Errorf("failed to delete like: %w", trx.Error)
	}
	if trx.RowsAffected == 0 {
		return fmt.Errorf("%w: post %d", ErrNotLiked, postID)
	}
	return nil
}

// SetLiked приводит лайк к целевому состоянию. Идемпотентна: повторный вызов
// с тем же liked ничего не меняет. Клиент передает желаемое состояние,
// а не текущее - инверсия на сервере намеренно отсутствует.
func (ls *LikeService) SetLiked(ctx context.Context, postID int64, userID string, liked bool) error {
	if err := ls.postExists(ctx, postID); err != nil {
		return err
	}

	if !liked {
		trx := db.GetWriteDB(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if trx.Error != nil {
			return fmt.Errorf("failed to remove like: %w", trx.Error)
		}
		return nil
	}

	like := &models.Like{
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	trx := db.GetWriteDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(like)
	if trx.Error != nil {
		return fmt.Errorf("failed to set like: %w", trx.Error)
	}

	if trx.RowsAffected > 0 {
		go ls.notifyAuthor(postID, userID)
	}
	return nil
}

// notifyAuthor шлет автору поста короткое уведомление о новом лайке
func (ls *LikeService) notifyAuthor(postID int64, userID string) {
	ctx := context.Background()

	var post models.Post
	if err := db.GetReadOnlyDB(ctx).First(&post, postID).Error; err != nil {
		log.Printf("WARN: failed to load post %d for like notification: %v", postID, err)
		return
	}
	if post.AuthorID == userID {
		return
	}

	var liker models.User
	likerName := "Someone"
	if err := db.GetReadOnlyDB(ctx).First(&liker, "id = ?", userID).Error; err == nil && liker.Username != "" {
		likerName = liker.Username
	}

	if err := SendWsNotify(post.AuthorID, "like", fmt.Sprintf("%s liked your chirp", likerName)); err != nil {
		log.Printf("WARN: failed to send like notification: %v", err)
	}
}
