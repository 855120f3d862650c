package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"chirp/db"
	"chirp/models"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

const (
	// MaxPostsPerQuery - жесткий потолок любой выборки постов
	MaxPostsPerQuery = 100

	timelineCacheKey = "timeline:top"
	timelineCacheTTL = 30 * time.Second
)

type PostService struct{}

func NewPostService() *PostService {
	return &PostService{}
}

// postRow - сырая строка выборки; имя автора приходит через LEFT JOIN
// и может отсутствовать при нарушении целостности данных
type postRow struct {
	ID           int64
	AuthorID     string
	AuthorName   sql.NullString
	AuthorAvatar sql.NullString
	Content      string
	ReplyingTo   int64
	CreatedAt    time.Time
	LikeCount    int64
	ReplyCount   int64
	LikedByMe    int64
}

// baseQuery собирает пост с автором, счетчиками лайков/ответов
// и флагом "лайкнуто смотрящим" одним запросом
func (ps *PostService) baseQuery(ctx context.Context, viewerID string) *gorm.DB {
	return db.GetReadOnlyDB(ctx).
		Table("posts p").
		Select(`p.id, p.author_id, u.username AS author_name, u.profile_image_url AS author_avatar,
			p.content, p.replying_to, p.created_at,
			(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS like_count,
			(SELECT COUNT(*) FROM posts r WHERE r.replying_to = p.id) AS reply_count,
			(SELECT COUNT(*) FROM likes lm WHERE lm.post_id = p.id AND lm.user_id = ?) AS liked_by_me`, viewerID).
		Joins(`LEFT JOIN users u ON p.author_id = u.id`)
}

func rowToView(r postRow) (models.PostView, error) {
	// Пост без автора или автор без имени - битые данные, а не ошибка запроса
	if !r.AuthorName.Valid || r.AuthorName.String == "" {
		return models.PostView{}, fmt.Errorf("%w: post %d", ErrAuthorMissing, r.ID)
	}
	return models.PostView{
		ID:           r.ID,
		AuthorID:     r.AuthorID,
		AuthorName:   r.AuthorName.String,
		AuthorAvatar: r.AuthorAvatar.String,
		Content:      r.Content,
		ReplyingTo:   r.ReplyingTo,
		CreatedAt:    r.CreatedAt,
		LikeCount:    r.LikeCount,
		ReplyCount:   r.ReplyCount,
		LikedByMe:    r.LikedByMe > 0,
	}, nil
}

func rowsToViews(rows []postRow) ([]models.PostView, error) {
	if bad, found := lo.Find(rows, func(r postRow) bool {
		return !r.AuthorName.Valid || r.AuthorName.String == ""
	}); found {
		return nil, fmt.Errorf("%w: post %d", ErrAuthorMissing, bad.ID)
	}

	return lo.Map(rows, func(r postRow, _ int) models.PostView {
		view, _ := rowToView(r)
		return view
	}), nil
}

// GetByID возвращает пост с данными автора и счетчиками
func (ps *PostService) GetByID(ctx context.Context, id int64, viewerID string) (*models.PostView, error) {
	var row postRow
	err := ps.baseQuery(ctx, viewerID).Where("p.id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	view, err := rowToView(row)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// GetAll возвращает до 100 постов верхнего уровня, новые первыми
func (ps *PostService) GetAll(ctx context.Context, viewerID string) ([]models.PostView, error) {
	// Кешируем только анонимную ленту: у авторизованной есть liked_by_me
	if viewerID == "" {
		if views, err := ps.timelineFromCache(ctx); err == nil && len(views) > 0 {
			return views, nil
		}
	}

	var rows []postRow
	err := ps.baseQuery(ctx, viewerID).
		Where("p.replying_to = 0").
		Order("p.created_at DESC, p.id DESC").
		Limit(MaxPostsPerQuery).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}

	views, err := rowsToViews(rows)
	if err != nil {
		return nil, err
	}

	if viewerID == "" {
		go ps.cacheTimeline(context.Background(), views)
	}
	return views, nil
}

// GetReplies возвращает до 100 прямых ответов на пост
func (ps *PostService) GetReplies(ctx context.Context, postID int64, viewerID string) ([]models.PostView, error) {
	var rows []postRow
	err := ps.baseQuery(ctx, viewerID).
		Where("p.replying_to = ?", postID).
		Order("p.created_at DESC, p.id DESC").
		Limit(MaxPostsPerQuery).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get replies: %w", err)
	}
	return rowsToViews(rows)
}

// GetReplyCount считает прямые ответы на пост
func (ps *PostService) GetReplyCount(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Post{}).Where("replying_to = ?", postID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return count, nil
}

// GetPostsByUser возвращает посты верхнего уровня одного автора
func (ps *PostService) GetPostsByUser(ctx context.Context, userID string, viewerID string) ([]models.PostView, error) {
	var rows []postRow
	err := ps.baseQuery(ctx, viewerID).
		Where("p.author_id = ? AND p.replying_to = 0", userID).
		Order("p.created_at DESC, p.id DESC").
		Limit(MaxPostsPerQuery).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user posts: %w", err)
	}
	return rowsToViews(rows)
}

// GetLikesByUser возвращает посты, которые пользователь лайкнул
func (ps *PostService) GetLikesByUser(ctx context.Context, userID string, viewerID string) ([]models.PostView, error) {
	var rows []postRow
	err := ps.baseQuery(ctx, viewerID).
		Joins(`JOIN likes ul ON ul.post_id = p.id AND ul.user_id = ?`, userID).
		Order("p.created_at DESC, p.id DESC").
		Limit(MaxPostsPerQuery).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get liked posts: %w", err)
	}
	return rowsToViews(rows)
}

// Create валидирует контент и сохраняет новый пост.
// Rate limit проверяется в middleware до вызова сюда.
func (ps *PostService) Create(ctx context.Context, authorID string, content string, replyingTo int64) (*models.Post, error) {
	if err := ValidateChirpContent(content); err != nil {
		return nil, err
	}

	now := time.Now()
	post := &models.Post{
		AuthorID:   authorID,
		Content:    content,
		ReplyingTo: replyingTo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := db.GetWriteDB(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if err := ps.InvalidateTimeline(ctx); err != nil {
		log.Printf("WARN: failed to invalidate timeline cache: %v", err)
	}
	go ps.announcePost(*post)

	return post, nil
}

// announcePost публикует событие о новом посте; при недоступном RabbitMQ
// шлет его подключенным клиентам напрямую
func (ps *PostService) announcePost(post models.Post) {
	event := PostEvent{
		PostID:     post.ID,
		AuthorID:   post.AuthorID,
		Content:    post.Content,
		ReplyingTo: post.ReplyingTo,
		CreatedAt:  post.CreatedAt,
	}

	if err := PublishPostEvent(context.Background(), event); err != nil {
		BroadcastPostEvent(event)
	}
}

func (ps *PostService) timelineFromCache(ctx context.Context) ([]models.PostView, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis not available")
	}

	data, err := RedisClient.Get(ctx, timelineCacheKey).Result()
	if err != nil {
		return nil, err
	}

	var views []models.PostView
	if err := json.Unmarshal([]byte(data), &views); err != nil {
		return nil, err
	}
	return views, nil
}

func (ps *PostService) cacheTimeline(ctx context.Context, views []models.PostView) {
	if RedisClient == nil || len(views) == 0 {
		return
	}

	data, err := json.Marshal(views)
	if err != nil {
		log.Printf("WARN: failed to marshal timeline for caching: %v", err)
		return
	}
	RedisClient.Set(ctx, timelineCacheKey, data, timelineCacheTTL)
}

// InvalidateTimeline сбрасывает кеш анонимной ленты
func (ps *PostService) InvalidateTimeline(ctx context.Context) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Del(ctx, timelineCacheKey).Err()
}
