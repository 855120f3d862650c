package services

import "errors"

// Доменные ошибки, по которым хендлеры выбирают HTTP-статус
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrRateLimited   = errors.New("too many requests")
	ErrAlreadyLiked  = errors.New("post already liked")
	ErrNotLiked      = errors.New("post is not liked")
	ErrUserExists    = errors.New("user already exists")
	ErrAuthorMissing = errors.New("post author missing")
)
