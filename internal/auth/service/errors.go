package service

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrRefreshNotFound      = errors.New("refresh_token_not_found")
	ErrRefreshExpired       = errors.New("refresh_token_expired")
	ErrReuseDetected        = errors.New("refresh_token_reuse_detected")
	ErrWrongCurrentPassword = errors.New("wrong_current_password")
	ErrInvalidOrExpired     = errors.New("invalid_or_expired")
	ErrUserNotFound         = errors.New("user_not_found")
	ErrWeakPassword         = errors.New("weak_password")
)
