package domain

import "errors"

var (
	ErrCommentNotFound      = errors.New("comment not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidPatch         = errors.New("invalid patch")
)
