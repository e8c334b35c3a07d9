package domain

import "errors"

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrFavoriteNotFound    = errors.New("favorite not found")
	ErrDuplicateFavorite   = errors.New("favorite already exists")
	ErrInvalidListingData  = errors.New("invalid listing data")
	ErrInvalidFilter       = errors.New("invalid filter parameters")
	ErrForbidden           = errors.New("user not authorized to perform this action")
	ErrInvalidStatus       = errors.New("invalid listing status")
	ErrInvalidReportReason = errors.New("invalid report reason")
	ErrAlreadyReported     = errors.New("listing already reported by this user")
	ErrUserNotFound        = errors.New("user not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrInvalidReportDetail = errors.New("invalid report details")
	ErrTooManyPhotos       = errors.New("listing photo limit reached")
	ErrInvalidImage        = errors.New("invalid image")
	ErrDuplicateSubmission = errors.New("submission already persisted")
)
