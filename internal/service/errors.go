package service

import "errors"

var (
	ErrMarketNotFound    = errors.New("market not found")
	ErrMarketNotOpen     = errors.New("market is not open for voting")
	ErrAlreadyResolved   = errors.New("market already resolved")
	ErrInvalidChoice     = errors.New("choice must be yes or no")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrVoteNotFound      = errors.New("no current vote to retract")
	ErrSuggestionMissing = errors.New("suggestion not found")
)
