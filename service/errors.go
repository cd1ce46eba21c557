package service

import "errors"

var (
	ErrCheckoutInProgress = errors.New("checkout is already in progress for this cart")
	ErrUnauthorized       = errors.New("invalid admin credentials")
	ErrNoConfirmation     = errors.New("no confirmed order in this session")
)
