package domain

import "github.com/cwrk-planet/underbyte/pkg/errs"

var (
	ErrRoomNotFound = errs.New(errs.ErrNotFound, "room not found")
	ErrRoomExists   = errs.New(errs.ErrInvalidInput, "room already exists")
	ErrInvalidInput = errs.ErrInvalidInput
)
