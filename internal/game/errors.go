package game

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotInRoom        = errors.New("connection not seated in room")
	ErrNotHost          = errors.New("not host or leader")
	ErrInvalidPhase     = errors.New("invalid phase for action")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrSelfVote         = errors.New("quality vote may not target self")
	ErrAbilityLocked    = errors.New("ability locked until round 2")
	ErrAbilityUsed      = errors.New("ability already used this round")
	ErrInvalidAbility   = errors.New("ability not available for role")
)
