package network

import "github.com/wfunc/blockduel/piece"

// Wire payloads. Field names are lower camel case throughout.

type NameRequest struct {
	Name string `json:"name"`
}

type PickRequest struct {
	OtherConnectionID string `json:"otherConnectionId"`
}

type DropRequest struct {
	RowsCleared int `json:"rowsCleared"`
}

// MoveMessage carries a horizontal offset, +1 right or -1 left. It is used
// both for move and for the otherMove relay.
type MoveMessage struct {
	Offset int `json:"offset"`
}

// WaitingPlayer is one entry of the waiting list.
type WaitingPlayer struct {
	ConnectionID string `json:"connectionId"`
	UserName     string `json:"userName"`
}

type StartGame struct {
	ThisName    string             `json:"thisName"`
	OtherName   string             `json:"otherName"`
	ThisPieces  []piece.Descriptor `json:"thisPieces"`
	OtherPieces []piece.Descriptor `json:"otherPieces"`
}

// DropResult answers a drop and is mirrored to the opponent as otherDropped.
// PendingTimes holds the dropping player's pending deadlines first, then the
// opponent's, in milliseconds from now.
type DropResult struct {
	Garbage      []string           `json:"garbage,omitempty"`
	PendingTimes [2][]int64         `json:"pendingTimes"`
	NewPieces    []piece.Descriptor `json:"newPieces"`
}

type ErrorReply struct {
	Request uint16 `json:"request"`
	Error   string `json:"error"`
}
