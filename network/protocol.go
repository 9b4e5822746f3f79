package network

// Client to server.
const (
	MsgTypeHeartbeat = 1

	MsgTypeStartWaiting        = 101
	MsgTypeBrowse              = 102
	MsgTypeStopWaiting         = 103
	MsgTypePickWaitingPlayer   = 104
	MsgTypeRemoveJoiningPlayer = 105

	MsgTypeDrop   = 201
	MsgTypeMove   = 202
	MsgTypeRotate = 203
	MsgTypeDown   = 204
	MsgTypeLost   = 205
)

// Server to client.
const (
	MsgTypeError = 2

	MsgTypeUpdateWaitingList = 106

	MsgTypeStartGame    = 301
	MsgTypeOtherDropped = 302
	MsgTypeOtherMove    = 303
	MsgTypeOtherRotate  = 304
	MsgTypeOtherDown    = 305
	MsgTypeThisWin      = 306
)

var msgNames = map[uint16]string{
	MsgTypeHeartbeat:           "heartbeat",
	MsgTypeError:               "error",
	MsgTypeStartWaiting:        "startWaiting",
	MsgTypeBrowse:              "browse",
	MsgTypeStopWaiting:         "stopWaiting",
	MsgTypePickWaitingPlayer:   "pickWaitingPlayer",
	MsgTypeRemoveJoiningPlayer: "removeJoiningPlayer",
	MsgTypeUpdateWaitingList:   "updateWaitingList",
	MsgTypeDrop:                "drop",
	MsgTypeMove:                "move",
	MsgTypeRotate:              "rotate",
	MsgTypeDown:                "down",
	MsgTypeLost:                "lost",
	MsgTypeStartGame:           "startGame",
	MsgTypeOtherDropped:        "otherDropped",
	MsgTypeOtherMove:           "otherMove",
	MsgTypeOtherRotate:         "otherRotate",
	MsgTypeOtherDown:           "otherDown",
	MsgTypeThisWin:             "thisWin",
}

// MsgName returns the protocol name of a message id, or "unknown".
func MsgName(id uint16) string {
	if name, ok := msgNames[id]; ok {
		return name
	}
	return "unknown"
}
