package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"github.com/wfunc/blockduel/board"
	"github.com/wfunc/blockduel/logger"
	"github.com/wfunc/blockduel/network"
	"github.com/wfunc/blockduel/piece"
)

// errGameOver ends the read loop once a match is decided.
var errGameOver = errors.New("game over")

// sendFunc writes one message to the server.
type sendFunc func(msgID uint16, payload interface{}) error

// Bot plays one match. It mirrors its own shaft and the opponent's from the
// messages it receives, exactly as a graphical client would.
type Bot struct {
	name    string
	pick    bool
	send    sendFunc
	rng     *rand.Rand
	own     *board.Field
	other   *board.Field
	playing bool
	won     bool
	drops   int
}

func NewBot(name string, pick bool, send sendFunc, rng *rand.Rand) *Bot {
	return &Bot{
		name:  name,
		pick:  pick,
		send:  send,
		rng:   rng,
		own:   board.NewField(),
		other: board.NewField(),
	}
}

// Begin announces the bot: waiting bots join the waiting list, picking bots
// browse it.
func (b *Bot) Begin() error {
	if b.pick {
		return b.send(network.MsgTypeBrowse, network.NameRequest{Name: b.name})
	}
	return b.send(network.MsgTypeStartWaiting, network.NameRequest{Name: b.name})
}

// Handle processes one server message. It returns errGameOver when the
// match is decided.
func (b *Bot) Handle(packet *network.Packet) error {
	switch packet.MsgID {
	case network.MsgTypeBrowse, network.MsgTypeUpdateWaitingList:
		var list []network.WaitingPlayer
		if err := json.Unmarshal(packet.Data, &list); err != nil {
			return err
		}
		return b.pickFirst(list)
	case network.MsgTypeStartGame:
		var start network.StartGame
		if err := json.Unmarshal(packet.Data, &start); err != nil {
			return err
		}
		logger.Log.Infof("%s: match against %s", b.name, start.OtherName)
		b.playing = true
		b.own.Reset()
		b.other.Reset()
		if _, err := b.other.NewPiece(start.OtherPieces); err != nil {
			return err
		}
		return b.spawn(start.ThisPieces)
	case network.MsgTypeDrop:
		var res network.DropResult
		if err := json.Unmarshal(packet.Data, &res); err != nil {
			return err
		}
		if err := b.own.InjectGarbage(res.Garbage); err != nil {
			return err
		}
		return b.spawn(res.NewPieces)
	case network.MsgTypeOtherDropped:
		var res network.DropResult
		if err := json.Unmarshal(packet.Data, &res); err != nil {
			return err
		}
		// Lands where the relays left it.
		b.other.Finish()
		if err := b.other.InjectGarbage(res.Garbage); err != nil {
			return err
		}
		_, err := b.other.NewPiece(res.NewPieces)
		return err
	case network.MsgTypeOtherMove:
		var m network.MoveMessage
		if err := json.Unmarshal(packet.Data, &m); err != nil {
			return err
		}
		b.other.Move(0, m.Offset)
	case network.MsgTypeOtherRotate:
		b.other.Rotate()
	case network.MsgTypeOtherDown:
		b.other.Move(1, 0)
	case network.MsgTypeThisWin:
		logger.Log.Infof("%s: won after %d drops", b.name, b.drops)
		b.won = true
		return errGameOver
	case network.MsgTypeError:
		var e network.ErrorReply
		if err := json.Unmarshal(packet.Data, &e); err != nil {
			return fmt.Errorf("malformed error reply: %w", err)
		}
		return fmt.Errorf("server rejected %s: %s", network.MsgName(e.Request), e.Error)
	}
	return nil
}

func (b *Bot) pickFirst(list []network.WaitingPlayer) error {
	if !b.pick || b.playing || len(list) == 0 {
		return nil
	}
	b.playing = true
	return b.send(network.MsgTypePickWaitingPlayer, network.PickRequest{OtherConnectionID: list[0].ConnectionID})
}

// spawn brings in the next piece, or reports the loss when the board is full.
func (b *Bot) spawn(queue []piece.Descriptor) error {
	ok, err := b.own.NewPiece(queue)
	if err != nil {
		return err
	}
	if !ok {
		logger.Log.Infof("%s: board full after %d drops", b.name, b.drops)
		if err := b.send(network.MsgTypeLost, nil); err != nil {
			return err
		}
		return errGameOver
	}
	return b.play()
}

// play steers the current piece to a random column and drops it.
func (b *Bot) play() error {
	if b.rng.Intn(2) == 0 && b.own.Rotate() {
		if err := b.send(network.MsgTypeRotate, nil); err != nil {
			return err
		}
	}
	offset := b.rng.Intn(board.Width) - b.own.Current().Col
	step := 1
	if offset < 0 {
		step, offset = -1, -offset
	}
	for ; offset > 0 && b.own.Move(0, step); offset-- {
		if err := b.send(network.MsgTypeMove, network.MoveMessage{Offset: step}); err != nil {
			return err
		}
	}
	for b.own.Move(1, 0) {
		if err := b.send(network.MsgTypeDown, nil); err != nil {
			return err
		}
	}
	b.drops++
	return b.send(network.MsgTypeDrop, network.DropRequest{RowsCleared: b.own.Finish()})
}
