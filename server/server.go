package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/blockduel/broadcast"
	"github.com/wfunc/blockduel/config"
	"github.com/wfunc/blockduel/hub"
	"github.com/wfunc/blockduel/lobby"
	"github.com/wfunc/blockduel/logger"
	"github.com/wfunc/blockduel/monitor"
	"github.com/wfunc/blockduel/network"
	"github.com/wfunc/blockduel/room"
	"github.com/wfunc/blockduel/session"
	"github.com/wfunc/blockduel/timer"
)

type GameServer struct {
	cfg            config.ServerConfig
	upgrader       websocket.Upgrader
	engine         *gin.Engine
	httpServer     *http.Server
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	hub            *hub.Hub
	monitor        *monitor.Monitor
	timers         *timer.TimerManager
	reaperID       int64
	connections    sync.WaitGroup
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

// NewGameServer wires the directory, the registry and the protocol hub.
// hubOpts add match recording and event publishing.
func NewGameServer(cfg config.ServerConfig, hubOpts ...hub.Option) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		sessionManager: session.NewManager(),
		monitor:        monitor.NewMonitor("blockduel"),
		timers:         timer.NewTimerManager(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewSessionBroadcaster(s.sessionManager)

	l := lobby.NewLobby(room.NewRoomManager(), s.broadcaster)
	opts := append([]hub.Option{hub.WithObserver(s.monitor)}, hubOpts...)
	s.hub = hub.NewHub(l, s.broadcaster, opts...)

	s.monitor.RegisterGauge("blockduel_waiting_players", "Players on the waiting list", func() float64 {
		return float64(l.Stats().Waiting)
	})
	s.monitor.RegisterGauge("blockduel_active_rooms", "Rooms currently registered", func() float64 {
		return float64(l.Rooms().Count())
	})

	s.engine = s.routes()
	s.httpServer = &http.Server{Handler: s.engine}
	s.startReaper()
	return s
}

func (s *GameServer) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), accessLog())

	r.GET("/ws", s.handleWebSocket)
	r.GET("/status", s.handleStatus)
	r.GET("/metrics", gin.WrapH(s.monitor.Handler()))
	return r
}

// accessLog logs plain HTTP requests; the websocket upgrade is logged by
// the connection handler.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.FullPath() == "/ws" {
			return
		}
		logger.Log.Debugw("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// Handler exposes the router, e.g. for httptest.
func (s *GameServer) Handler() http.Handler {
	return s.engine
}

func (s *GameServer) Hub() *hub.Hub {
	return s.hub
}

// Start serves HTTP until Shutdown.
func (s *GameServer) Start() error {
	listener, err := net.Listen("tcp", s.cfg.HTTPAddress)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

func (s *GameServer) Serve(listener net.Listener) error {
	logger.Log.Infof("Game server listening on %s", listener.Addr())
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, closes every connection and waits for
// their handlers to finish or ctx to expire.
func (s *GameServer) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
		if s.reaperID != 0 {
			s.timers.RemoveTimer(s.reaperID)
		}
		s.timers.Stop()
		err = s.httpServer.Shutdown(ctx)
		for _, sess := range s.sessionManager.All() {
			sess.Close()
		}

		done := make(chan struct{})
		go func() {
			s.connections.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}
	})
	return err
}

func (s *GameServer) startReaper() {
	if s.cfg.IdleTimeout <= 0 || s.cfg.ReapInterval <= 0 {
		return
	}
	s.reaperID = s.timers.AddTimer(s.cfg.ReapInterval, s.cfg.ReapInterval, s.reapIdle)
}

// reapIdle closes connections without inbound traffic for IdleTimeout. The
// read loop then runs the normal disconnect path.
func (s *GameServer) reapIdle() {
	for _, sess := range s.sessionManager.Idle(time.Now(), s.cfg.IdleTimeout) {
		logger.Log.Infof("Closing idle connection %s", sess.GetID())
		sess.Close()
	}
}

type statusResponse struct {
	Connections int `json:"connections"`
	Waiting     int `json:"waiting"`
	Browsing    int `json:"browsing"`
	Rooms       int `json:"rooms"`
}

func (s *GameServer) handleStatus(c *gin.Context) {
	stats := s.hub.Stats()
	c.JSON(http.StatusOK, statusResponse{
		Connections: s.sessionManager.Count(),
		Waiting:     stats.Waiting,
		Browsing:    stats.Browsing,
		Rooms:       stats.Rooms,
	})
}

func (s *GameServer) handleWebSocket(c *gin.Context) {
	select {
	case <-s.shutdownChan:
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	default:
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.connections.Add(1)
	defer s.connections.Done()
	s.handleConnection(conn, c.Query("name"))
}

func (s *GameServer) handleConnection(conn *websocket.Conn, name string) {
	wsConn := network.NewWSConnection(conn)
	// 读超时: a silent peer is dropped after twice the idle timeout.
	wsConn.SetHeartbeat(s.cfg.IdleTimeout)
	sess := session.NewSession(uuid.New().String(), wsConn)
	sess.SetUserName(name)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.hub.Disconnect(sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		packet, err := wsConn.ReadPacket()
		if err != nil {
			return
		}
		sess.Touch(time.Now())
		s.dispatch(sess, packet)
	}
}

// dispatch handles one packet and reports a failure as an error frame on the
// same connection.
func (s *GameServer) dispatch(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	name := network.MsgName(packet.MsgID)
	s.monitor.IncMessagesReceived(name)

	err := s.handlePacket(sess, packet)
	s.monitor.ObserveMessageLatency(time.Since(start))
	if err == nil {
		return
	}

	s.monitor.IncMessageErrors(name)
	logger.Log.Warnf("Session %s: %s failed: %v", sess.GetID(), name, err)
	if sendErr := sess.SendJSON(network.MsgTypeError, network.ErrorReply{
		Request: packet.MsgID,
		Error:   err.Error(),
	}); sendErr != nil {
		logger.Log.Debugf("Session %s: error reply failed: %v", sess.GetID(), sendErr)
	}
}

var errUnknownMessage = errors.New("unknown message type")

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) error {
	id := sess.GetID()
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		return nil
	case network.MsgTypeStartWaiting:
		var req network.NameRequest
		if err := decode(packet, &req); err != nil {
			return err
		}
		s.rename(sess, req.Name)
		s.hub.StartWaiting(id, sess.UserName())
		return nil
	case network.MsgTypeBrowse:
		var req network.NameRequest
		if err := decode(packet, &req); err != nil {
			return err
		}
		s.rename(sess, req.Name)
		return sess.SendJSON(network.MsgTypeBrowse, s.hub.Browse(id))
	case network.MsgTypeStopWaiting:
		s.hub.StopWaiting(id)
		return nil
	case network.MsgTypePickWaitingPlayer:
		var req network.PickRequest
		if err := decode(packet, &req); err != nil {
			return err
		}
		return s.hub.PickWaitingPlayer(room.Seat{ConnID: id, UserName: sess.UserName()}, req.OtherConnectionID)
	case network.MsgTypeRemoveJoiningPlayer:
		s.hub.RemoveJoiningPlayer(id)
		return nil
	case network.MsgTypeDrop:
		var req network.DropRequest
		if err := decode(packet, &req); err != nil {
			return err
		}
		res, err := s.hub.Drop(id, req.RowsCleared)
		if err != nil {
			return err
		}
		return sess.SendJSON(network.MsgTypeDrop, res)
	case network.MsgTypeMove:
		var req network.MoveMessage
		if err := decode(packet, &req); err != nil {
			return err
		}
		return s.hub.Move(id, req.Offset)
	case network.MsgTypeRotate:
		return s.hub.Rotate(id)
	case network.MsgTypeDown:
		return s.hub.Down(id)
	case network.MsgTypeLost:
		return s.hub.Lost(context.Background(), id)
	default:
		return fmt.Errorf("%w: %d", errUnknownMessage, packet.MsgID)
	}
}

func (s *GameServer) rename(sess *session.Session, name string) {
	if name != "" {
		sess.SetUserName(name)
	}
}

// decode unmarshals a JSON payload; an empty payload leaves v zeroed.
func decode(packet *network.Packet, v interface{}) error {
	if len(packet.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(packet.Data, v); err != nil {
		return fmt.Errorf("malformed %s payload: %w", network.MsgName(packet.MsgID), err)
	}
	return nil
}
