package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/blockduel/hub"
	"github.com/wfunc/blockduel/logger"
	"github.com/wfunc/blockduel/models"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
	server   *rpc.Server
}

// NewServer listens on addr. Services are registered with Register before
// Start is called.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		server:   rpc.NewServer(),
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.address
}

// Register exposes rcvr's exported methods under its type name.
func (s *Server) Register(rcvr interface{}) error {
	return s.server.Register(rcvr)
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.server.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsSource reports live directory counts.
type StatsSource interface {
	Stats() hub.Stats
}

// StatsStore answers historical queries.
type StatsStore interface {
	PlayerStats(ctx context.Context, userName string) (*models.PlayerStats, error)
	RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error)
}

// AdminService is the struct that exposes RPC methods.
// Methods follow the net/rpc signature: exported arguments, a pointer reply
// and an error result.
type AdminService struct {
	live    StatsSource
	history StatsStore
}

func NewAdminService(live StatsSource, history StatsStore) *AdminService {
	return &AdminService{live: live, history: history}
}

type StatsArgs struct{}

type StatsReply struct {
	Waiting  int
	Browsing int
	Rooms    int
}

func (a *AdminService) Stats(_ *StatsArgs, reply *StatsReply) error {
	s := a.live.Stats()
	reply.Waiting = s.Waiting
	reply.Browsing = s.Browsing
	reply.Rooms = s.Rooms
	return nil
}

type PlayerStatsArgs struct {
	UserName string
}

type PlayerStatsReply struct {
	Stats models.PlayerStats
}

func (a *AdminService) PlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	if args.UserName == "" {
		return errors.New("userName is required")
	}
	stats, err := a.history.PlayerStats(context.Background(), args.UserName)
	if err != nil {
		return err
	}
	reply.Stats = *stats
	return nil
}

type RecentMatchesArgs struct {
	Limit int
}

type RecentMatchesReply struct {
	Matches []models.MatchRecord
}

func (a *AdminService) RecentMatches(args *RecentMatchesArgs, reply *RecentMatchesReply) error {
	matches, err := a.history.RecentMatches(context.Background(), args.Limit)
	if err != nil {
		return err
	}
	reply.Matches = matches
	return nil
}
