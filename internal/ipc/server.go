package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
)

// Server is the accept loop for the daemon's control socket. Malformed
// lines are dropped the same way the telemetry server drops them;
// each connection is served by its own goroutine.
type Server struct {
	SocketPath string
	Handler    Handler
	Log        *slog.Logger
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	os.Remove(s.SocketPath)
	ln, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return err
	}
	defer ln.Close()
	defer os.Remove(s.SocketPath)
	if err := os.Chmod(s.SocketPath, 0o600); err != nil {
		s.Log.Warn("ipc: chmod socket failed", "error", err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}
		resp := s.dispatch(req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req Request) interface{} {
	switch req.Op {
	case OpMetrics:
		m, cns, err := s.Handler.Metrics()
		if err != nil {
			return MetricsResponse{Metrics: m, CNS: cns}
		}
		return MetricsResponse{Metrics: m, CNS: cns}
	case OpStatus:
		state, balance, cns, _ := s.Handler.Status()
		return StatusResponse{State: state, Balance: balance, CNS: cns}
	case OpVerifyWork:
		return s.Handler.VerifyWork(req)
	case OpReloadConfig:
		if err := s.Handler.ReloadConfig(); err != nil {
			return ReloadConfigResponse{OK: false, Detail: err.Error()}
		}
		return ReloadConfigResponse{OK: true}
	default:
		return VerifyWorkResponse{OK: false, Kind: "UnknownOp", Detail: req.Op}
	}
}
