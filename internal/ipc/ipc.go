// Package ipc exposes a unix socket for controlling a running assistant from
// the vani-ctl binary.
package ipc

import (
	"context"
	"encoding/json"
	"net"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"log/slog"
)

const DefaultSocketPath = "/tmp/vani.sock"

type Command struct {
	Cmd string `json:"cmd"` // reset, stop or status
}

type Response struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Handler processes one control command and returns the response to send
// back.
type Handler func(Command) Response

// Server accepts control connections on a unix socket.
type Server struct {
	ln  net.Listener
	log *slog.Logger
}

func StartServer(path string, handler Handler, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	// stale socket from a previous run
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to listen on control socket", goerr.V("path", path))
	}

	s := &Server{ln: ln, log: log}
	go s.acceptLoop(handler)

	log.Info("control socket ready", "path", path)
	return s, nil
}

func (s *Server) acceptLoop(handler Handler) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn, handler)
	}
}

func (s *Server) handleConn(conn net.Conn, handler Handler) {
	defer conn.Close()

	var cmd Command
	if err := json.NewDecoder(conn).Decode(&cmd); err != nil {
		s.log.Warn("bad control message", "error", err)
		return
	}

	resp := handler(cmd)
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		s.log.Warn("failed to send control response", "error", err)
	}
}

func (s *Server) Close() error {
	return s.ln.Close()
}

// Send delivers one command to a running assistant and returns its response.
func Send(ctx context.Context, path, cmd string) (Response, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return Response{}, goerr.Wrap(err, "is the assistant running?", goerr.V("path", path))
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := json.NewEncoder(conn).Encode(Command{Cmd: cmd}); err != nil {
		return Response{}, goerr.Wrap(err, "failed to send command")
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, goerr.Wrap(err, "failed to read response")
	}
	return resp, nil
}
