package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/wally"
)

type conn struct {
	server *Server
	rwc    net.Conn
	log    *slog.Logger
	bufr   *bufio.Reader
	bufw   *bufio.Writer
}

func newConn(s *Server, rwc net.Conn) *conn {
	return &conn{
		server: s,
		rwc:    rwc,
		log:    slog.With("conn", uuid.NewString(), "remote", rwc.RemoteAddr().String()),
		bufr:   bufio.NewReader(rwc),
		bufw:   bufio.NewWriter(rwc),
	}
}

func (c *conn) serve(ctx context.Context) {
	defer func() {
		if err := c.rwc.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			c.log.Debug("close connection", "err", err)
		}
	}()

	c.log.Debug("connection opened")

	for {
		c.setDeadline(c.rwc.SetReadDeadline)

		req, err := wally.ReadRequest(c.bufr)
		if err != nil {
			c.logReadError(ctx, err)
			return
		}

		resp := c.server.responder.Respond(ctx, req)

		c.setDeadline(c.rwc.SetWriteDeadline)
		if _, err := resp.WriteTo(c.bufw); err != nil {
			c.log.Debug("write response", "err", err)
			return
		}
		if err := c.bufw.Flush(); err != nil {
			c.log.Debug("flush response", "err", err)
			return
		}

		c.log.Info("request",
			"method", req.Token,
			"uri", req.URI,
			"status", resp.Status.Code(),
			"bytes", len(resp.Body),
		)

		if req.WantsClose() {
			c.log.Debug("connection closed on request")
			return
		}
	}
}

func (c *conn) setDeadline(set func(time.Time) error) {
	if c.server.config.IdleTimeout <= 0 {
		return
	}
	if err := set(time.Now().Add(c.server.config.IdleTimeout)); err != nil {
		c.log.Debug("set deadline", "err", err)
	}
}

func (c *conn) logReadError(ctx context.Context, err error) {
	var ne net.Error
	switch {
	case errors.Is(err, io.EOF):
		c.log.Debug("connection closed by client")
	case ctx.Err() != nil || errors.Is(err, net.ErrClosed):
		c.log.Debug("connection closed on shutdown")
	case errors.Is(err, wally.ErrBodyTooLarge):
		c.log.Warn("request body too large", "err", err)
	case errors.Is(err, wally.ErrHeaderTooLarge):
		c.log.Warn("request header too large", "err", err)
	case errors.As(err, &ne) && ne.Timeout():
		c.log.Debug("connection idle timeout")
	default:
		c.log.Warn("read request", "err", err)
	}
}
