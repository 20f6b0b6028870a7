package http

import (
	"errors"
	"log"

	"github.com/hornet-web/hornet/config"
	"github.com/hornet-web/hornet/http"
	"github.com/hornet-web/hornet/http/method"
	"github.com/hornet-web/hornet/http/proto"
	"github.com/hornet-web/hornet/http/query"
	"github.com/hornet-web/hornet/http/status"
	"github.com/hornet-web/hornet/internal/constraints"
	"github.com/hornet-web/hornet/internal/protocol/http1"
	"github.com/hornet-web/hornet/transport"
)

// Server drives a single connection: it reads requests one by one, passes them to the
// handler and writes responses back until the connection must be closed.
type Server struct {
	handler http.Handler
	cfg     *config.Config
	cons    *constraints.Constraints
	logger  *log.Logger
}

func NewServer(handler http.Handler, cfg *config.Config, logger *log.Logger) *Server {
	return &Server{
		handler: handler,
		cfg:     cfg,
		cons:    constraints.New(cfg),
		logger:  logger,
	}
}

func (s *Server) Run(client transport.Client) {
	for s.HandleRequest(client) {
	}

	_ = client.Close()
}

// HandleRequest serves exactly one request and reports whether the connection may be
// reused for the next one.
func (s *Server) HandleRequest(client transport.Client) (keepAlive bool) {
	head, err := http1.ReadHead(client, s.cons)
	if err != nil {
		s.onError(client, err)
		return false
	}

	request := http.NewRequest(client, s.cfg, s.cons, s.logger)
	request.Method = head.Method
	request.Target = head.Target
	request.Path = head.Path
	request.Proto = head.Proto
	request.Headers = head.Headers
	query.Parse(head.RawQuery, request.Query)

	keepAlive = head.KeepAlive()
	if request.Method == method.GET && client.Pending() > 0 {
		// GET requests carry no body, so anything that follows is unexpected
		keepAlive = false
	}

	response := s.onRequest(request)
	defer request.Cleanup()

	if request.WasHijacked() {
		return false
	}

	if request.BodyDangling() || response.ShouldClose() {
		keepAlive = false
	}

	if err = response.WriteTo(client, request.Proto, keepAlive); err != nil {
		// if error happened during writing the response, it makes no sense to try
		// to write anything again
		s.logger.Printf("%s %s: writing response: %s", request.Method, request.Path, err)
		return false
	}

	return keepAlive
}

func (s *Server) onRequest(request *http.Request) *http.Response {
	if response := s.handler(request); response != nil {
		return response
	}

	return http.Respond(request)
}

// onError responds to a request which couldn't be read. The connection is closed afterward
// in any case.
func (s *Server) onError(client transport.Client, err error) {
	var httpErr status.HTTPError

	switch {
	case errors.Is(err, status.ErrUnusableRequest):
		s.logger.Printf("dropping connection: %s", err)
	case errors.As(err, &httpErr):
		s.logger.Printf("rejecting request: %s", err)

		// as the connection will anyway be closed, we don't care about socket errors anymore
		_ = http.NewResponse().Error(httpErr).WriteTo(client, proto.HTTP11, false)
	default:
		// the peer is gone or the stream broke, nothing can be written back
		if !errors.Is(err, transport.ErrBrokenPipe) {
			s.logger.Printf("reading request: %s", err)
		}
	}
}
