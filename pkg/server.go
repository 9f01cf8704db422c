package factlog

import (
	"context"
	"net/http"
	"net/http/pprof"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vilterp/factlog/pkg/config"
	clog "github.com/vilterp/factlog/pkg/log"
	"golang.org/x/sync/errgroup"
)

// Server exposes sessions over websockets, one per connection. Sessions
// don't share facts, and none of them use a journal.
type Server struct {
	opts       SessionOptions
	metrics    *Metrics
	httpServer *http.Server
	ctx        context.Context

	// connections are hijacked from httpServer, so Close shuts them down
	// itself and waits for their goroutines.
	mu          sync.Mutex
	closed      bool
	connections map[*connection]struct{}
	handlers    sync.WaitGroup
}

func NewServer(cfg *config.Config) *Server {
	opts := OptionsFromConfig(cfg)
	opts.DataFile = ""
	s := &Server{
		opts:        opts,
		metrics:     NewMetrics(),
		ctx:         context.Background(),
		connections: map[*connection]struct{}{},
	}
	s.httpServer = &http.Server{Addr: cfg.Listen, Handler: s.Handler()}
	return s
}

func (s *Server) Ctx() context.Context {
	return s.ctx
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve metrics.
	mux.Handle(
		"/metrics",
		promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}),
	)

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// Serve WebSocket endpoint for sessions.
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(_ *http.Request) bool { return true },
	}
	mux.HandleFunc("/ws", func(resp http.ResponseWriter, req *http.Request) {
		wsConn, err := upgrader.Upgrade(resp, req, nil)
		if err != nil {
			clog.Errorf(s, "upgrade failed: %v", err)
			return
		}
		s.addConnection(wsConn)
	})

	return mux
}

func (s *Server) addConnection(wsConn *websocket.Conn) {
	id := uuid.New()
	ctx := clog.WithConnID(s.ctx, id.String())
	session, err := NewSession(ctx, s.opts, s.metrics)
	if err != nil {
		clog.Errorf(s, "failed to open session: %v", err)
		wsConn.Close()
		return
	}
	conn := newConnection(ctx, wsConn, session, id)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.close()
		return
	}
	s.connections[conn] = struct{}{}
	s.handlers.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.connections, conn)
		s.mu.Unlock()
		s.handlers.Done()
	}()

	s.metrics.nextConnection.Inc()
	conn.handleRequests()
}

// OpenConnections is the number of websocket clients being served.
func (s *Server) OpenConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *Server) ListenAndServe() error {
	clog.Println(s, "serving HTTP at", "http://"+s.httpServer.Addr+"/")
	return s.httpServer.ListenAndServe()
}

// Run serves until ctx is done, then shuts the HTTP server down.
func (s *Server) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "listening")
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		return s.Close()
	})
	return group.Wait()
}

func (s *Server) Close() error {
	clog.Println(s, "closing http server...")
	if err := s.httpServer.Close(); err != nil {
		return err
	}

	s.mu.Lock()
	s.closed = true
	clog.Printf(s, "closing %d connections...", len(s.connections))
	for conn := range s.connections {
		conn.clientConn.Close()
	}
	s.mu.Unlock()
	s.handlers.Wait()

	clog.Println(s, "bye!")
	return nil
}
