package utils

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	serverReadTimeout  = 60 * time.Second
	serverWriteTimeout = 60 * time.Second
	shutdownGrace      = 30 * time.Second

	// A child spawned for a zero-downtime restart finds the listening socket
	// on fd 3 and this variable set.
	inheritedEnvKey = "LISTENER_INHERITED"
	inheritedFD     = 3
)

// gracefulServer serves HTTP while listening for SIGTERM (drain and exit)
// and SIGUSR2 (hand the socket to a fresh binary, then drain).
type gracefulServer struct {
	http.Server

	ln   net.Listener
	done chan struct{}
}

func newGracefulServer(addr string, handler http.Handler) *gracefulServer {
	s := &gracefulServer{done: make(chan struct{})}
	s.Addr = addr
	s.Handler = handler
	s.ReadTimeout = serverReadTimeout
	s.WriteTimeout = serverWriteTimeout
	return s
}

// GraceServer serves plain HTTP on addr until drained by a signal.
func GraceServer(addr string, handler http.Handler) error {
	s := newGracefulServer(addr, handler)
	ln, err := s.listen()
	if err != nil {
		return err
	}
	s.ln = ln
	return s.run()
}

// GraceServerTLS serves HTTPS on addr until drained by a signal.
func GraceServerTLS(addr, certFile, keyFile string, handler http.Handler) error {
	s := newGracefulServer(addr, handler)

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return err
	}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"http/1.1"},
	}

	ln, err := s.listen()
	if err != nil {
		return err
	}
	s.ln = tls.NewListener(ln, cfg)
	return s.run()
}

// listen binds a fresh socket, or adopts the one a parent process passed
// down during a restart.
func (s *gracefulServer) listen() (net.Listener, error) {
	if os.Getenv(inheritedEnvKey) == "" {
		ln, err := net.Listen("tcp", s.Addr)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", s.Addr, err)
		}
		return ln, nil
	}
	ln, err := net.FileListener(os.NewFile(inheritedFD, "listener"))
	if err != nil {
		return nil, fmt.Errorf("adopt inherited listener: %w", err)
	}
	return ln, nil
}

func (s *gracefulServer) run() error {
	go s.watchSignals()

	err := s.Serve(s.ln)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	// Serve returns as soon as the listener closes; wait for in-flight
	// requests to finish draining.
	<-s.done
	return err
}

func (s *gracefulServer) watchSignals() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGUSR2)

	for sig := range sigs {
		switch sig {
		case syscall.SIGTERM:
			zap.L().Info("SIGTERM received, draining server")
			s.drain()
			return
		case syscall.SIGUSR2:
			pid, err := s.spawnSuccessor()
			if err != nil {
				zap.L().Error("restart failed, still serving", zap.Error(err))
				continue
			}
			zap.L().Info("successor started, draining old server", zap.Int("pid", pid))
			s.drain()
			return
		}
	}
}

func (s *gracefulServer) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	close(s.done)
}

// spawnSuccessor forks a new copy of this binary that inherits the listening
// socket, so no connections are refused during the handover.
func (s *gracefulServer) spawnSuccessor() (int, error) {
	tcpLn, ok := s.ln.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("cannot pass %T across processes", s.ln)
	}
	lnFile, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("dup listener fd: %w", err)
	}

	env := make([]string, 0, len(os.Environ())+1)
	for _, kv := range os.Environ() {
		if kv != inheritedEnvKey+"=1" {
			env = append(env, kv)
		}
	}
	env = append(env, inheritedEnvKey+"=1")

	pid, err := syscall.ForkExec(os.Args[0], os.Args, &syscall.ProcAttr{
		Env:   env,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), lnFile.Fd()},
	})
	if err != nil {
		return 0, fmt.Errorf("fork successor: %w", err)
	}
	return pid, nil
}
