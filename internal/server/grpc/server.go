// Package grpc is the gRPC front end of the document store.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/mandaditos/internal/docstore"
	"github.com/dmitrijs2005/mandaditos/internal/logging"
	"github.com/dmitrijs2005/mandaditos/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address   string
	documents services.DocumentService
	auth      services.AuthService
	logger    logging.Logger
}

var _ docstore.Server = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, ds services.DocumentService, as services.AuthService) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		documents: ds,
		auth:      as,
	}
}

// NewServer builds the grpc.Server with interceptors and the service
// registered, without binding a listener.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	docstore.RegisterServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
