// Package grpc exposes the StudyShare service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/studyshare/internal/api"
	"github.com/dmitrijs2005/studyshare/internal/logging"
	"github.com/dmitrijs2005/studyshare/internal/server/models"
	"github.com/dmitrijs2005/studyshare/internal/server/services"
	"google.golang.org/grpc"
)

// UserService is the account surface used by the handlers.
type UserService interface {
	SignUp(ctx context.Context, req services.SignUpRequest) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	SignOut(ctx context.Context, userID, refreshToken string) error
	Identity(ctx context.Context, userID string) (*services.Identity, error)
}

// FileService is the catalog surface used by the handlers.
type FileService interface {
	List(ctx context.Context, userID string, req services.ListRequest) ([]*models.File, error)
	Upload(ctx context.Context, userID string, req services.UploadRequest) (*models.File, error)
}

type GRPCServer struct {
	address        string
	users          UserService
	files          FileService
	logger         logging.Logger
	jwtSecret      []byte
	maxRecvMsgSize int
}

// NewGRPCServer builds a server listening on address. maxUpload bounds the
// file payload; the receive limit leaves room for the envelope around it.
func NewGRPCServer(address string, l logging.Logger, us UserService, fs FileService, secretKey string, maxUpload int64) *GRPCServer {
	return &GRPCServer{
		address:        address,
		logger:         l.With("module", "grpc_server"),
		users:          us,
		files:          fs,
		jwtSecret:      []byte(secretKey),
		maxRecvMsgSize: recvLimit(maxUpload),
	}
}

// Payloads travel as base64 inside JSON, so the limit is 4/3 of the raw
// upload plus a fixed margin.
func recvLimit(maxUpload int64) int {
	const envelope = 64 << 10
	limit := maxUpload/3*4 + 4 + envelope
	if limit < 4<<20 {
		return 4 << 20
	}
	return int(limit)
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(
		grpc.MaxRecvMsgSize(s.maxRecvMsgSize),
		grpc.ChainUnaryInterceptor(s.observeInterceptor, s.accessTokenInterceptor),
	)

	api.RegisterStudyShareServer(srv, s)

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
