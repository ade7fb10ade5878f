package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/api"
	"github.com/dmitrijs2005/studyshare/internal/common"
	"github.com/dmitrijs2005/studyshare/internal/logging"
	"github.com/dmitrijs2005/studyshare/internal/server/auth"
	"github.com/dmitrijs2005/studyshare/internal/server/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// protectedMethods need a valid access token.
var protectedMethods = map[string]bool{
	api.FullMethod(api.MethodSignOut):    true,
	api.FullMethod(api.MethodWhoAmI):     true,
	api.FullMethod(api.MethodListFiles):  true,
	api.FullMethod(api.MethodUploadFile): true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, api.ReasonMissingToken)
	}

	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, status.Error(codes.Unauthenticated, api.ReasonTokenExpired)
		}
		return nil, status.Error(codes.Unauthenticated, api.ReasonInvalidToken)
	}

	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = logging.ContextWith(ctx, "user_id", userID)
	return handler(ctx, req)
}

// observeInterceptor records latency and status code per method and logs
// failed calls.
func (s *GRPCServer) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	method := info.FullMethod[strings.LastIndex(info.FullMethod, "/")+1:]
	ctx = logging.ContextWith(ctx, "method", method)

	resp, err := handler(ctx, req)

	code := status.Code(err)
	metrics.GRPCRequestsTotal.WithLabelValues(method, code.String()).Inc()
	metrics.GRPCRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	if err != nil {
		s.logger.Warn(ctx, "request failed", "code", code.String(), "error", err.Error())
	} else {
		s.logger.Debug(ctx, "request served", "duration", time.Since(start).String())
	}
	return resp, err
}

func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
