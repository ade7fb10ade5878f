package grpc

import (
	"errors"

	"github.com/dmitrijs2005/studyshare/internal/api"
	"github.com/dmitrijs2005/studyshare/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// steps are the failures that share codes.Unavailable and are told apart by
// their reason. A step that timed out keeps its reason under DeadlineExceeded.
var steps = []struct {
	err    error
	reason string
}{
	{common.ErrObjectWrite, api.ReasonObjectWrite},
	{common.ErrURLResolution, api.ReasonURLResolution},
	{common.ErrMetadataInsert, api.ReasonMetadataInsert},
	{common.ErrProfileResolution, api.ReasonProfile},
	{common.ErrQueryFailed, api.ReasonQuery},
}

// toStatus maps service errors onto gRPC status codes. Messages are fixed
// reasons so internal details such as driver errors or object paths never
// reach the client. The only exception is validation text, which the
// services compose for the user.
func toStatus(err error) error {
	if st, ok := stepStatus(err); ok {
		return st
	}

	switch {
	case errors.Is(err, common.ErrTimeout):
		return status.Error(codes.DeadlineExceeded, api.ReasonTimeout)
	case errors.Is(err, common.ErrInvalidCategory):
		return status.Error(codes.InvalidArgument, api.ReasonInvalidCategory)
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrPathConflict):
		return status.Error(codes.AlreadyExists, api.ReasonPathConflict)
	case errors.Is(err, common.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, api.ReasonEmailTaken)
	case errors.Is(err, common.ErrEmailNotConfirmed):
		return status.Error(codes.FailedPrecondition, api.ReasonEmailNotConfirmed)
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, api.ReasonInvalidToken)
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func stepStatus(err error) (error, bool) {
	for _, s := range steps {
		if !errors.Is(err, s.err) {
			continue
		}

		reasons := []string{s.reason}
		if errors.Is(err, common.ErrOrphanedObject) {
			reasons = append(reasons, api.ReasonOrphanedObject)
		}

		code := codes.Unavailable
		if errors.Is(err, common.ErrTimeout) {
			code = codes.DeadlineExceeded
		}
		return status.Error(code, api.JoinReasons(reasons...)), true
	}
	return nil, false
}
