package grpc

import (
	"context"

	"github.com/dmitrijs2005/studyshare/internal/api"
	"github.com/dmitrijs2005/studyshare/internal/category"
	"github.com/dmitrijs2005/studyshare/internal/server/models"
	"github.com/dmitrijs2005/studyshare/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *api.SignUpRequest) (*api.SignUpResponse, error) {
	s.logger.Info(ctx, "Registration request", "school", req.School)

	user, err := s.users.SignUp(ctx, services.SignUpRequest{
		Email:          req.Email,
		Password:       req.Password,
		School:         req.School,
		RedirectTarget: req.RedirectTarget,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return &api.SignUpResponse{UserID: user.ID, ConfirmationRequired: !user.Confirmed()}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *api.SignInRequest) (*api.TokenResponse, error) {
	tokens, err := s.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *api.SignOutRequest) (*api.SignOutResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, api.ReasonMissingToken)
	}
	if err := s.users.SignOut(ctx, userID, req.RefreshToken); err != nil {
		return nil, toStatus(err)
	}
	return &api.SignOutResponse{}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, req *api.WhoAmIRequest) (*api.Identity, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, api.ReasonMissingToken)
	}
	id, err := s.users.Identity(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.Identity{UserID: id.UserID, Email: id.Email, School: id.School}, nil
}

func (s *GRPCServer) Categories(ctx context.Context, req *api.CategoriesRequest) (*api.CategoriesResponse, error) {
	all := category.All()
	out := make([]api.CategoryInfo, 0, len(all))
	for _, c := range all {
		out = append(out, api.CategoryInfo{ID: c.String(), Label: c.Label()})
	}
	return &api.CategoriesResponse{Categories: out}, nil
}

func (s *GRPCServer) ListFiles(ctx context.Context, req *api.ListFilesRequest) (*api.ListFilesResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, api.ReasonMissingToken)
	}

	files, err := s.files.List(ctx, userID, services.ListRequest{
		Category:          req.Category,
		NameContains:      req.NameContains,
		ClassCodeContains: req.ClassCodeContains,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	out := make([]*api.File, 0, len(files))
	for _, f := range files {
		out = append(out, fileToAPI(f))
	}
	return &api.ListFilesResponse{Files: out}, nil
}

func (s *GRPCServer) UploadFile(ctx context.Context, req *api.UploadFileRequest) (*api.UploadFileResponse, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, api.ReasonMissingToken)
	}

	f, err := s.files.Upload(ctx, userID, services.UploadRequest{
		Content:     req.Content,
		FileName:    req.FileName,
		ClassCode:   req.ClassCode,
		Category:    req.Category,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "File uploaded", "user_id", userID, "path", f.Path)
	return &api.UploadFileResponse{File: fileToAPI(f)}, nil
}

func fileToAPI(f *models.File) *api.File {
	return &api.File{
		ID:         f.ID,
		Name:       f.Name,
		Path:       f.Path,
		ClassCode:  f.ClassCode,
		UserID:     f.UserID,
		SchoolName: f.SchoolName,
		PublicURL:  f.PublicURL,
		Category:   f.Category.String(),
		Rating:     f.Rating,
		CreatedAt:  f.CreatedAt,
	}
}
