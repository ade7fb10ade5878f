package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/studyshare/internal/api"
	"github.com/dmitrijs2005/studyshare/internal/category"
	"github.com/dmitrijs2005/studyshare/internal/client/models"
	"github.com/dmitrijs2005/studyshare/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL    string
	maxSendMsgSize int
	conn           *grpc.ClientConn
	client         api.StudyShareClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.refreshToken = access, refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, refresh := s.tokens()
	if method == api.FullMethod(api.MethodRefreshToken) || access == "" {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != api.ReasonTokenExpired {
		return err
	}
	if refresh == "" {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return rerr
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

// NewStudyShareClient connects to endpointURL. maxUpload sizes the send
// limit so files up to that many bytes fit in one call.
func NewStudyShareClient(endpointURL string, maxUpload int64) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, maxSendMsgSize: int(maxUpload/3*4) + 64<<10}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(s.maxSendMsgSize)),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewStudyShareClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password, school string) (bool, error) {
	resp, err := s.client.SignUp(ctx, &api.SignUpRequest{Email: email, Password: password, School: school})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.ConfirmationRequired, nil
}

func (s *GRPCClient) SignIn(ctx context.Context, email, password string) error {
	resp, err := s.client.SignIn(ctx, &api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (s *GRPCClient) Resume(ctx context.Context, refreshToken string) error {
	resp, err := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// SignOut revokes the refresh token on the server and forgets both tokens
// locally, even when the server call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refresh := s.tokens()
	if refresh == "" {
		return nil
	}
	_, err := s.client.SignOut(ctx, &api.SignOutRequest{RefreshToken: refresh})
	s.setTokens("", "")
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

// RefreshToken returns the current refresh token. It changes after every
// rotation, so callers persisting it should read it after each call.
func (s *GRPCClient) RefreshToken() string {
	_, refresh := s.tokens()
	return refresh
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*models.Identity, error) {
	resp, err := s.client.WhoAmI(ctx, &api.WhoAmIRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &models.Identity{UserID: resp.UserID, Email: resp.Email, School: resp.School}, nil
}

func (s *GRPCClient) Categories(ctx context.Context) ([]models.CategoryInfo, error) {
	resp, err := s.client.Categories(ctx, &api.CategoriesRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	out := make([]models.CategoryInfo, 0, len(resp.Categories))
	for _, c := range resp.Categories {
		out = append(out, models.CategoryInfo{ID: c.ID, Label: c.Label})
	}
	return out, nil
}

func (s *GRPCClient) ListFiles(ctx context.Context, scope models.Scope) ([]*models.File, error) {
	resp, err := s.client.ListFiles(ctx, &api.ListFilesRequest{
		Category:          scope.Category.String(),
		NameContains:      scope.NameContains,
		ClassCodeContains: scope.ClassCodeContains,
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	files := make([]*models.File, 0, len(resp.Files))
	for _, f := range resp.Files {
		files = append(files, fileFromAPI(f))
	}
	return files, nil
}

func (s *GRPCClient) UploadFile(ctx context.Context, u models.Upload) (*models.File, error) {
	resp, err := s.client.UploadFile(ctx, &api.UploadFileRequest{
		Content:     u.Content,
		FileName:    u.FileName,
		ClassCode:   u.ClassCode,
		Category:    u.Category.String(),
		DisplayName: u.DisplayName,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.File == nil {
		return nil, fmt.Errorf("rpc error: empty upload response")
	}
	return fileFromAPI(resp.File), nil
}

func fileFromAPI(f *api.File) *models.File {
	return &models.File{
		ID:         f.ID,
		Name:       f.Name,
		Path:       f.Path,
		ClassCode:  f.ClassCode,
		UserID:     f.UserID,
		SchoolName: f.SchoolName,
		PublicURL:  f.PublicURL,
		Category:   category.Category(f.Category),
		Rating:     f.Rating,
		CreatedAt:  f.CreatedAt,
	}
}

// reasons maps status messages onto the shared sentinels.
var reasons = map[string]error{
	api.ReasonEmailNotConfirmed: common.ErrEmailNotConfirmed,
	api.ReasonEmailTaken:        common.ErrEmailTaken,
	api.ReasonPathConflict:      common.ErrPathConflict,
	api.ReasonInvalidCategory:   common.ErrInvalidCategory,
	api.ReasonProfile:           common.ErrProfileResolution,
	api.ReasonQuery:             common.ErrQueryFailed,
	api.ReasonObjectWrite:       common.ErrObjectWrite,
	api.ReasonURLResolution:     common.ErrURLResolution,
	api.ReasonMetadataInsert:    common.ErrMetadataInsert,
	api.ReasonOrphanedObject:    common.ErrOrphanedObject,
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	if mapped := fromReasons(st); mapped != nil {
		return mapped
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, st.Message())
	case codes.Unavailable:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// fromReasons rebuilds the sentinels named in the status message. A step
// that timed out comes back as both common.ErrTimeout and the step.
func fromReasons(st *status.Status) error {
	var errs []error
	if st.Code() == codes.DeadlineExceeded {
		errs = append(errs, common.ErrTimeout)
	}
	for _, r := range api.SplitReasons(st.Message()) {
		if sentinel, ok := reasons[r]; ok {
			errs = append(errs, sentinel)
		}
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}
