package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "studyshare.StudyShare"

// Method names, as they appear after the service prefix.
const (
	MethodPing         = "Ping"
	MethodSignUp       = "SignUp"
	MethodSignIn       = "SignIn"
	MethodRefreshToken = "RefreshToken"
	MethodSignOut      = "SignOut"
	MethodWhoAmI       = "WhoAmI"
	MethodCategories   = "Categories"
	MethodListFiles    = "ListFiles"
	MethodUploadFile   = "UploadFile"
)

// FullMethod returns the gRPC full method name, e.g. "/studyshare.StudyShare/Ping".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// StudyShareServer is implemented by the backend.
type StudyShareServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error)
	SignIn(context.Context, *SignInRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error)
	WhoAmI(context.Context, *WhoAmIRequest) (*Identity, error)
	Categories(context.Context, *CategoriesRequest) (*CategoriesResponse, error)
	ListFiles(context.Context, *ListFilesRequest) (*ListFilesResponse, error)
	UploadFile(context.Context, *UploadFileRequest) (*UploadFileResponse, error)
}

// unary adapts a typed server method to grpc.MethodDesc.
func unary[Req, Resp any](method string, call func(StudyShareServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(StudyShareServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc is the descriptor passed to grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StudyShareServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, StudyShareServer.Ping),
		unary(MethodSignUp, StudyShareServer.SignUp),
		unary(MethodSignIn, StudyShareServer.SignIn),
		unary(MethodRefreshToken, StudyShareServer.RefreshToken),
		unary(MethodSignOut, StudyShareServer.SignOut),
		unary(MethodWhoAmI, StudyShareServer.WhoAmI),
		unary(MethodCategories, StudyShareServer.Categories),
		unary(MethodListFiles, StudyShareServer.ListFiles),
		unary(MethodUploadFile, StudyShareServer.UploadFile),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "studyshare.json",
}

func RegisterStudyShareServer(s grpc.ServiceRegistrar, srv StudyShareServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// StudyShareClient is the typed client for StudyShareServer.
type StudyShareClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*SignOutResponse, error)
	WhoAmI(ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption) (*Identity, error)
	Categories(ctx context.Context, in *CategoriesRequest, opts ...grpc.CallOption) (*CategoriesResponse, error)
	ListFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error)
	UploadFile(ctx context.Context, in *UploadFileRequest, opts ...grpc.CallOption) (*UploadFileResponse, error)
}

type studyShareClient struct {
	cc grpc.ClientConnInterface
}

func NewStudyShareClient(cc grpc.ClientConnInterface) StudyShareClient {
	return &studyShareClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *studyShareClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *studyShareClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error) {
	return invoke[SignUpResponse](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *studyShareClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *studyShareClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *studyShareClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*SignOutResponse, error) {
	return invoke[SignOutResponse](ctx, c.cc, MethodSignOut, in, opts)
}

func (c *studyShareClient) WhoAmI(ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption) (*Identity, error) {
	return invoke[Identity](ctx, c.cc, MethodWhoAmI, in, opts)
}

func (c *studyShareClient) Categories(ctx context.Context, in *CategoriesRequest, opts ...grpc.CallOption) (*CategoriesResponse, error) {
	return invoke[CategoriesResponse](ctx, c.cc, MethodCategories, in, opts)
}

func (c *studyShareClient) ListFiles(ctx context.Context, in *ListFilesRequest, opts ...grpc.CallOption) (*ListFilesResponse, error) {
	return invoke[ListFilesResponse](ctx, c.cc, MethodListFiles, in, opts)
}

func (c *studyShareClient) UploadFile(ctx context.Context, in *UploadFileRequest, opts ...grpc.CallOption) (*UploadFileResponse, error) {
	return invoke[UploadFileResponse](ctx, c.cc, MethodUploadFile, in, opts)
}
