package grpc

import (
	"context"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/moderation"
	"google.golang.org/grpc"
)

const (
	ServiceName         = "marketplace.v1.ModerationService"
	CheckTextMethod     = "/" + ServiceName + "/CheckText"
	ValidateDraftMethod = "/" + ServiceName + "/ValidateDraft"
)

type CheckTextRequest struct {
	Text string `json:"text"`
}

type CheckTextResponse struct {
	Result moderation.Result `json:"result"`
}

type ValidateDraftRequest struct {
	Draft domain.Draft `json:"draft"`
}

type ValidateDraftResponse struct {
	Verdict domain.Verdict `json:"verdict"`
}

// ModerationServer is implemented by Handler.
type ModerationServer interface {
	CheckText(ctx context.Context, req *CheckTextRequest) (*CheckTextResponse, error)
	ValidateDraft(ctx context.Context, req *ValidateDraftRequest) (*ValidateDraftResponse, error)
}

var moderationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ModerationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckText", Handler: checkTextHandler},
		{MethodName: "ValidateDraft", Handler: validateDraftHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/v1/moderation",
}

func RegisterModerationServer(s grpc.ServiceRegistrar, srv ModerationServer) {
	s.RegisterService(&moderationServiceDesc, srv)
}

func checkTextHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CheckTextRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ModerationServer).CheckText(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CheckTextMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ModerationServer).CheckText(ctx, req.(*CheckTextRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func validateDraftHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ValidateDraftRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ModerationServer).ValidateDraft(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ValidateDraftMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ModerationServer).ValidateDraft(ctx, req.(*ValidateDraftRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ModerationClient calls the service over an existing connection using the
// JSON codec.
type ModerationClient struct {
	cc grpc.ClientConnInterface
}

func NewModerationClient(cc grpc.ClientConnInterface) *ModerationClient {
	return &ModerationClient{cc: cc}
}

func (c *ModerationClient) CheckText(ctx context.Context, in *CheckTextRequest, opts ...grpc.CallOption) (*CheckTextResponse, error) {
	out := new(CheckTextResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, CheckTextMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ModerationClient) ValidateDraft(ctx context.Context, in *ValidateDraftRequest, opts ...grpc.CallOption) (*ValidateDraftResponse, error) {
	out := new(ValidateDraftResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, ValidateDraftMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
