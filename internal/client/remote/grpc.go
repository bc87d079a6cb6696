package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/docstore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *docstore.Client

	mu          sync.RWMutex
	accessToken string
	creds       Credentials
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

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if method == docstore.FullMethod(docstore.MethodLogin) || method == docstore.FullMethod(docstore.MethodPing) {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, s.token()), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated {
		return err
	}
	if st.Message() != common.ErrTokenExpired.Error() && s.token() != "" {
		return err
	}

	s.mu.RLock()
	creds := s.creds
	s.mu.RUnlock()
	if creds.AccessKey == "" {
		return err
	}

	if lerr := s.Login(ctx, creds); lerr != nil {
		return err
	}

	return invoker(withAccessToken(ctx, s.token()), method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL lazily; no connection is made until the
// first call. Extra options are appended after the defaults.
func NewGRPCClient(endpointURL string, creds Credentials, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, creds: creds}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)
	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client[%s]: %w", endpointURL, err)
	}
	c.conn = conn
	c.client = docstore.NewClient(conn)
	return c, nil
}

func (s *GRPCClient) call(ctx context.Context, method string, in interface{ Struct() (*structpb.Struct, error) }) (*structpb.Struct, error) {
	req, err := in.Struct()
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Call(ctx, method, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

// Login exchanges creds for an access token and remembers creds for
// re-login after expiry.
func (s *GRPCClient) Login(ctx context.Context, creds Credentials) error {
	resp, err := s.call(ctx, docstore.MethodLogin, docstore.LoginRequest{Device: creds.Device, AccessKey: creds.AccessKey})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = docstore.DecodeLoginResponse(resp).AccessToken
	s.creds = creds
	s.mu.Unlock()
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Call(ctx, docstore.MethodPing, docstore.Empty())
	if err != nil {
		return s.mapError(err)
	}
	if docstore.DecodePingResponse(resp).Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Create(ctx context.Context, kind models.Kind, originID string, p models.Payload) (string, error) {
	resp, err := s.call(ctx, docstore.MethodCreate, docstore.CreateRequest{
		Collection: string(kind),
		OriginID:   originID,
		Payload:    map[string]any(p),
	})
	if err != nil {
		return "", err
	}
	return docstore.DecodeCreateResponse(resp).RemoteID, nil
}

func (s *GRPCClient) Update(ctx context.Context, kind models.Kind, remoteID string, p models.Payload) error {
	_, err := s.call(ctx, docstore.MethodUpdate, docstore.UpdateRequest{
		Collection: string(kind),
		RemoteID:   remoteID,
		Payload:    map[string]any(p),
	})
	return err
}

func (s *GRPCClient) List(ctx context.Context, kind models.Kind, f Filter) ([]Document, error) {
	resp, err := s.call(ctx, docstore.MethodList, docstore.ListRequest{
		Collection: string(kind),
		Field:      f.Field,
		Value:      f.Value,
	})
	if err != nil {
		return nil, err
	}
	return fromWire(docstore.DecodeListResponse(resp).Documents), nil
}

func (s *GRPCClient) Delete(ctx context.Context, kind models.Kind, remoteID string) error {
	_, err := s.call(ctx, docstore.MethodDelete, docstore.DeleteRequest{Collection: string(kind), RemoteID: remoteID})
	return err
}

func (s *GRPCClient) Export(ctx context.Context, kind models.Kind) (string, int, error) {
	resp, err := s.call(ctx, docstore.MethodExport, docstore.ExportRequest{Collection: string(kind)})
	if err != nil {
		return "", 0, err
	}
	out := docstore.DecodeExportResponse(resp)
	return out.Key, out.Count, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return ErrNotFound
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func fromWire(docs []docstore.Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, Document{RemoteID: d.RemoteID, OriginID: d.OriginID, Payload: models.Payload(d.Payload)})
	}
	return out
}
