package docstore

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

type LoginRequest struct {
	Device    string `json:"device"`
	AccessKey string `json:"accessKey"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

type PingResponse struct {
	Status string `json:"status"`
}

type CreateRequest struct {
	Collection string         `json:"-"`
	OriginID   string         `json:"originId"`
	Payload    map[string]any `json:"payload"`
}

type CreateResponse struct {
	RemoteID string `json:"remoteId"`
}

type UpdateRequest struct {
	Collection string         `json:"-"`
	RemoteID   string         `json:"-"`
	Payload    map[string]any `json:"payload"`
}

type ListRequest struct {
	Collection string
	Field      string
	Value      string
}

type Document struct {
	RemoteID string         `json:"remoteId"`
	OriginID string         `json:"originId"`
	Payload  map[string]any `json:"payload"`
}

type ListResponse struct {
	Documents []Document `json:"documents"`
}

type DeleteRequest struct {
	Collection string
	RemoteID   string
}

type ExportRequest struct {
	Collection string
}

type ExportResponse struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Normalize rewrites v so structpb can hold it: json.Number becomes a
// float64 and nested maps and slices are walked.
func Normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return f
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}

func toStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(Normalize(m).(map[string]any))
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return s, nil
}

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func payload(s *structpb.Struct) map[string]any {
	p := s.GetFields()["payload"].GetStructValue()
	if p == nil {
		return map[string]any{}
	}
	return p.AsMap()
}

func (r LoginRequest) Struct() (*structpb.Struct, error) {
	return toStruct(map[string]any{"device": r.Device, "access_key": r.AccessKey})
}

func DecodeLoginRequest(s *structpb.Struct) LoginRequest {
	return LoginRequest{Device: str(s, "device"), AccessKey: str(s, "access_key")}
}

func (r LoginResponse) Struct() (*structpb.Struct, error) {
	return toStruct(map[string]any{"access_token": r.AccessToken})
}

func DecodeLoginResponse(s *structpb.Struct) LoginResponse {
	return LoginResponse{AccessToken: str(s, "access_token")}
}

func (r PingResponse) Struct() (*structpb.Struct, error) {
	return toStruct(map[string]any{"status": r.Status})
}

func DecodePingResponse(s *structpb.Struct) PingResponse {
	return PingResponse{Status: str(s, "status")}
}

func (r CreateRequest) Struct() (*structpb.Struct, error) {
	return toStruct(map[string]any{
		"collection": r.Collection,
		"origin_id":  r.OriginID,
		"payload":    nonNil(r.Payload),
	})
}

func DecodeCreateRequest(s *structpb.Struct) CreateRequest {
	return CreateRequest{Collection: str(s, "collection"), OriginID: str(s, "origin_id"), Payload: payload(s)}
}

func (r CreateResponse) Struct() (*structpb.Struct, error) {
	return toStruct(map[string]any{"remote_id": r.RemoteID})
}

func DecodeCreateResponse(s *structpb.Struct) CreateResponse {
	return CreateResponse{RemoteID: str(s, "remote_id")}
}

func (r UpdateRequest) Struct() (*structpb.Struct, error) {
	return toStruct(map[string]any{
		"collection": r.Collection,
		"remote_id":  r.RemoteID,
		"payload":    nonNil(r.Payload),
	})
}

func DecodeUpdateRequest(s *structpb.Struct) UpdateRequest {
	return UpdateRequest{Collection: str(s, "collection"), RemoteID: str(s, "remote_id"), Payload: payload(s)}
}

func (r ListRequest) Struct() (*structpb.Struct, error) {
	return toStruct(map[string]any{"collection": r.Collection, "field": r.Field, "value": r.Value})
}

func DecodeListRequest(s *structpb.Struct) ListRequest {
	return ListRequest{Collection: str(s, "collection"), Field: str(s, "field"), Value: str(s, "value")}
}

func (r ListResponse) Struct() (*structpb.Struct, error) {
	docs := make([]any, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, map[string]any{
			"remote_id": d.RemoteID,
			"origin_id": d.OriginID,
			"payload":   nonNil(d.Payload),
		})
	}
	return toStruct(map[string]any{"documents": docs})
}

func DecodeListResponse(s *structpb.Struct) ListResponse {
	values := s.GetFields()["documents"].GetListValue().GetValues()
	out := ListResponse{Documents: make([]Document, 0, len(values))}
	for _, v := range values {
		doc := v.GetStructValue()
		if doc == nil {
			continue
		}
		out.Documents = append(out.Documents, Document{
			RemoteID: str(doc, "remote_id"),
			OriginID: str(doc, "origin_id"),
			Payload:  payload(doc),
		})
	}
	return out
}

func (r DeleteRequest) Struct() (*structpb.Struct, error) {
	return toStruct(map[string]any{"collection": r.Collection, "remote_id": r.RemoteID})
}

func DecodeDeleteRequest(s *structpb.Struct) DeleteRequest {
	return DeleteRequest{Collection: str(s, "collection"), RemoteID: str(s, "remote_id")}
}

func (r ExportRequest) Struct() (*structpb.Struct, error) {
	return toStruct(map[string]any{"collection": r.Collection})
}

func DecodeExportRequest(s *structpb.Struct) ExportRequest {
	return ExportRequest{Collection: str(s, "collection")}
}

func (r ExportResponse) Struct() (*structpb.Struct, error) {
	return toStruct(map[string]any{"key": r.Key, "count": r.Count})
}

func DecodeExportResponse(s *structpb.Struct) ExportResponse {
	return ExportResponse{Key: str(s, "key"), Count: int(s.GetFields()["count"].GetNumberValue())}
}

// Empty is the reply of calls that return nothing.
func Empty() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}
}

func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
