package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mandaditos/internal/client/models"
	"github.com/dmitrijs2005/mandaditos/internal/client/remote"
)

// AuthService handles the device login and server liveness.
type AuthService interface {
	Login(ctx context.Context, device string, accessKey []byte) error
	Ping(ctx context.Context) error
	// Backup asks the server to export kind and returns the object key.
	Backup(ctx context.Context, kind models.Kind) (string, int, error)
	Close(ctx context.Context) error
}

type authService struct {
	client remote.Client
}

func NewAuthService(c remote.Client) AuthService {
	return &authService{client: c}
}

func (a *authService) Login(ctx context.Context, device string, accessKey []byte) error {
	if device == "" || len(accessKey) == 0 {
		return &models.ValidationError{Field: "accessKey", Message: "device and access key are required"}
	}
	err := a.client.Login(ctx, remote.Credentials{Device: device, AccessKey: string(accessKey)})
	if err != nil {
		if errors.Is(err, remote.ErrUnauthorized) {
			return remote.ErrUnauthorized
		}
		return fmt.Errorf("login failed: %w", err)
	}
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Backup(ctx context.Context, kind models.Kind) (string, int, error) {
	key, n, err := a.client.Export(ctx, kind)
	if err != nil {
		return "", 0, fmt.Errorf("backup %s: %w", kind, err)
	}
	return key, n, nil
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
