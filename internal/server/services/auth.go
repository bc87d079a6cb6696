package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/server/auth"
	sc "github.com/dmitrijs2005/mandaditos/internal/server/config"
)

// AuthService trades the shared access key for an access token.
type AuthService interface {
	Login(ctx context.Context, device string, accessKey []byte) (string, error)
	// Authenticate returns the device of a valid token.
	Authenticate(ctx context.Context, token string) (string, error)
}

type authService struct {
	config *sc.Config
}

func NewAuthService(c *sc.Config) AuthService {
	return &authService{config: c}
}

func (s *authService) Login(ctx context.Context, device string, accessKey []byte) (string, error) {
	device = strings.TrimSpace(device)
	if device == "" || len(accessKey) == 0 {
		return "", common.ErrorUnauthorized
	}
	if err := auth.CheckAccessKey(s.config.AccessKeyHash, accessKey); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return "", err
		}
		return "", errors.Join(common.ErrorInternal, err)
	}
	return auth.GenerateToken(device, []byte(s.config.SecretKey), s.config.AccessTokenValidityDuration)
}

func (s *authService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrInvalidToken
	}
	return auth.GetDeviceFromToken(token, []byte(s.config.SecretKey))
}
