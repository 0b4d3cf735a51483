package flows

import (
	"context"

	"github.com/MrEthical07/goAuthClient/model"
)

// Service is the centralized flow runner built once by the root client.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with a remote.
func (s Service) Initialized() bool {
	return s.deps.ready()
}

func (s Service) LoginAuto(ctx context.Context) Result {
	return RunLoginAuto(ctx, s.deps)
}

func (s Service) LoadUserData(ctx context.Context, userID string) Result {
	return RunLoadUserData(ctx, userID, s.deps)
}

func (s Service) LoginUserByPassword(ctx context.Context, form model.EmailLoginForm) Result {
	return RunLoginUserByPassword(ctx, form, s.deps)
}

func (s Service) LoginUserByJWT(ctx context.Context, accessToken, redirectSuccess, redirectError string) Result {
	return RunLoginUserByJWT(ctx, accessToken, redirectSuccess, redirectError, s.deps)
}

func (s Service) LoginUserByOAuth(ctx context.Context, provider model.ProviderType) Result {
	return RunLoginUserByOAuth(ctx, provider, s.deps)
}

func (s Service) LogoutUser(ctx context.Context) Result {
	return RunLogoutUser(ctx, s.deps)
}

func (s Service) RegisterUserByEmail(ctx context.Context, form model.EmailRegistrationForm) Result {
	return RunRegisterUserByEmail(ctx, form, s.deps)
}

func (s Service) VerifyEmail(ctx context.Context, token string) Result {
	return RunVerifyEmail(ctx, token, s.deps)
}

func (s Service) ResendVerificationEmail(ctx context.Context, email string) Result {
	return RunResendVerificationEmail(ctx, email, s.deps)
}

func (s Service) ForgotPassword(ctx context.Context, email string) Result {
	return RunForgotPassword(ctx, email, s.deps)
}

func (s Service) ResetPassword(ctx context.Context, token, password string) Result {
	return RunResetPassword(ctx, token, password, s.deps)
}

func (s Service) CreateMagicLink(ctx context.Context, input string, channel Channel) Result {
	return RunCreateMagicLink(ctx, input, channel, s.deps)
}

func (s Service) AddConnectionByPassword(ctx context.Context, form model.EmailLoginForm, userID string) Result {
	return RunAddConnectionByPassword(ctx, form, userID, s.deps)
}

func (s Service) AddConnectionByEmail(ctx context.Context, email, userID string) Result {
	return RunAddConnectionByEmail(ctx, email, userID, s.deps)
}

func (s Service) AddConnectionBySMS(ctx context.Context, phone, userID string) Result {
	return RunAddConnectionBySMS(ctx, phone, userID, s.deps)
}

func (s Service) AddConnectionByOAuth(ctx context.Context, provider model.ProviderType, userID string) Result {
	return RunAddConnectionByOAuth(ctx, provider, userID, s.deps)
}

func (s Service) RemoveConnection(ctx context.Context, identityProviderID, userID string) Result {
	return RunRemoveConnection(ctx, identityProviderID, userID, s.deps)
}

func (s Service) RefreshConnections(ctx context.Context, userID string) Result {
	return RunRefreshConnections(ctx, userID, s.deps)
}

func (s Service) UpdateUserSettings(ctx context.Context, id string, data any) Result {
	return RunUpdateUserSettings(ctx, id, data, s.deps)
}
