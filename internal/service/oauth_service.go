package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yourusername/reviewbot-api/internal/config"
	"github.com/yourusername/reviewbot-api/internal/domain/entity"
	"github.com/yourusername/reviewbot-api/internal/domain/repository"
	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
)

const (
	oauthStatePrefix = "oauth_state:"
	oauthStateTTL    = 10 * time.Minute
)

// providerEndpoints holds the fixed OAuth endpoints per provider. The two
// providers are structurally interchangeable: authorize, exchange, fetch a
// profile carrying a durable ID and an optional email. Only the URLs and
// scopes differ.
type providerEndpoints struct {
	authURL     string
	tokenURL    string
	userInfoURL string
	scopes      []string
}

var endpoints = map[entity.AuthProvider]providerEndpoints{
	entity.ProviderGoogle: {
		authURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		tokenURL:    "https://oauth2.googleapis.com/token",
		userInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		scopes:      []string{"openid", "email", "profile"},
	},
	entity.ProviderDiscord: {
		authURL:     "https://discord.com/oauth2/authorize",
		tokenURL:    "https://discord.com/api/oauth2/token",
		userInfoURL: "https://discord.com/api/users/@me",
		scopes:      []string{"identify", "email"},
	},
}

// OAuthProfile is what the core trusts from a completed provider flow: the
// provider's durable account ID plus an email the provider may or may not
// have verified.
type OAuthProfile struct {
	ProviderID string
	Email      string
}

// OAuthService runs the redirect flow for both providers and resolves the
// resulting profile to exactly one local identity.
type OAuthService struct {
	userRepo   repository.UserRepository
	stateStore repository.CacheRepository
	cfg        config.OAuthConfig
	httpClient *http.Client
}

// NewOAuthService creates the OAuth flow service.
func NewOAuthService(userRepo repository.UserRepository, stateStore repository.CacheRepository, cfg config.OAuthConfig) (*OAuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for OAuthService")
	}
	if stateStore == nil {
		return nil, fmt.Errorf("CacheRepository is required for OAuthService")
	}
	return &OAuthService{
		userRepo:   userRepo,
		stateStore: stateStore,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Enabled reports whether the provider has credentials configured.
func (s *OAuthService) Enabled(provider entity.AuthProvider) bool {
	pc, err := s.providerConfig(provider)
	return err == nil && pc.ClientID != "" && pc.ClientSecret != ""
}

// AuthURL builds the provider's authorize URL with a fresh single-use state
// parameter. The state is stored server-side with a short TTL; the callback
// consumes it exactly once.
func (s *OAuthService) AuthURL(ctx context.Context, provider entity.AuthProvider) (string, error) {
	pc, err := s.providerConfig(provider)
	if err != nil {
		return "", err
	}
	ep := endpoints[provider]

	state, err := generateState()
	if err != nil {
		return "", err
	}
	if err := s.stateStore.Set(ctx, oauthStatePrefix+state, string(provider), oauthStateTTL); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	values := url.Values{}
	values.Set("client_id", pc.ClientID)
	values.Set("redirect_uri", pc.RedirectURL)
	values.Set("response_type", "code")
	values.Set("scope", strings.Join(ep.scopes, " "))
	values.Set("state", state)

	return ep.authURL + "?" + values.Encode(), nil
}

// HandleCallback completes the redirect flow: consume the state, exchange
// the code, fetch the profile and resolve it to a local identity. The
// session binding is the handler's job.
func (s *OAuthService) HandleCallback(ctx context.Context, provider entity.AuthProvider, state, code string) (*entity.User, error) {
	if err := s.consumeState(ctx, provider, state); err != nil {
		return nil, err
	}

	accessToken, err := s.exchangeCode(ctx, provider, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.fetchProfile(ctx, provider, accessToken)
	if err != nil {
		return nil, err
	}

	return s.Resolve(ctx, provider, profile.ProviderID, profile.Email)
}

// Resolve maps an external profile to exactly one identity. In order:
// repeat login by provider ID, linking by email, creation from the profile.
// A provider-ID match always wins over an email match: the provider ID is a
// more specific claim of identity than an email that could be presented by
// two accounts at different times.
//
// Linking by email happens without re-verification, mirroring the original
// flow. The local credential is never touched on this path.
func (s *OAuthService) Resolve(ctx context.Context, provider entity.AuthProvider, providerID, email string) (*entity.User, error) {
	if !provider.Valid() {
		return nil, fmt.Errorf("%w: unknown auth provider %q", apperrors.ErrValidation, provider)
	}
	if providerID == "" {
		return nil, fmt.Errorf("%w: provider ID is empty", apperrors.ErrValidation)
	}
	email = normalizeEmail(email)

	// 1. Repeat login.
	user, err := s.userRepo.GetByProviderID(ctx, provider, providerID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up provider identity: %w", err)
	}

	// 2. Account linking by email.
	if email != "" {
		user, err = s.userRepo.GetByEmail(ctx, email)
		if err == nil {
			if err := s.userRepo.UpdateProviderID(ctx, user.ID, provider, providerID); err != nil {
				return nil, fmt.Errorf("failed to link %s identity: %w", provider, err)
			}
			user.SetProviderID(provider, providerID)
			log.Printf("[OAuthService] Linked %s identity to existing account %s", provider, user.Email)
			return user, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user by email: %w", err)
		}
	}

	// 3. Nothing matched and no email to create with.
	if email == "" {
		return nil, ErrMissingEmail
	}

	// 4. Create a new identity from the profile. No local credential.
	user = &entity.User{
		Email:        email,
		AuthProvider: provider,
	}
	user.SetProviderID(provider, providerID)
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent signup or callback may have won the email between
		// steps 2 and 4; resolve the rejection as a link, not a failure.
		if errors.Is(err, repository.ErrEmailTaken) {
			return s.linkByEmail(ctx, provider, providerID, email)
		}
		return nil, fmt.Errorf("failed to create user from %s profile: %w", provider, err)
	}

	log.Printf("[OAuthService] Created account %s from %s profile", user.Email, provider)
	return user, nil
}

// linkByEmail attaches the provider ID to the account currently holding the
// email. Used only to settle a create race already rejected by the store.
func (s *OAuthService) linkByEmail(ctx context.Context, provider entity.AuthProvider, providerID, email string) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	if existing := user.ProviderID(provider); existing != nil && *existing == providerID {
		return user, nil
	}
	if err := s.userRepo.UpdateProviderID(ctx, user.ID, provider, providerID); err != nil {
		return nil, fmt.Errorf("failed to link %s identity: %w", provider, err)
	}
	user.SetProviderID(provider, providerID)
	return user, nil
}

// consumeState validates and removes the callback's state parameter in one
// atomic step, so a state passes at most one callback even when two arrive
// concurrently. A state that is unknown, expired, already consumed or bound
// to a different provider is rejected; the provider-mismatch case still
// burns the state.
func (s *OAuthService) consumeState(ctx context.Context, provider entity.AuthProvider, state string) error {
	if state == "" {
		return ErrInvalidOAuthState
	}
	stored, err := s.stateStore.GetDel(ctx, oauthStatePrefix+state)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrInvalidOAuthState
		}
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}
	if stored != string(provider) {
		return ErrInvalidOAuthState
	}
	return nil
}

// exchangeCode trades the authorization code for an access token.
func (s *OAuthService) exchangeCode(ctx context.Context, provider entity.AuthProvider, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("%w: authorization code is required", apperrors.ErrValidation)
	}
	pc, err := s.providerConfig(provider)
	if err != nil {
		return "", err
	}
	ep := endpoints[provider]

	values := url.Values{}
	values.Set("client_id", pc.ClientID)
	values.Set("client_secret", pc.ClientSecret)
	values.Set("redirect_uri", pc.RedirectURL)
	values.Set("grant_type", "authorization_code")
	values.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.tokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create %s token exchange request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s token exchange request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%s token exchange status=%d body=%s", provider, resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse %s token exchange response: %w", provider, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("access_token not returned by %s token exchange", provider)
	}
	return payload.AccessToken, nil
}

// fetchProfile retrieves the provider profile with the access token.
// Google's userinfo carries the durable ID in "sub", Discord's in "id";
// both call the email field "email".
func (s *OAuthService) fetchProfile(ctx context.Context, provider entity.AuthProvider, accessToken string) (*OAuthProfile, error) {
	ep := endpoints[provider]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s userinfo request: %w", provider, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s userinfo request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%s userinfo status=%d body=%s", provider, resp.StatusCode, string(body))
	}

	var payload struct {
		Sub   string `json:"sub"`
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse %s userinfo response: %w", provider, err)
	}

	providerID := payload.Sub
	if providerID == "" {
		providerID = payload.ID
	}
	if providerID == "" {
		return nil, fmt.Errorf("%s userinfo response carries no account ID", provider)
	}

	return &OAuthProfile{ProviderID: providerID, Email: payload.Email}, nil
}

func (s *OAuthService) providerConfig(provider entity.AuthProvider) (config.OAuthProviderConfig, error) {
	switch provider {
	case entity.ProviderGoogle:
		return s.cfg.Google, nil
	case entity.ProviderDiscord:
		return s.cfg.Discord, nil
	default:
		return config.OAuthProviderConfig{}, fmt.Errorf("%w: unknown auth provider %q", apperrors.ErrValidation, provider)
	}
}

func generateState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
