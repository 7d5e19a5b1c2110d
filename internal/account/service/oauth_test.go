package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pingpong42/account/internal/account/service"
)

// fakeProvider stands in for the identity provider's token and profile
// endpoints.
func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		if r.FormValue("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"bearer","expires_in":7200}`))
	})
	mux.HandleFunc("GET /v2/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer provider-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 112233,
			"login": "dvader",
			"email": "dvader@student.42.fr",
			"image": {"link": "https://cdn.intra.42.fr/users/dvader.jpg"}
		}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOAuthService(srv *httptest.Server) *service.OAuthService {
	return &service.OAuthService{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:3000/callback",
		AuthURL:      srv.URL + "/oauth/authorize",
		TokenURL:     srv.URL + "/oauth/token",
		ProfileURL:   srv.URL + "/v2/me",
	}
}

func TestOAuthService_LoginParams(t *testing.T) {
	svc := &service.OAuthService{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:3000/callback",
	}

	params := svc.LoginParams()
	require.Equal(t, "client-id", params.ClientID)
	require.Equal(t, "http://localhost:3000/callback", params.RedirectURI)
}

func TestOAuthService_Callback(t *testing.T) {
	ctx := context.Background()
	svc := newOAuthService(fakeProvider(t))

	t.Run("missing code", func(t *testing.T) {
		_, err := svc.Callback(ctx, "")
		require.ErrorIs(t, err, service.ErrMissingCode)
	})

	t.Run("rejected code", func(t *testing.T) {
		_, err := svc.Callback(ctx, "bad-code")
		require.ErrorIs(t, err, service.ErrExchangeFailed)
	})

	t.Run("happy path", func(t *testing.T) {
		profile, err := svc.Callback(ctx, "good-code")
		require.NoError(t, err)
		require.Equal(t, "112233", profile.UserID)
		require.Equal(t, "dvader", profile.Name)
		require.Equal(t, "dvader@student.42.fr", profile.Email)
		require.Equal(t, "https://cdn.intra.42.fr/users/dvader.jpg", profile.Image)
	})
}

func TestOAuthService_Callback_ProviderDown(t *testing.T) {
	srv := fakeProvider(t)
	svc := newOAuthService(srv)
	srv.Close()

	_, err := svc.Callback(context.Background(), "good-code")
	require.ErrorIs(t, err, service.ErrExchangeFailed)
}
