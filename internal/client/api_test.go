package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_LoginSendsJSONAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ann@x.io", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Login successful!","token":"tok","userId":"u1","user":{"id":"u1","firstName":"Ann","lastName":"Lee","email":"ann@x.io"}}`))
	}))
	defer srv.Close()

	resp, err := NewAPI(srv.URL+"/api/", time.Second).Login(context.Background(), "ann@x.io", "pw123456")

	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "Ann", resp.User.FirstName)
}

func TestAPI_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"r1","author":"Ann Lee","first_name":"Ann","last_name":"Lee","title":"Great","content":"Nice","rating":5,"created_at":"2024-05-01T12:00:00Z"}]`))
	}))
	defer srv.Close()

	reviews, err := NewAPI(srv.URL, time.Second).MyReviews(context.Background(), "tok")

	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, 2024, reviews[0].CreatedAt.Year())
}

func TestAPI_ErrorResponses(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		want   string
	}{
		"error field":   {http.StatusConflict, `{"error":"Account already exists with this email."}`, "Account already exists with this email."},
		"message field": {http.StatusUnauthorized, `{"message":"Invalid email or password."}`, "Invalid email or password."},
		"no body":       {http.StatusBadGateway, ``, "Request failed"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewAPI(srv.URL, time.Second).Register(context.Background(), RegisterRequest{Email: "ann@x.io"})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.want, apiErr.Error())
		})
	}
}

func TestAPI_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAPI(url, time.Second).Reviews(context.Background())

	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestAPI_Stats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reviews/stats", r.URL.Path)
		_, _ = w.Write([]byte(`{"count":2,"average":4,"distribution":{"1":0,"2":0,"3":1,"4":0,"5":1}}`))
	}))
	defer srv.Close()

	stats, err := NewAPI(srv.URL, time.Second).Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 1, stats.Distribution[5])
}

func TestAPI_BreakerOpensAfterRepeatedServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Internal server error."}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, time.Second)

	for i := 0; i < breakerThreshold; i++ {
		_, err := api.Reviews(context.Background())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Internal server error.", apiErr.Message)
	}

	_, err := api.Reviews(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(breakerThreshold), hits.Load())
}

func TestAPI_ClientErrorsDoNotOpenBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid email or password."}`))
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, time.Second)

	for i := 0; i < breakerThreshold+2; i++ {
		_, err := api.Login(context.Background(), "ann@x.io", "nope")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	}
}
