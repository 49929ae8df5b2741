package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// breakerThreshold consecutive transport failures or 5xx responses open the
// breaker for breakerCooldown; calls fail fast with ErrUnavailable meanwhile.
const (
	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
)

// ErrUnavailable wraps transport failures, as opposed to error responses.
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx response. Message is the server's "error" field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type Review struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type Stats struct {
	Count        int         `json:"count"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
}

type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	User    User   `json:"user"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
}

type ReviewRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// API is a thin JSON client for the reviews backend.
type API struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

func NewAPI(baseURL string, timeout time.Duration) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:    "reviews-api",
			Timeout: breakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerThreshold
			},
		}),
	}
}

func (a *API) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var resp AuthResponse
	err := a.do(ctx, http.MethodPost, "/register", "", req, &resp)
	return resp, err
}

func (a *API) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"email": email, "password": password}
	err := a.do(ctx, http.MethodPost, "/login", "", body, &resp)
	return resp, err
}

func (a *API) Profile(ctx context.Context, token string) (User, error) {
	var resp struct {
		User User `json:"user"`
	}
	err := a.do(ctx, http.MethodGet, "/profile", token, nil, &resp)
	return resp.User, err
}

func (a *API) Reviews(ctx context.Context) ([]Review, error) {
	var reviews []Review
	err := a.do(ctx, http.MethodGet, "/reviews", "", nil, &reviews)
	return reviews, err
}

func (a *API) MyReviews(ctx context.Context, token string) ([]Review, error) {
	var reviews []Review
	err := a.do(ctx, http.MethodGet, "/my-reviews", token, nil, &reviews)
	return reviews, err
}

func (a *API) CreateReview(ctx context.Context, token string, req ReviewRequest) error {
	return a.do(ctx, http.MethodPost, "/reviews", token, req, nil)
}

func (a *API) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := a.do(ctx, http.MethodGet, "/reviews/stats", "", nil, &stats)
	return stats, err
}

func (a *API) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.breaker.Execute(func() (*http.Response, error) {
		resp, err := a.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		// 5xx counts against the breaker; 4xx is the caller's problem.
		if resp.StatusCode >= http.StatusInternalServerError {
			defer resp.Body.Close()
			return nil, decodeError(resp)
		}
		return resp, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)

	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = "Request failed"
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
