// Package client is a Go SDK for the car rental API. A Session tracks the
// authentication lifecycle explicitly so callers can reason about it:
//
//	Anonymous → Authenticating → Authenticated
//	                          ↘ AuthFailed
//
// At most one authentication attempt is in flight at a time; concurrent
// attempts fail fast with ErrAuthInProgress. A 401 from any call drops the
// session back to Anonymous and clears the persisted token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// State is the session's position in the authentication lifecycle.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateAuthFailed
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateAuthFailed:
		return "auth_failed"
	default:
		return "unknown"
	}
}

var (
	// ErrAuthInProgress is returned when Login or Register is called while
	// another authentication attempt has not finished.
	ErrAuthInProgress = errors.New("client: authentication already in progress")
	// ErrUnauthorized is returned when the server rejects the session token.
	ErrUnauthorized = errors.New("client: unauthorized")
	// ErrNotAuthenticated is returned by calls that need a session token
	// while the session is not authenticated.
	ErrNotAuthenticated = errors.New("client: not authenticated")
)

// APIError is a non-401 error response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: api error %d: %s", e.Status, e.Message)
}

// Option customises a Session.
type Option func(*Session)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Session) { s.http = hc }
}

// WithTokenStore persists the token through the given store. A token already
// present in the store resumes the session as Authenticated.
func WithTokenStore(store TokenStore) Option {
	return func(s *Session) { s.store = store }
}

// Session is a stateful client for the car rental API. Safe for concurrent
// use.
type Session struct {
	baseURL string
	http    *http.Client
	store   TokenStore

	authMu sync.Mutex // serialises Login/Register; TryLock gives fail-fast

	mu    sync.Mutex
	state State
	token string
	user  *User
}

// NewSession returns a Session rooted at baseURL, e.g. "http://localhost:3000".
func NewSession(baseURL string, opts ...Option) (*Session, error) {
	s := &Session{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   &memoryTokenStore{},
		state:   StateAnonymous,
	}
	for _, opt := range opts {
		opt(s)
	}

	token, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if token != "" {
		s.token = token
		s.state = StateAuthenticated
	}
	return s, nil
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the cached account, or nil before the first successful
// Login/Register/Me call.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Register creates an account and authenticates the session with it.
func (s *Session) Register(ctx context.Context, name, email, password string) (*User, error) {
	return s.authenticate(ctx, "/api/user/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// Login authenticates the session with existing credentials.
func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	return s.authenticate(ctx, "/api/user/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// authenticate runs one auth attempt through the state machine. The session
// state only changes after the outcome is known: a cancelled context leaves
// token and user untouched.
func (s *Session) authenticate(ctx context.Context, path string, creds map[string]string) (*User, error) {
	if !s.authMu.TryLock() {
		return nil, ErrAuthInProgress
	}
	defer s.authMu.Unlock()

	s.mu.Lock()
	prev := s.state
	s.state = StateAuthenticating
	s.mu.Unlock()

	env, err := s.do(ctx, http.MethodPost, path, creds, false)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) || errors.Is(err, ErrUnauthorized) {
			// Rejected credentials invalidate the whole session: any
			// previously held token and cached user go with them.
			_ = s.store.Clear()
			s.mu.Lock()
			s.state = StateAuthFailed
			s.token = ""
			s.user = nil
			s.mu.Unlock()
		} else {
			// Transport failure or cancellation: not a rejection.
			s.mu.Lock()
			s.state = prev
			s.mu.Unlock()
		}
		return nil, err
	}

	if err := s.store.Save(env.Token); err != nil {
		s.mu.Lock()
		s.state = prev
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.token = env.Token
	s.user = env.User
	s.mu.Unlock()
	return env.User, nil
}

// Logout clears the token and cached user and returns to Anonymous.
func (s *Session) Logout() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.reset()
	return nil
}

// Me fetches the account behind the session token and refreshes the cache.
func (s *Session) Me(ctx context.Context) (*User, error) {
	env, err := s.do(ctx, http.MethodGet, "/api/user/data", nil, true)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = env.User
	s.mu.Unlock()
	return env.User, nil
}

// ListCars returns the public catalogue, optionally filtered by location
// and category. Empty strings mean no filter.
func (s *Session) ListCars(ctx context.Context, location, category string) ([]Car, error) {
	q := url.Values{}
	if location != "" {
		q.Set("location", location)
	}
	if category != "" {
		q.Set("category", category)
	}
	path := "/api/user/cars"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	env, err := s.do(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return nil, err
	}
	return env.Cars, nil
}

// CarBookings returns a car's occupied date ranges. Public. The server
// sends the ranges under the "bookings" key.
func (s *Session) CarBookings(ctx context.Context, carID string) ([]DateRange, error) {
	env, err := s.do(ctx, http.MethodGet, "/api/public-bookings/car/"+url.PathEscape(carID), nil, false)
	if err != nil {
		return nil, err
	}
	ranges := make([]DateRange, 0, len(env.Bookings))
	for _, b := range env.Bookings {
		ranges = append(ranges, DateRange{PickupDate: b.PickupDate, ReturnDate: b.ReturnDate})
	}
	return ranges, nil
}

// CheckAvailability reports whether a car is free between pickup and
// return (inclusive whole days), without reserving anything.
func (s *Session) CheckAvailability(ctx context.Context, carID string, pickup, ret time.Time) (*Availability, error) {
	env, err := s.do(ctx, http.MethodPost, "/api/bookings/check-availability", map[string]string{
		"car":        carID,
		"pickupDate": pickup.Format("2006-01-02"),
		"returnDate": ret.Format("2006-01-02"),
	}, false)
	if err != nil {
		return nil, err
	}
	return &Availability{Available: env.IsAvailable, BookedRanges: env.BookedRanges}, nil
}

// CreateBooking books a car for the authenticated renter.
func (s *Session) CreateBooking(ctx context.Context, carID string, pickup, ret time.Time) (*Booking, error) {
	env, err := s.do(ctx, http.MethodPost, "/api/bookings/create", map[string]string{
		"car":        carID,
		"pickupDate": pickup.Format("2006-01-02"),
		"returnDate": ret.Format("2006-01-02"),
	}, true)
	if err != nil {
		return nil, err
	}
	return env.Booking, nil
}

// MyBookings returns the authenticated renter's bookings, newest first.
func (s *Session) MyBookings(ctx context.Context) ([]Booking, error) {
	env, err := s.do(ctx, http.MethodGet, "/api/bookings/user", nil, true)
	if err != nil {
		return nil, err
	}
	return env.Bookings, nil
}

// ChangeBookingStatus applies a status transition ("confirmed" or
// "cancelled") to a booking the session actor may manage.
func (s *Session) ChangeBookingStatus(ctx context.Context, bookingID, status string) (*Booking, error) {
	env, err := s.do(ctx, http.MethodPost, "/api/bookings/change-status", map[string]string{
		"bookingId": bookingID,
		"status":    status,
	}, true)
	if err != nil {
		return nil, err
	}
	return env.Booking, nil
}

// apiEnvelope is the server's response envelope, with every data key the
// client reads.
type apiEnvelope struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	Token        string      `json:"token"`
	User         *User       `json:"user"`
	Cars         []Car       `json:"cars"`
	Bookings     []Booking   `json:"bookings"`
	Booking      *Booking    `json:"booking"`
	IsAvailable  bool        `json:"isAvailable"`
	BookedRanges []DateRange `json:"bookedRanges"`
}

// do performs one request. A 401 on an authenticated call resets the session
// before returning ErrUnauthorized.
func (s *Session) do(ctx context.Context, method, path string, body any, authed bool) (*apiEnvelope, error) {
	var token string
	if authed {
		s.mu.Lock()
		token = s.token
		s.mu.Unlock()
		if token == "" {
			return nil, ErrNotAuthenticated
		}
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && authed {
		_ = s.store.Clear()
		s.reset()
		return nil, ErrUnauthorized
	}

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, env.Message)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

func (s *Session) reset() {
	s.mu.Lock()
	s.state = StateAnonymous
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}
