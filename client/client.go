// Package client implements the Go client for the attune HTTP API. It is the
// transport the terminal client builds on: bearer-token auth, JSON in/out, and
// typed errors that carry the server's status and wire code so callers can
// classify failures without string matching.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedReply marks a chat response that arrived with status 200 but no
// usable reply text. Callers treat it as a failed turn, never as an empty
// assistant message.
var ErrMalformedReply = errors.New("client: malformed chat reply")

// DecodeError wraps a 2xx body that could not be decoded into the expected
// shape. The request itself succeeded; the payload did not.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode response: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// APIError is a non-2xx response decoded from the server's {error, code} shape.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %s (status %d, code %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// Client talks to one attune server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client. The default client has
// no timeout of its own; deadlines come from the caller's context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8484".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token after login.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token.
func (c *Client) Token() string { return c.token }

// do sends one JSON request and decodes the response into out (when non-nil).
// Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var wire struct {
		Error string `json:"error"`
		Code  string `json:"code"`
		// echo.NewHTTPError serializes as {"message": ...}.
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err == nil {
		apiErr.Code = wire.Code
		apiErr.Message = wire.Error
		if apiErr.Message == "" {
			apiErr.Message = wire.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// ─────────────────────────────────────────────────────────────────────────────
// Auth
// ─────────────────────────────────────────────────────────────────────────────

// User is the authenticated account.
type User struct {
	ID        int32  `json:"id"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	CreatedTs int64  `json:"createdTs"`
}

// AuthResult is the response of signup and login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SignUp registers a new account and stores its token on the client.
func (c *Client) SignUp(ctx context.Context, email, password, nickname string) (*AuthResult, error) {
	req := map[string]string{"email": email, "password": password, "nickname": nickname}
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", req, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// LogIn authenticates and stores the token on the client.
func (c *Client) LogIn(ctx context.Context, email, password string) (*AuthResult, error) {
	req := map[string]string{"email": email, "password": password}
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", req, &res); err != nil {
		return nil, err
	}
	c.token = res.Token
	return &res, nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Profile (onboarding)
// ─────────────────────────────────────────────────────────────────────────────

// Profile is the onboarding record.
type Profile struct {
	DisplayName     string   `json:"displayName"`
	FocusAreas      []string `json:"focusAreas"`
	WakeTime        string   `json:"wakeTime"`
	SleepTime       string   `json:"sleepTime"`
	ReminderEnabled bool     `json:"reminderEnabled"`
	Onboarded       bool     `json:"onboarded"`
	UpdatedTs       int64    `json:"updatedTs"`
}

// UpdateProfile carries the fields to change; nil pointers are left untouched.
type UpdateProfile struct {
	DisplayName     *string   `json:"displayName,omitempty"`
	FocusAreas      *[]string `json:"focusAreas,omitempty"`
	WakeTime        *string   `json:"wakeTime,omitempty"`
	SleepTime       *string   `json:"sleepTime,omitempty"`
	ReminderEnabled *bool     `json:"reminderEnabled,omitempty"`
	Onboarded       *bool     `json:"onboarded,omitempty"`
}

// GetProfile fetches the onboarding profile.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PatchProfile updates the onboarding profile.
func (c *Client) PatchProfile(ctx context.Context, update *UpdateProfile) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodPatch, "/api/v1/profile", update, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Routines
// ─────────────────────────────────────────────────────────────────────────────

// Routine is one recurring daily habit.
type Routine struct {
	UID       string   `json:"uid"`
	Title     string   `json:"title"`
	Emoji     string   `json:"emoji"`
	TimeOfDay string   `json:"timeOfDay"`
	Weekdays  []string `json:"weekdays"`
	Position  int32    `json:"position"`
	Archived  bool     `json:"archived"`
	CreatedTs int64    `json:"createdTs"`
	UpdatedTs int64    `json:"updatedTs"`
}

// CreateRoutine is the creation payload.
type CreateRoutine struct {
	Title     string   `json:"title"`
	Emoji     string   `json:"emoji"`
	TimeOfDay string   `json:"timeOfDay"`
	Weekdays  []string `json:"weekdays"`
}

// UpdateRoutine carries the fields to change.
type UpdateRoutine struct {
	Title     *string   `json:"title,omitempty"`
	Emoji     *string   `json:"emoji,omitempty"`
	TimeOfDay *string   `json:"timeOfDay,omitempty"`
	Weekdays  *[]string `json:"weekdays,omitempty"`
	Position  *int32    `json:"position,omitempty"`
	Archived  *bool     `json:"archived,omitempty"`
}

// ListRoutines returns the caller's routines, active first.
func (c *Client) ListRoutines(ctx context.Context) ([]Routine, error) {
	var list []Routine
	if err := c.do(ctx, http.MethodGet, "/api/v1/routines", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddRoutine creates a routine.
func (c *Client) AddRoutine(ctx context.Context, create *CreateRoutine) (*Routine, error) {
	var r Routine
	if err := c.do(ctx, http.MethodPost, "/api/v1/routines", create, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// PatchRoutine updates a routine by UID.
func (c *Client) PatchRoutine(ctx context.Context, uid string, update *UpdateRoutine) (*Routine, error) {
	var r Routine
	if err := c.do(ctx, http.MethodPatch, "/api/v1/routines/"+url.PathEscape(uid), update, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRoutine removes a routine by UID.
func (c *Client) DeleteRoutine(ctx context.Context, uid string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/routines/"+url.PathEscape(uid), nil, nil)
}

// ─────────────────────────────────────────────────────────────────────────────
// Check-ins
// ─────────────────────────────────────────────────────────────────────────────

// CheckIn is one day's entry. Date is "YYYY-MM-DD"; one entry exists per day.
type CheckIn struct {
	UID               string   `json:"uid"`
	Date              string   `json:"date"`
	Mood              int32    `json:"mood"`
	Energy            int32    `json:"energy"`
	Note              string   `json:"note"`
	CompletedRoutines []string `json:"completedRoutines"`
	CreatedTs         int64    `json:"createdTs"`
	UpdatedTs         int64    `json:"updatedTs"`
}

// SubmitCheckIn is the create/upsert payload.
type SubmitCheckIn struct {
	Date              string   `json:"date"`
	Mood              int32    `json:"mood"`
	Energy            int32    `json:"energy"`
	Note              string   `json:"note"`
	CompletedRoutines []string `json:"completedRoutines"`
}

// ListCheckIns returns check-ins, newest first. from/to bound the date range
// when non-empty.
func (c *Client) ListCheckIns(ctx context.Context, from, to string) ([]CheckIn, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	path := "/api/v1/checkins"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var list []CheckIn
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// PostCheckIn creates today's entry, or updates it when one already exists for
// the date.
func (c *Client) PostCheckIn(ctx context.Context, submit *SubmitCheckIn) (*CheckIn, error) {
	var ci CheckIn
	if err := c.do(ctx, http.MethodPost, "/api/v1/checkins", submit, &ci); err != nil {
		return nil, err
	}
	return &ci, nil
}

// GetCheckIn returns the entry for one date, or an APIError with status 404.
func (c *Client) GetCheckIn(ctx context.Context, date string) (*CheckIn, error) {
	var ci CheckIn
	if err := c.do(ctx, http.MethodGet, "/api/v1/checkins/"+url.PathEscape(date), nil, &ci); err != nil {
		return nil, err
	}
	return &ci, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Personas & chat
// ─────────────────────────────────────────────────────────────────────────────

// Persona is the client-safe view of a guide voice (no system prompt).
type Persona struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Tagline  string `json:"tagline"`
	Greeting string `json:"greeting"`
}

// ListPersonas returns the selectable personas.
func (c *Client) ListPersonas(ctx context.Context) ([]Persona, error) {
	var list []Persona
	if err := c.do(ctx, http.MethodGet, "/api/v1/personas", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

type chatRequest struct {
	Message   string `json:"message"`
	PersonaID string `json:"personaId"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// SendMessage forwards one user message to the chat proxy and returns the
// assistant reply. A 200 whose body lacks a non-empty reply is reported as
// ErrMalformedReply, never as an empty success.
func (c *Client) SendMessage(ctx context.Context, personaID, message string) (string, error) {
	var res chatResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/chat", &chatRequest{Message: message, PersonaID: personaID}, &res)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return "", errors.Wrap(ErrMalformedReply, decodeErr.Error())
		}
		return "", err
	}
	if strings.TrimSpace(res.Response) == "" {
		return "", ErrMalformedReply
	}
	return res.Response, nil
}
