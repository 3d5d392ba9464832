package adminusers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"usersadmin/frontend/shared/prompt"
)

const (
	AddPath    = "/setup/users/add/"
	UpdatePath = "/setup/users/update/"
	DeletePath = "/setup/users/delete/"
	ListPath   = "/setup/users/user_list/"
	LookupPath = "/setup/common/lookup/"

	RightsPath     = "/setup/users/get-user-rights/"
	SaveRightsPath = "/setup/users/save-user-rights/"

	DefaultTokenHeader = "X-CSRFToken"

	maxResponseBytes = 1 << 20
)

var errNoOutcome = errors.New("response carries neither status nor success")

const (
	msgAddRequired    = "Please fill all fields, including password."
	msgUpdateRequired = "Username, Full Name and Status are required."
	msgDeleteRequired = "User ID is required."
	msgDeleteConfirm  = "Are you sure you want to PERMANENTLY DELETE this user? This action cannot be undone."
	msgRightsRequired = "User ID and a menu for every right are required."
)

type operation string

const (
	opAdd    operation = "add"
	opUpdate operation = "update"
	opDelete operation = "delete"
	opRights operation = "rights"
)

func (o operation) path() string {
	switch o {
	case opAdd:
		return AddPath
	case opUpdate:
		return UpdatePath
	case opRights:
		return SaveRightsPath
	default:
		return DeletePath
	}
}

// TokenProvider supplies the anti-forgery token for each mutating request.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Refresher re-syncs the displayed records after a successful mutation.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type ClientOptions struct {
	HTTPClient  *http.Client
	Tokens      TokenProvider
	TokenHeader string
	Notifier    prompt.Notifier
	Confirmer   prompt.Confirmer
	// Refresher is optional; without it nothing is re-fetched on success.
	Refresher Refresher
	Logger    *slog.Logger
}

// Client submits add, update and delete mutations for the admin users screen.
// Every submission is a single request; nothing is retried.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	tokens      TokenProvider
	tokenHeader string
	notifier    prompt.Notifier
	confirmer   prompt.Confirmer
	refresher   Refresher
	logger      *slog.Logger
	validate    *validator.Validate
}

func NewClient(baseURL string, opts ClientOptions) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if opts.Tokens == nil {
		return nil, errors.New("admin users client: token provider is required")
	}
	if opts.Notifier == nil || opts.Confirmer == nil {
		return nil, errors.New("admin users client: notifier and confirmer are required")
	}
	c := &Client{
		baseURL:     u,
		http:        opts.HTTPClient,
		tokens:      opts.Tokens,
		tokenHeader: opts.TokenHeader,
		notifier:    opts.Notifier,
		confirmer:   opts.Confirmer,
		refresher:   opts.Refresher,
		logger:      opts.Logger,
		validate:    newValidator(),
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.tokenHeader == "" {
		c.tokenHeader = DefaultTokenHeader
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

func (c *Client) SubmitAdd(ctx context.Context, p AddPayload) (ServerResult, error) {
	if err := c.validate.StructCtx(ctx, p); err != nil {
		return ServerResult{}, c.reject(ctx, opAdd, msgAddRequired, err)
	}
	return c.submit(ctx, opAdd, p)
}

func (c *Client) SubmitUpdate(ctx context.Context, p UpdatePayload) (ServerResult, error) {
	if err := c.validate.StructCtx(ctx, p); err != nil {
		return ServerResult{}, c.reject(ctx, opUpdate, msgUpdateRequired, err)
	}
	return c.submit(ctx, opUpdate, p)
}

// SubmitDelete asks for confirmation before sending anything. A declined
// confirmation returns ErrDeleteDeclined.
func (c *Client) SubmitDelete(ctx context.Context, userID, versionHex string) (ServerResult, error) {
	p := DeletePayload{UserID: userID, VersionHex: versionHex}
	if err := c.validate.StructCtx(ctx, p); err != nil {
		return ServerResult{}, c.reject(ctx, opDelete, msgDeleteRequired, err)
	}
	ok, err := c.confirmer.Confirm(ctx, msgDeleteConfirm)
	if err != nil {
		return ServerResult{}, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		c.logger.Info("admin users: delete declined", slog.String("user_id", userID))
		return ServerResult{}, ErrDeleteDeclined
	}
	return c.submit(ctx, opDelete, p)
}

// SubmitRights saves the full rights matrix of userID. Menus left out keep
// whatever the backend has stored for them.
func (c *Client) SubmitRights(ctx context.Context, userID string, rights []Right) (ServerResult, error) {
	if rights == nil {
		rights = []Right{}
	}
	p := RightsPayload{UserID: userID, Rights: rights}
	if err := c.validate.StructCtx(ctx, p); err != nil {
		return ServerResult{}, c.reject(ctx, opRights, msgRightsRequired, err)
	}
	return c.submit(ctx, opRights, p)
}

func (c *Client) reject(ctx context.Context, op operation, message string, err error) error {
	verr := &ValidationError{Op: string(op), Message: message}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.Fields = append(verr.Fields, fe.Field())
		}
	}
	c.notifier.Notify(ctx, prompt.Notice{Level: prompt.LevelError, Message: message})
	return verr
}

func (c *Client) submit(ctx context.Context, op operation, payload any) (ServerResult, error) {
	requestID := uuid.NewString()
	logger := c.logger.With(slog.String("op", string(op)), slog.String("request_id", requestID))

	result, err := c.post(ctx, op, requestID, payload)
	if err != nil {
		terr := &TransportError{Op: string(op), Err: err}
		logger.Error("admin users: submission failed", slog.Any("err", err))
		c.notifier.Notify(ctx, prompt.Notice{Level: prompt.LevelError, Message: terr.OperatorMessage()})
		return ServerResult{}, terr
	}

	if !result.Succeeded() {
		logger.Warn("admin users: backend rejected submission", slog.String("message", result.Message))
		c.notifier.Notify(ctx, prompt.Notice{Level: prompt.LevelError, Message: result.Message})
		return result, &ServerError{Op: string(op), Message: result.Message}
	}

	c.notifier.Notify(ctx, prompt.Notice{Level: prompt.LevelSuccess, Message: result.Message})
	if c.refresher == nil {
		return result, nil
	}
	if err := c.refresher.Refresh(ctx); err != nil {
		logger.Error("admin users: refresh after submission failed", slog.Any("err", err))
		return result, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, op operation, requestID string, payload any) (ServerResult, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return ServerResult{}, fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return ServerResult{}, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(c.baseURL, op.path(), nil), bytes.NewReader(body))
	if err != nil {
		return ServerResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set(c.tokenHeader, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return ServerResult{}, err
	}
	defer resp.Body.Close()

	// Any JSON body is interpreted, whatever the status code: the backend
	// reports 401 and 500 as JSON too.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return ServerResult{}, fmt.Errorf("read response (http %d): %w", resp.StatusCode, err)
	}
	if len(raw) > maxResponseBytes {
		return ServerResult{}, fmt.Errorf("response (http %d) exceeds %d bytes", resp.StatusCode, maxResponseBytes)
	}
	var reply *serverReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return ServerResult{}, fmt.Errorf("decode response (http %d): %w", resp.StatusCode, err)
	}
	result, ok := reply.result()
	if !ok {
		return ServerResult{}, fmt.Errorf("%w (http %d)", errNoOutcome, resp.StatusCode)
	}
	return result, nil
}

// Outcome is the single result of a dispatched submission.
type Outcome struct {
	Result ServerResult
	Err    error
}

// Dispatch runs submit in its own goroutine so the caller is not blocked.
// The channel yields exactly one Outcome and is then closed. Outcomes of
// separate dispatches arrive in whatever order their responses do.
func Dispatch(ctx context.Context, submit func(context.Context) (ServerResult, error)) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := submit(ctx)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", raw)
	}
	return u, nil
}

func endpoint(base *url.URL, path string, query url.Values) string {
	u := *base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawPath = ""
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}
