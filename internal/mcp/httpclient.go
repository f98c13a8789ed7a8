package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/simplestrength/internal/models"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the SimpleStrength REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but data
// lives on the remote server (accessed over Tailscale). User scoping happens
// server-side via the caller's network identity, so the userID arguments are
// ignored here.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. An empty
// apiKey sends no auth header.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListExercisesByUser(ctx context.Context, _ int, includeArchived bool) ([]models.Exercise, error) {
	params := url.Values{}
	if includeArchived {
		params.Set("include_archived", "true")
	}

	body, err := c.get(ctx, "/api/v1/exercises", params)
	if err != nil {
		return nil, err
	}

	var exercises []models.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) ListWorkoutsByUser(ctx context.Context, _, limit int) ([]models.Workout, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil {
		return nil, err
	}

	var workouts []models.Workout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) GetWorkoutWithSets(ctx context.Context, id uuid.UUID, _ int) (models.WorkoutWithSets, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+id.String(), nil)
	if err != nil {
		return models.WorkoutWithSets{}, err
	}

	var detail models.WorkoutWithSets
	if err := json.Unmarshal(body, &detail); err != nil {
		return models.WorkoutWithSets{}, fmt.Errorf("httpclient: decode workout detail: %w", err)
	}
	return detail, nil
}

func (c *HTTPClient) ListCompletedWorkouts(ctx context.Context, _ int) ([]models.WorkoutWithSets, error) {
	body, err := c.get(ctx, "/api/v1/workouts/completed", nil)
	if err != nil {
		return nil, err
	}

	var workouts []models.WorkoutWithSets
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode completed workouts: %w", err)
	}
	return workouts, nil
}
