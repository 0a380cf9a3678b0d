package portalhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/observability"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// Client es el transporte del console contra el portal API. La sesión viaja
// en la cookie HttpOnly, así que el client mantiene un cookie jar propio.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Error representa un error devuelto por el portal API. Captura el status
// HTTP junto con el código y mensaje estructurados del cuerpo JSON.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	code := e.Code
	if code == "" {
		code = "unknown_error"
	}

	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = fmt.Sprintf("portal api returned status %d", e.Status)
	}

	return fmt.Sprintf("portal api error: status=%d code=%s message=%s", e.Status, code, msg)
}

// Unauthorized informa si el error es un 401 del portal. El console lo
// consume vía interfaz para forzar el logout local sin importar este paquete.
func (e *Error) Unauthorized() bool {
	return e != nil && e.Status == http.StatusUnauthorized
}

// IsUnauthorized informa si err es un 401 del portal: la señal de que la
// sesión local debe descartarse.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Unauthorized()
}

func newErrorFromResponse(resp *http.Response) error {
	if resp == nil {
		return &Error{Status: 0, Code: "unknown_error", Message: "nil response from portal api"}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload) // si falla, usamos el raw body abajo

	msg := payload.Message
	if strings.TrimSpace(msg) == "" {
		msg = strings.TrimSpace(string(body))
	}

	observability.ObserveDownstreamError("deployment-portal-api", payload.Code, resp.StatusCode)

	return &Error{
		Status:  resp.StatusCode,
		Code:    payload.Code,
		Message: msg,
	}
}

func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second, Jar: jar},
	}, nil
}

// do arma la request, corre el span y decodifica la respuesta JSON en out
// (si out no es nil). Todos los métodos del client pasan por acá.
func (c *Client) do(ctx context.Context, spanName, method, path string, payload, out any) error {
	ctx, span := tracing.StartSpan(ctx, spanName)
	span.SetAttributes(attribute.String("http.request.method", method), attribute.String("url.path", path))
	defer span.End()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", spanName, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", spanName, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s endpoint: %w", spanName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newErrorFromResponse(resp)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", spanName, err)
	}
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, "portalhttp.Login", http.MethodPost, "/api/login", loginRequest{Username: username, Password: password}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "portalhttp.Logout", http.MethodPost, "/api/logout", nil, nil)
}

func (c *Client) Session(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, "portalhttp.Session", http.MethodGet, "/api/session", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListDeployments(ctx context.Context, search string, configOnly bool) ([]*domain.DeploymentRecord, error) {
	params := url.Values{}
	if search != "" {
		params.Set("search", search)
	}
	if configOnly {
		params.Set("config", "true")
	}
	path := "/api/deployments"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var records []*domain.DeploymentRecord
	if err := c.do(ctx, "portalhttp.ListDeployments", http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) CreateDeployment(ctx context.Context, rec *domain.DeploymentRecord) (*domain.DeploymentRecord, error) {
	var created domain.DeploymentRecord
	if err := c.do(ctx, "portalhttp.CreateDeployment", http.MethodPost, "/api/deployments", rec, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateDeployment(ctx context.Context, rec *domain.DeploymentRecord) (*domain.DeploymentRecord, error) {
	if rec == nil || rec.ID == "" {
		return nil, &Error{Status: 0, Code: "deployment_id_required", Message: "deployment id is required"}
	}
	var updated domain.DeploymentRecord
	if err := c.do(ctx, "portalhttp.UpdateDeployment", http.MethodPut, "/api/deployments/"+url.PathEscape(rec.ID), rec, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteDeployment(ctx context.Context, id string) error {
	return c.do(ctx, "portalhttp.DeleteDeployment", http.MethodDelete, "/api/deployments/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListReleases(ctx context.Context) ([]*domain.Release, error) {
	var releases []*domain.Release
	if err := c.do(ctx, "portalhttp.ListReleases", http.MethodGet, "/api/releases", nil, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}

type createReleaseRequest struct {
	Name string `json:"name"`
}

func (c *Client) CreateRelease(ctx context.Context, name string) (*domain.Release, error) {
	var release domain.Release
	if err := c.do(ctx, "portalhttp.CreateRelease", http.MethodPost, "/api/releases", createReleaseRequest{Name: name}, &release); err != nil {
		return nil, err
	}
	return &release, nil
}

func (c *Client) ListServices(ctx context.Context) ([]*domain.Service, error) {
	var services []*domain.Service
	if err := c.do(ctx, "portalhttp.ListServices", http.MethodGet, "/api/services", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *Client) SearchServices(ctx context.Context, query string) ([]*domain.Service, error) {
	path := "/api/services/search"
	if query != "" {
		path += "?query=" + url.QueryEscape(query)
	}
	var services []*domain.Service
	if err := c.do(ctx, "portalhttp.SearchServices", http.MethodGet, path, nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// GeneralReport devuelve el CSV crudo tal como lo genera el backend.
func (c *Client) GeneralReport(ctx context.Context, release, environment, team, startDate, endDate string) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "portalhttp.GeneralReport")
	span.SetAttributes(attribute.String("report.release", release), attribute.String("report.environment", environment))
	defer span.End()

	params := url.Values{}
	if release != "" {
		params.Set("release", release)
	}
	if environment != "" {
		params.Set("environment", environment)
	}
	if team != "" {
		params.Set("team", team)
	}
	if startDate != "" {
		params.Set("startDate", startDate)
	}
	if endDate != "" {
		params.Set("endDate", endDate)
	}

	path := "/api/reports/general"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create general report request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call general report endpoint: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newErrorFromResponse(resp)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read general report body: %w", err)
	}
	return payload, nil
}
