// Package client talks to the GopherBlog HTTP API. Session cookies set by
// the server are kept in a cookie jar, so after Login every call is
// authenticated the same way a browser would be.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/gopherblog/internal/common"
)

type APIClient struct {
	http    *resty.Client
	baseURL string
}

func NewAPIClient(baseURL string, timeout time.Duration) (*APIClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+common.APIPrefix).
		SetTimeout(timeout).
		SetCookieJar(jar).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetHeader("Accept", "application/json")

	return &APIClient{http: rc, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

type errorBody struct {
	Detail string `json:"detail"`
}

// send executes req and maps transport failures to ErrUnavailable and
// non-2xx replies to *APIError.
func send(req *resty.Request, method, path string) error {
	var eb errorBody
	resp, err := req.SetError(&eb).Execute(method, path)
	if err != nil {
		return ErrUnavailable
	}
	if resp.IsError() {
		detail := eb.Detail
		if detail == "" {
			detail = http.StatusText(resp.StatusCode())
		}
		return &APIError{Status: resp.StatusCode(), Detail: detail}
	}
	return nil
}

func (c *APIClient) r(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

func (c *APIClient) Register(ctx context.Context, reg Registration) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := send(c.r(ctx).SetBody(reg).SetResult(&out), http.MethodPost, "/auth/register"); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login stores the session cookies in the jar.
func (c *APIClient) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return send(c.r(ctx).SetBody(body), http.MethodPost, "/auth/login")
}

// Refresh asks for a new access token using the refresh cookie.
func (c *APIClient) Refresh(ctx context.Context) error {
	return send(c.r(ctx), http.MethodGet, "/auth/refresh")
}

func (c *APIClient) Logout(ctx context.Context) error {
	return send(c.r(ctx), http.MethodGet, "/auth/logout")
}

func (c *APIClient) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := send(c.r(ctx).SetResult(&out), http.MethodGet, "/users/me"); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func pageParams(limit, page int, search string) map[string]string {
	p := map[string]string{}
	if limit > 0 {
		p["limit"] = strconv.Itoa(limit)
	}
	if page > 0 {
		p["page"] = strconv.Itoa(page)
	}
	if search != "" {
		p["search"] = search
	}
	return p
}

func (c *APIClient) Posts(ctx context.Context, limit, page int, search string) ([]PublicPost, error) {
	var out struct {
		Posts []PublicPost `json:"posts"`
	}
	req := c.r(ctx).SetQueryParams(pageParams(limit, page, search)).SetResult(&out)
	if err := send(req, http.MethodGet, "/posts"); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (c *APIClient) MyPosts(ctx context.Context, limit, page int, search string) ([]Post, error) {
	var out struct {
		Posts []Post `json:"posts"`
	}
	req := c.r(ctx).SetQueryParams(pageParams(limit, page, search)).SetResult(&out)
	if err := send(req, http.MethodGet, "/author/posts"); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (c *APIClient) CreatePost(ctx context.Context, p NewPost) (*Post, error) {
	var out Post
	if err := send(c.r(ctx).SetBody(p).SetResult(&out), http.MethodPost, "/author/posts"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) DeletePost(ctx context.Context, id string) error {
	return send(c.r(ctx).SetPathParam("id", id), http.MethodDelete, "/author/posts/{id}")
}

// Ping checks that the server answers its health probe.
func (c *APIClient) Ping(ctx context.Context) error {
	resp, err := c.r(ctx).Get(c.baseURL + "/healthz")
	if err != nil {
		return ErrUnavailable
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Detail: resp.Status()}
	}
	return nil
}

// AttachImage asks the server for an upload slot for the post's image.
func (c *APIClient) AttachImage(ctx context.Context, id string) (*ImageUpload, error) {
	var out ImageUpload
	req := c.r(ctx).SetPathParam("id", id).SetResult(&out)
	if err := send(req, http.MethodPost, "/author/posts/{id}/image"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadObject PUTs data to a presigned URL. Object storage replies are
// not JSON, so the body is returned in the error as is.
func (c *APIClient) UploadObject(ctx context.Context, url string, data []byte) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", http.DetectContentType(data)).
		SetBody(data).
		Put(url)
	if err != nil {
		return ErrUnavailable
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Detail: fmt.Sprintf("upload failed: %s", resp.String())}
	}
	return nil
}
