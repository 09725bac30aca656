package testutils

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestServer is an httptest server with a browser-like client: it keeps cookies
// and does not follow redirects, so tests can assert on Location.
type TestServer struct {
	*httptest.Server
	Client *http.Client
	t      *testing.T
}

func NewTestServer(t *testing.T, handler http.Handler) *TestServer {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &TestServer{
		Server: server,
		Client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		t: t,
	}
}

func (ts *TestServer) GET(path string) *http.Response {
	resp, err := ts.Client.Get(ts.URL + path)
	require.NoError(ts.t, err)
	return resp
}

func (ts *TestServer) POSTForm(path string, form url.Values) *http.Response {
	resp, err := ts.Client.PostForm(ts.URL+path, form)
	require.NoError(ts.t, err)
	return resp
}

// ReadBody drains and closes the response body
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// AssertRedirect checks a 303 to the given location
func AssertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	defer resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, location, resp.Header.Get("Location"))
}
