package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hupe1980/supportmesh/tool"
)

// Client speaks the uniform action contract over HTTP: POST {base}/{action}
// with a JSON argument object, expecting a JSON body of the shape
// {"success": bool, "data": {...}, "error": "..."}. Non-2xx responses and
// transport failures surface as errors (the trace records them as
// exceptions); a 2xx body with success=false is the action's own reported
// failure and is returned as-is.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOptions configure the HTTP action client.
type ClientOptions struct {
	// HTTPClient overrides the default client. Per-call deadlines come from
	// the caller's context (the tracer applies the configured ceiling).
	HTTPClient *http.Client
}

// NewClient constructs an action client for the given endpoint base URL.
func NewClient(baseURL string, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{HTTPClient: &http.Client{Timeout: 30 * time.Second}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{baseURL: baseURL, http: opts.HTTPClient}
}

// Tool returns the named action as a tool.Tool bound to this client.
func (c *Client) Tool(name string) tool.Tool {
	return tool.NewFunc(name, "commerce action "+name, func(ctx context.Context, args map[string]any) (tool.Result, error) {
		return c.call(ctx, name, args)
	})
}

// Tools returns the full action set.
func (c *Client) Tools() []tool.Tool {
	out := make([]tool.Tool, 0, len(AllTools))
	for _, name := range AllTools {
		out = append(out, c.Tool(name))
	}
	return out
}

func (c *Client) call(ctx context.Context, action string, args map[string]any) (tool.Result, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return tool.Result{}, tool.NewError(action, fmt.Sprintf("encoding arguments: %v", err), "EXECUTION")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+action, bytes.NewReader(body))
	if err != nil {
		return tool.Result{}, tool.NewError(action, err.Error(), "TRANSPORT")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		code := "TRANSPORT"
		if ctx.Err() != nil {
			code = "TIMEOUT"
		}
		return tool.Result{}, tool.NewError(action, err.Error(), code)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return tool.Result{}, tool.NewError(action, err.Error(), "TRANSPORT")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return tool.Result{}, tool.NewError(action, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, data), "TRANSPORT")
	}

	var result tool.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return tool.Result{}, tool.NewError(action, fmt.Sprintf("decoding response: %v", err), "TRANSPORT")
	}
	return result, nil
}
