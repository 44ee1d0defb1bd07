package api

import (
	"context"
	"net/http"
	"net/url"
)

func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var out list[T]
	if err := c.get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return []T{}, nil
	}
	return []T(out), nil
}

func getOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var out T
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// send validates body and issues a write, decoding the returned record.
func send[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	if body != nil {
		if err := c.check(body); err != nil {
			return nil, err
		}
	}
	var out T
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func create[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	return send[T](ctx, c, http.MethodPost, path, body)
}

func update[T any](ctx context.Context, c *Client, path string, body any) (*T, error) {
	return send[T](ctx, c, http.MethodPut, path, body)
}
