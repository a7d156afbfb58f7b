// Package front is a typed client for the collaboration API, for presentation
// layers that talk to it over HTTP.
package front

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"kyri56xcaesar/pms-collab/internal/mgroup"
	"kyri56xcaesar/pms-collab/internal/mtask"
)

const userHeader = "X-User-ID"

type Downstream struct {
	Base   string // e.g. http://localhost:5050/api/v1
	Client *http.Client
}

type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("downstream %s %s -> %d: %s", e.Method, e.URL, e.Code, e.Body)
}

// doJSON sends in (when non-nil) as the body and decodes the answer into out.
// caller is sent as the acting user; empty leaves it to the server's default.
func (d *Downstream) doJSON(ctx context.Context, method, url, caller string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		req.Header.Set(userHeader, caller)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{Method: method, URL: url, Code: resp.StatusCode, Body: string(b)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (d *Downstream) MyTasks(ctx context.Context, caller string) ([]mtask.Task, error) {
	var tasks ItemsResponse[mtask.Task]
	err := d.doJSON(ctx, http.MethodGet, d.Base+"/my-tasks", caller, nil, &tasks)
	return tasks.Items, err
}

func (d *Downstream) GroupTasks(ctx context.Context, caller, groupID string) ([]mtask.Task, error) {
	var tasks ItemsResponse[mtask.Task]
	u := fmt.Sprintf("%s/groups/%s/tasks", d.Base, url.PathEscape(groupID))
	err := d.doJSON(ctx, http.MethodGet, u, caller, nil, &tasks)
	return tasks.Items, err
}

func (d *Downstream) MyGroups(ctx context.Context, caller string) ([]mgroup.Group, error) {
	var groups ItemsResponse[mgroup.Group]
	err := d.doJSON(ctx, http.MethodGet, d.Base+"/my-groups", caller, nil, &groups)
	return groups.Items, err
}

func (d *Downstream) CreateGroup(ctx context.Context, caller string, req mgroup.CreateGroupRequest) (mgroup.Group, error) {
	var g mgroup.Group
	err := d.doJSON(ctx, http.MethodPost, d.Base+"/groups", caller, req, &g)
	return g, err
}

func (d *Downstream) CreateTask(ctx context.Context, caller string, req mtask.CreateTaskRequest) (mtask.Task, error) {
	var t mtask.Task
	err := d.doJSON(ctx, http.MethodPost, d.Base+"/tasks", caller, req, &t)
	return t, err
}

func (d *Downstream) DeleteGroup(ctx context.Context, caller, groupID string) error {
	u := fmt.Sprintf("%s/groups/%s", d.Base, url.PathEscape(groupID))
	return d.doJSON(ctx, http.MethodDelete, u, caller, nil, nil)
}
