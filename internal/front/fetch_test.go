package front

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"kyri56xcaesar/pms-collab/internal/mgroup"
	"kyri56xcaesar/pms-collab/internal/mtask"
)

func TestDoJSONSendsCallerAndBody(t *testing.T) {
	var gotUser, gotType, gotPath string
	var gotReq mtask.CreateTaskRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get("X-User-ID")
		gotType = r.Header.Get("Content-Type")
		gotPath = r.Method + " " + r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(mtask.Task{ID: "t1", Title: gotReq.Title})
	}))
	defer srv.Close()

	d := &Downstream{Base: srv.URL + "/api/v1", Client: srv.Client()}
	task, err := d.CreateTask(context.Background(), "alice", mtask.CreateTaskRequest{Title: "T", Description: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != "t1" || task.Title != "T" {
		t.Fatalf("task = %+v", task)
	}
	if gotUser != "alice" || gotType != "application/json" || gotPath != "POST /api/v1/tasks" {
		t.Fatalf("request: user=%q type=%q path=%q", gotUser, gotType, gotPath)
	}
}

func TestListsDecodeItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/my-groups":
			_ = json.NewEncoder(w).Encode(ItemsResponse[mgroup.Group]{Items: []mgroup.Group{{ID: "g1"}}})
		case "/groups/g%201/tasks", "/groups/g 1/tasks":
			_ = json.NewEncoder(w).Encode(ItemsResponse[mtask.Task]{Items: []mtask.Task{{ID: "t1"}, {ID: "t2"}}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	d := &Downstream{Base: srv.URL}
	groups, err := d.MyGroups(context.Background(), "")
	if err != nil || len(groups) != 1 || groups[0].ID != "g1" {
		t.Fatalf("groups = %+v, %v", groups, err)
	}
	tasks, err := d.GroupTasks(context.Background(), "", "g 1")
	if err != nil || len(tasks) != 2 {
		t.Fatalf("tasks = %+v, %v", tasks, err)
	}
}

func TestNon2xxIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"group \"g9\" not found"}`))
	}))
	defer srv.Close()

	d := &Downstream{Base: srv.URL}
	err := d.DeleteGroup(context.Background(), "alice", "g9")
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Code != http.StatusNotFound || serr.Method != http.MethodDelete {
		t.Fatalf("err = %v", err)
	}
}
