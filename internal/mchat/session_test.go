package mchat

import (
	"testing"

	"kyri56xcaesar/pms-collab/internal/apperr"
	"kyri56xcaesar/pms-collab/internal/mtask"
)

var task = mtask.Task{ID: "t1", Title: "Write report"}

func TestSendTrimsAndAppendsInOrder(t *testing.T) {
	m := NewManager()
	s := m.Open(task)
	if s.TaskID != "t1" || s.TaskTitle != "Write report" {
		t.Fatalf("display metadata = %q/%q", s.TaskID, s.TaskTitle)
	}

	first, err := s.Send("A", "  hello  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if first.Content != "hello" || first.UserID != "A" || first.ID == "" || first.Timestamp.IsZero() {
		t.Fatalf("message = %+v", first)
	}
	if _, err := s.Send("B", "hi A"); err != nil {
		t.Fatalf("send: %v", err)
	}

	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0].ID != first.ID || msgs[1].UserID != "B" {
		t.Fatalf("messages = %+v", msgs)
	}
}

func TestSendRejectsBlankContent(t *testing.T) {
	s := NewManager().Open(task)
	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := s.Send("A", content); !apperr.IsValidation(err) {
			t.Fatalf("send %q = %v, want validation", content, err)
		}
	}
	if n := len(s.Messages()); n != 0 {
		t.Fatalf("blank sends stored %d messages", n)
	}
}

func TestReopenStartsEmpty(t *testing.T) {
	m := NewManager()
	s := m.Open(task)
	if _, err := s.Send("A", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := m.Close(s.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if n := len(s.Messages()); n != 0 {
		t.Fatalf("closed session kept %d messages", n)
	}
	if _, err := s.Send("A", "again"); !apperr.IsNotFound(err) {
		t.Fatalf("send after close = %v, want not found", err)
	}

	reopened := m.Open(task)
	if reopened.ID == s.ID {
		t.Fatalf("reopen reused session id")
	}
	if n := len(reopened.Messages()); n != 0 {
		t.Fatalf("reopened session has %d messages", n)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewManager()
	a := m.Open(task)
	b := m.Open(task)
	if _, err := a.Send("A", "only in a"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if n := len(b.Messages()); n != 0 {
		t.Fatalf("message leaked into sibling session")
	}
	if m.Len() != 2 {
		t.Fatalf("open sessions = %d, want 2", m.Len())
	}
}

func TestManagerLookupAndClose(t *testing.T) {
	m := NewManager()
	s := m.Open(task)
	if got, ok := m.Get(s.ID); !ok || got != s {
		t.Fatalf("Get did not return the open session")
	}
	if err := m.Close(s.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := m.Get(s.ID); ok {
		t.Fatalf("closed session still registered")
	}
	if !s.Closed() {
		t.Fatalf("session not marked closed")
	}
	if err := m.Close(s.ID); !apperr.IsNotFound(err) {
		t.Fatalf("second close = %v, want not found", err)
	}
}
