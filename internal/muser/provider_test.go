package muser

import (
	"os"
	"path/filepath"
	"testing"

	"kyri56xcaesar/pms-collab/internal/apperr"
)

func TestCurrentSelection(t *testing.T) {
	p := NewProvider()
	if p.Current() != nil {
		t.Fatalf("new provider has a current user")
	}

	alice := User{ID: "alice", Name: "Alice"}
	p.SetCurrent(&alice)
	alice.Name = "mutated"
	if got := p.Current(); got == nil || got.Name != "Alice" {
		t.Fatalf("current = %+v, want copy of Alice", got)
	}

	p.SetCurrent(nil)
	if p.Current() != nil {
		t.Fatalf("SetCurrent(nil) did not clear")
	}

	d := NewProvider(WithDefaultUser()).Current()
	if d == nil || d.ID != "default-user" {
		t.Fatalf("default current = %+v", d)
	}
}

func TestRegisterKeepsDuplicates(t *testing.T) {
	p := NewProvider()
	p.Register(User{ID: "u1", Name: "first"})
	p.Register(User{ID: "u1", Name: "second"})
	if n := len(p.Users()); n != 2 {
		t.Fatalf("roster size = %d, want 2", n)
	}
	u, ok := p.Lookup("u1")
	if !ok || u.Name != "first" {
		t.Fatalf("Lookup = %+v, %v; want first registration", u, ok)
	}
}

func TestUpdate(t *testing.T) {
	p := NewProvider()
	p.Register(User{ID: "u1", Name: "Old", Email: "old@example.com"})
	u, _ := p.Lookup("u1")
	p.SetCurrent(&u)

	name := "New"
	if err := p.Update("u1", UpdateUserRequest{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := p.Lookup("u1")
	if got.Name != "New" || got.Email != "old@example.com" {
		t.Fatalf("after update = %+v", got)
	}
	if p.Current().Name != "New" {
		t.Fatalf("current user not refreshed")
	}

	if err := p.Update("ghost", UpdateUserRequest{Name: &name}); !apperr.IsNotFound(err) {
		t.Fatalf("update unknown = %v, want not found", err)
	}
}

func TestLoadRosterAndSeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.yaml")
	body := `current: bob
users:
  - id: alice
    name: Alice
    email: alice@example.com
  - id: bob
    name: Bob
    email: bob@example.com
    avatar: https://example.com/bob.png
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	p := NewProvider()
	if err := Seed(p, r); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n := len(p.Users()); n != 2 {
		t.Fatalf("roster size = %d, want 2", n)
	}
	cur := p.Current()
	if cur == nil || cur.ID != "bob" || cur.Avatar == "" {
		t.Fatalf("current = %+v, want bob with avatar", cur)
	}
}

func TestLoadRosterRejectsMissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte("users:\n  - name: nobody\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadRoster(path); !apperr.IsValidation(err) {
		t.Fatalf("LoadRoster = %v, want validation error", err)
	}
}

func TestSeedUnknownCurrent(t *testing.T) {
	p := NewProvider()
	err := Seed(p, Roster{Current: "ghost", Users: []User{{ID: "alice"}}})
	if !apperr.IsNotFound(err) {
		t.Fatalf("Seed = %v, want not found", err)
	}
}
