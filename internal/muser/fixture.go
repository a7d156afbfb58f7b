package muser

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"kyri56xcaesar/pms-collab/internal/apperr"
)

// Roster is the on-disk user fixture:
//
//	current: alice
//	users:
//	  - id: alice
//	    name: Alice
//	    email: alice@example.com
type Roster struct {
	Current string `yaml:"current"`
	Users   []User `yaml:"users" validate:"dive"`
}

var validate = validator.New()

// LoadRoster reads and validates a YAML roster file.
func LoadRoster(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("roster: read %s: %w", path, err)
	}
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Roster{}, fmt.Errorf("roster: parse %s: %w", path, err)
	}
	if err := apperr.FromValidator(validate.Struct(r)); err != nil {
		return Roster{}, fmt.Errorf("roster: %w", err)
	}
	return r, nil
}

// Seed registers every roster user and selects r.Current when it names one of them.
func Seed(p *Provider, r Roster) error {
	for _, u := range r.Users {
		p.Register(u)
	}
	if r.Current == "" {
		return nil
	}
	u, ok := p.Lookup(r.Current)
	if !ok {
		return fmt.Errorf("roster: %w", apperr.NotFound("user", r.Current))
	}
	p.SetCurrent(&u)
	return nil
}
