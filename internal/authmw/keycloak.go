package authmw

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Nerzal/gocloak/v13"

	"kyri56xcaesar/pms-collab/internal/muser"
)

// RosterSync copies the users of a Keycloak realm into the user roster so that
// token identities have a name and email to show.
type RosterSync struct {
	Client       *gocloak.GoCloak
	Realm        string
	clientID     string
	clientSecret string
}

func NewRosterSync(baseURL, realm, clientID, clientSecret string) *RosterSync {
	return &RosterSync{
		Client:       gocloak.NewClient("http://" + baseURL),
		Realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Sync registers up to max realm users into p and returns how many were added.
// Users already on the roster are skipped.
func (s *RosterSync) Sync(ctx context.Context, p *muser.Provider, max int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	token, err := s.Client.LoginClient(ctx, s.clientID, s.clientSecret, s.Realm)
	if err != nil {
		return 0, fmt.Errorf("keycloak auth failed: %w", err)
	}

	users, err := s.listUsers(ctx, token.AccessToken, max)
	if err != nil {
		return 0, fmt.Errorf("keycloak list users: %w", err)
	}

	added := 0
	for _, kc := range users {
		u, ok := toUser(kc)
		if !ok {
			continue
		}
		if _, exists := p.Lookup(u.ID); exists {
			continue
		}
		p.Register(u)
		added++
	}
	log.Printf("roster sync: %d of %d realm users added", added, len(users))

	return added, nil
}

func (s *RosterSync) listUsers(ctx context.Context, token string, max int) ([]*gocloak.User, error) {
	if max <= 0 {
		max = 50
	}
	if max > 200 {
		max = 200
	}

	return s.Client.GetUsers(ctx, token, s.Realm, gocloak.GetUsersParams{
		Max: gocloak.IntP(max),
	})
}

// toUser maps a Keycloak user onto a roster entry keyed by username, the same
// value TokenResolver reports as the caller id.
func toUser(kc *gocloak.User) (muser.User, bool) {
	if kc == nil {
		return muser.User{}, false
	}
	id := gocloak.PString(kc.Username)
	if id == "" {
		id = gocloak.PString(kc.ID)
	}
	if id == "" {
		return muser.User{}, false
	}

	name := strings.TrimSpace(gocloak.PString(kc.FirstName) + " " + gocloak.PString(kc.LastName))
	if name == "" {
		name = id
	}

	return muser.User{
		ID:    id,
		Name:  name,
		Email: gocloak.PString(kc.Email),
	}, true
}
