package users

import (
	"context"

	"github.com/krcapps/orderdash/internal/app/system/auth"
	"github.com/krcapps/orderdash/internal/app/system/normalize"
	"github.com/krcapps/orderdash/internal/domain/models"
)

// AllowList is the set of admin emails, keyed by normalized email.
// Admin standing is derived from it on every request rather than
// persisted, so editing the list takes effect immediately.
type AllowList map[string]struct{}

func NewAllowList(emails []string) AllowList {
	al := make(AllowList, len(emails))
	for _, e := range emails {
		if e = normalize.Email(e); e != "" {
			al[e] = struct{}{}
		}
	}
	return al
}

func (al AllowList) Contains(email string) bool {
	_, ok := al[normalize.Email(email)]
	return ok
}

// Fetcher resolves session users against the directory on each request,
// so deletions and role changes take effect without a new sign-in.
type Fetcher struct {
	dir   *Directory
	admin AllowList
}

func NewFetcher(dir *Directory, admin AllowList) *Fetcher {
	return &Fetcher{dir: dir, admin: admin}
}

// FetchUser implements auth.UserFetcher. A nil return drops the session
// user; a deleted account loses access on its next request.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	u, err := f.dir.GetByID(ctx, userID)
	if err != nil {
		return nil
	}
	role := models.RoleUser
	if f.admin.Contains(u.Email) {
		role = models.RoleAdmin
	}
	return &auth.SessionUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  role,
	}
}
