// Package identity describes who a session belongs to. An Identity is either a User, which
// accumulates uptime under its company scope, or a Company, which only records sessions.
package identity

type Kind string

const (
	KindUser    Kind = "user"
	KindCompany Kind = "company"
)

type Identity interface {
	Kind() Kind
	// SubjectID returns the user id; ok is false for company identities.
	SubjectID() (id string, ok bool)
	ScopeID() string
	// Key identifies the (subject, scope) pair for locking and caching.
	Key() string
}

type User struct {
	ID          string
	CompanyCode string
}

func (u User) Kind() Kind { return KindUser }

func (u User) SubjectID() (string, bool) { return u.ID, true }

// ScopeID falls back to the user's own id when it is not attached to a company.
func (u User) ScopeID() string {
	if u.CompanyCode != "" {
		return u.CompanyCode
	}
	return u.ID
}

func (u User) Key() string {
	return "user:" + u.ID + "@" + u.ScopeID()
}

type Company struct {
	ID string
}

func (c Company) Kind() Kind { return KindCompany }

func (c Company) SubjectID() (string, bool) { return "", false }

func (c Company) ScopeID() string { return c.ID }

func (c Company) Key() string {
	return "company:" + c.ID
}

// Subject returns the subject id as a nullable pointer, nil for companies.
func Subject(id Identity) *string {
	subject, ok := id.SubjectID()
	if !ok {
		return nil
	}
	return &subject
}

// New builds an identity from token claims. Unknown kinds are treated as users, matching how
// tokens without a type were issued before companies could log in.
func New(kind, id, companyCode string) Identity {
	if Kind(kind) == KindCompany {
		return Company{ID: id}
	}
	return User{ID: id, CompanyCode: companyCode}
}
