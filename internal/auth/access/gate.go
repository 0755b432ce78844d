// Package access decides where a request may go based only on the session
// flags: logged in, role and whether TOTP is enabled. It performs no I/O.
package access

import (
	"strings"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/domain"
)

// Paths names the logical pages the gate routes between.
type Paths struct {
	Login       string   `toml:"login"`
	Enrollment  string   `toml:"enrollment"`
	AdminPrefix string   `toml:"admin_prefix"`
	AdminHome   string   `toml:"admin_home"`
	Dashboard   string   `toml:"dashboard"`
	Public      []string `toml:"public"`
}

// DefaultPaths matches the routes of the web client.
func DefaultPaths() Paths {
	return Paths{
		Login:       "/login",
		Enrollment:  "/setup-2fa",
		AdminPrefix: "/admin",
		AdminHome:   "/admin/users",
		Dashboard:   "/dashboard",
	}
}

// Request is the session state and destination being evaluated.
type Request struct {
	LoggedIn    bool
	Role        domain.Role
	TOTPEnabled bool
	Path        string
}

// Decision is either allow (empty Redirect) or a redirect target.
type Decision struct {
	Redirect string
}

func (d Decision) Allowed() bool { return d.Redirect == "" }

var allow = Decision{}

func redirect(to string) Decision { return Decision{Redirect: to} }

type Gate struct {
	paths Paths
}

// New builds a gate. Empty fields of paths fall back to DefaultPaths.
func New(paths Paths) *Gate {
	def := DefaultPaths()
	if paths.Login == "" {
		paths.Login = def.Login
	}
	if paths.Enrollment == "" {
		paths.Enrollment = def.Enrollment
	}
	if paths.AdminPrefix == "" {
		paths.AdminPrefix = def.AdminPrefix
	}
	if paths.AdminHome == "" {
		paths.AdminHome = def.AdminHome
	}
	if paths.Dashboard == "" {
		paths.Dashboard = def.Dashboard
	}
	return &Gate{paths: paths}
}

func (g *Gate) Paths() Paths { return g.paths }

// Evaluate applies the routing rules in order; the first one that matches wins.
func (g *Gate) Evaluate(req Request) Decision {
	p := g.paths
	path := normalize(req.Path)

	for _, public := range p.Public {
		if hasPrefix(path, public) {
			return allow
		}
	}

	if !req.LoggedIn {
		if hasPrefix(path, p.Login) {
			return allow
		}
		return redirect(p.Login)
	}

	needsEnrollment := req.Role.IsStaff() && !req.TOTPEnabled

	if path == "/" || hasPrefix(path, p.Login) {
		switch {
		case req.Role.IsAdmin():
			return redirect(p.AdminHome)
		case needsEnrollment:
			return redirect(p.Enrollment)
		default:
			return redirect(p.Dashboard)
		}
	}

	onEnrollment := hasPrefix(path, p.Enrollment)

	if needsEnrollment && !onEnrollment {
		return redirect(p.Enrollment)
	}

	if req.TOTPEnabled && onEnrollment {
		if req.Role.IsAdmin() {
			return redirect(p.AdminHome)
		}
		return redirect(p.Dashboard)
	}

	if !req.Role.IsAdmin() && hasPrefix(path, p.AdminPrefix) {
		return redirect(p.Dashboard)
	}

	return allow
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// hasPrefix matches whole path segments, so "/admin" covers "/admin/users"
// but not "/administrator".
func hasPrefix(path, prefix string) bool {
	prefix = normalize(prefix)
	if prefix == "/" {
		return path == "/"
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
