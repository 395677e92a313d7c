package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Role grants access to a class of operations.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is one entry of the static credential list.
type User struct {
	Name string
	Hash []byte
	Role Role
}

// ParseUsers parses "name:bcrypt-hash:ROLE" entries.
func ParseUsers(entries []string) ([]User, error) {
	users := make([]User, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid user entry %q: want name:hash:role", entry)
		}
		role := Role(strings.ToUpper(parts[2]))
		if role != RoleUser && role != RoleAdmin {
			return nil, fmt.Errorf("invalid role %q for user %s", parts[2], parts[0])
		}
		if _, err := bcrypt.Cost([]byte(parts[1])); err != nil {
			return nil, fmt.Errorf("invalid bcrypt hash for user %s: %w", parts[0], err)
		}
		users = append(users, User{Name: parts[0], Hash: []byte(parts[1]), Role: role})
	}
	return users, nil
}

// dummyHash is compared against when the user is unknown so that both
// paths spend the same time in bcrypt.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("franchiseapi"), bcrypt.DefaultCost)

// Authenticator enforces HTTP Basic authentication. Reads require USER or
// ADMIN, writes require ADMIN.
type Authenticator struct {
	users  map[string]User
	logger *zap.Logger
}

func NewAuthenticator(users []User, logger *zap.Logger) *Authenticator {
	byName := make(map[string]User, len(users))
	for _, u := range users {
		byName[u.Name] = u
	}
	return &Authenticator{users: byName, logger: logger}
}

// Middleware rejects unauthenticated requests with 401 and requests
// lacking the required role with 403.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		name, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w)
			return
		}

		user, known := a.users[name]
		hash := user.Hash
		if !known {
			hash = dummyHash
		}
		if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !known {
			a.logger.Info("authentication failed", zap.String("user", name), zap.String("path", r.URL.Path))
			unauthorized(w)
			return
		}

		if !allowed(user.Role, r.Method) {
			a.logger.Info("access denied",
				zap.String("user", name),
				zap.String("role", string(user.Role)),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			writeProblem(w, http.StatusForbidden, "insufficient role")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func allowed(role Role, method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return role == RoleUser || role == RoleAdmin
	default:
		return role == RoleAdmin
	}
}

func isPublicPath(path string) bool {
	switch {
	case path == "/healthz", path == "/metrics", path == "/docs":
		return true
	case strings.HasPrefix(path, "/openapi"), strings.HasPrefix(path, "/schemas/"):
		return true
	}
	return false
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="franchiseapi", charset="UTF-8"`)
	writeProblem(w, http.StatusUnauthorized, "authentication required")
}

// writeProblem writes an RFC 9457 body shaped like Huma's own errors.
func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&huma.ErrorModel{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
