package review

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/target/prreview-api/internal/domain/model"
	"golang.org/x/net/publicsuffix"
)

var (
	// scp-like SSH remotes: git@github.com:owner/repo(.git).
	sshRemoteRe = regexp.MustCompile(`^[^@\s]+@([^:\s]+):([^/\s]+)/([^/\s]+?)/?$`)
	segmentRe   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// DefaultAllowedHosts are the source-control hosts accepted when none are configured.
var DefaultAllowedHosts = []string{"github.com"}

// RepositoryParser recognizes repository references on an allow-listed set of hosts.
type RepositoryParser struct {
	allowed []string
}

// NewRepositoryParser returns a parser for the given hosts. An empty list selects DefaultAllowedHosts.
func NewRepositoryParser(hosts []string) *RepositoryParser {
	if len(hosts) == 0 {
		hosts = DefaultAllowedHosts
	}
	p := &RepositoryParser{}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			p.allowed = append(p.allowed, h)
		}
	}
	return p
}

// Parse turns a repository URL and change identifier into a RepositoryRef.
// Errors wrap ErrInvalidRequest.
func (p *RepositoryParser) Parse(repoURL, changeID string) (model.RepositoryRef, error) {
	host, owner, name, err := splitRepositoryURL(strings.TrimSpace(repoURL))
	if err != nil {
		return model.RepositoryRef{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if !p.HostAllowed(host) {
		return model.RepositoryRef{}, fmt.Errorf("%w: host %q is not a recognized source-control endpoint", ErrInvalidRequest, host)
	}
	n, err := model.ParseChangeNumber(changeID)
	if err != nil {
		return model.RepositoryRef{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return model.RepositoryRef{Host: host, Owner: owner, Name: name, Number: n}, nil
}

// HostAllowed reports whether host is on the allow-list, either exactly or as a
// subdomain sharing the allow-listed registrable domain (www.github.com).
func (p *RepositoryParser) HostAllowed(host string) bool {
	host = strings.ToLower(host)
	hostETLD := registrableDomain(host)
	for _, a := range p.allowed {
		if host == a {
			return true
		}
		if a == registrableDomain(a) && hostETLD == a {
			return true
		}
	}
	return false
}

func registrableDomain(host string) string {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return etld1
}

func splitRepositoryURL(raw string) (host, owner, name string, err error) {
	if raw == "" {
		return "", "", "", errors.New("repository reference is empty")
	}
	if m := sshRemoteRe.FindStringSubmatch(raw); len(m) == 4 {
		host, owner, name = m[1], m[2], m[3]
	} else {
		u, perr := url.Parse(raw)
		if perr != nil {
			return "", "", "", fmt.Errorf("malformed repository URL: %w", perr)
		}
		if u.Scheme != "https" && u.Scheme != "http" && u.Scheme != "ssh" {
			return "", "", "", fmt.Errorf("unsupported repository URL scheme %q", u.Scheme)
		}
		host = u.Hostname()
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) != 2 {
			return "", "", "", fmt.Errorf("repository URL must name owner/repo: %q", raw)
		}
		owner, name = parts[0], parts[1]
	}
	name = strings.TrimSuffix(name, ".git")
	if host == "" {
		return "", "", "", fmt.Errorf("repository URL has no host: %q", raw)
	}
	if !segmentRe.MatchString(owner) || !segmentRe.MatchString(name) {
		return "", "", "", fmt.Errorf("unparsable owner/repo segments in %q", raw)
	}
	return strings.ToLower(host), owner, name, nil
}
