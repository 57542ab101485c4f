package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/prreview-api/internal/domain/model"
)

func TestRepositoryParser_Parse(t *testing.T) {
	p := NewRepositoryParser(nil)

	tests := []struct {
		name    string
		url     string
		change  string
		want    model.RepositoryRef
		wantErr bool
	}{
		{
			name:   "https",
			url:    "https://github.com/acme/widgets",
			change: "42",
			want:   model.RepositoryRef{Host: "github.com", Owner: "acme", Name: "widgets", Number: 42},
		},
		{
			name:   "https with .git and trailing slash",
			url:    "https://github.com/acme/widgets.git/",
			change: "1",
			want:   model.RepositoryRef{Host: "github.com", Owner: "acme", Name: "widgets", Number: 1},
		},
		{
			name:   "ssh scp form",
			url:    "git@github.com:acme/widgets.git",
			change: "7",
			want:   model.RepositoryRef{Host: "github.com", Owner: "acme", Name: "widgets", Number: 7},
		},
		{
			name:   "subdomain of allowed host",
			url:    "https://www.github.com/acme/widgets",
			change: "3",
			want:   model.RepositoryRef{Host: "www.github.com", Owner: "acme", Name: "widgets", Number: 3},
		},
		{name: "empty", url: "", change: "1", wantErr: true},
		{name: "not a url", url: "::::", change: "1", wantErr: true},
		{name: "unsupported scheme", url: "ftp://github.com/acme/widgets", change: "1", wantErr: true},
		{name: "missing repo segment", url: "https://github.com/acme", change: "1", wantErr: true},
		{name: "extra path", url: "https://github.com/acme/widgets/pull/1", change: "1", wantErr: true},
		{name: "unknown host", url: "https://gitlab.example.com/acme/widgets", change: "1", wantErr: true},
		{name: "lookalike host", url: "https://github.com.evil.io/acme/widgets", change: "1", wantErr: true},
		{name: "bad segment", url: "https://github.com/acme/wid gets", change: "1", wantErr: true},
		{name: "bad change id", url: "https://github.com/acme/widgets", change: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.url, tt.change)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepositoryParser_EnterpriseHost(t *testing.T) {
	p := NewRepositoryParser([]string{"git.corp.example.com"})

	ref, err := p.Parse("https://git.corp.example.com/team/svc", "9")
	require.NoError(t, err)
	assert.Equal(t, "git.corp.example.com", ref.Host)

	// only registrable-domain entries widen to subdomains
	assert.False(t, p.HostAllowed("other.corp.example.com"))
	assert.False(t, p.HostAllowed("github.com"))
}
