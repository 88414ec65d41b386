// Package source resolves CDN identifiers into media descriptions for the
// stream engine.
//
// An identifier is a URI whose scheme selects an Opener. Identifiers without
// a scheme are file paths.
package source

import (
	"context"
	"image"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// Info describes a resolved source.
type Info struct {
	URI      string
	Title    string
	Artist   string
	Duration mediatime.Time
	// Keyframes lists the seekable positions in ascending order. Nil means
	// every position is seekable.
	Keyframes []mediatime.Time
	Video     image.Rectangle // empty for audio-only sources
	Codecs    []string
	Size      int64
}

// HasVideo reports whether the source carries a video track.
func (i Info) HasVideo() bool { return !i.Video.Empty() }

// Options carries player settings relevant to source access.
type Options struct {
	EnablePDN bool
}

// Opener resolves identifiers of one scheme.
type Opener interface {
	Open(ctx context.Context, u *url.URL, opts Options) (Info, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, u *url.URL, opts Options) (Info, error)

func (f OpenerFunc) Open(ctx context.Context, u *url.URL, opts Options) (Info, error) {
	return f(ctx, u, opts)
}

// Resolver maps schemes to Openers.
type Resolver struct {
	mu      sync.RWMutex
	openers map[string]Opener
	logger  hclog.Logger
}

// NewResolver returns a Resolver with the file scheme registered.
func NewResolver(logger hclog.Logger) *Resolver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	r := &Resolver{
		openers: map[string]Opener{},
		logger:  logger,
	}
	r.Register("file", &File{Logger: logger.Named("file")})
	return r
}

// Register installs o for scheme, replacing any previous Opener.
func (r *Resolver) Register(scheme string, o Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[strings.ToLower(scheme)] = o
}

// Schemes returns the registered schemes, sorted.
func (r *Resolver) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.openers))
	for s := range r.openers {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Resolve opens the source named by cdn. Errors are *errmsg.Error values
// with Op OpOpen.
func (r *Resolver) Resolve(ctx context.Context, cdn string, opts Options) (Info, error) {
	if strings.TrimSpace(cdn) == "" {
		return Info{}, errmsg.Errorf(errmsg.OpOpen, errmsg.CodeInvalidArgument, "empty CDN identifier")
	}
	u, err := parse(cdn)
	if err != nil {
		return Info{}, errmsg.New(errmsg.OpOpen, errmsg.CodeInvalidArgument, err)
	}

	r.mu.RLock()
	o, ok := r.openers[u.Scheme]
	r.mu.RUnlock()
	if !ok {
		return Info{}, errmsg.Errorf(errmsg.OpOpen, errmsg.CodeUnsupportedSource, "no source for scheme %q", u.Scheme)
	}

	r.logger.Debug("resolving source", "uri", u.String(), "pdn", opts.EnablePDN)
	info, err := o.Open(ctx, u, opts)
	if err != nil {
		if errmsg.CodeOf(err) != errmsg.CodeUnknown {
			return Info{}, err
		}
		return Info{}, errmsg.New(errmsg.OpOpen, errmsg.CodeSourceUnavailable, err)
	}
	if info.URI == "" {
		info.URI = u.String()
	}
	return info, nil
}

// parse accepts URIs and bare paths.
func parse(cdn string) (*url.URL, error) {
	if !strings.Contains(cdn, "://") && !strings.HasPrefix(cdn, "file:") {
		return &url.URL{Scheme: "file", Path: cdn}, nil
	}
	u, err := url.Parse(cdn)
	if err != nil {
		return nil, err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}

// LocalPath returns the filesystem path named by a file identifier.
func LocalPath(cdn string) (string, bool) {
	if strings.TrimSpace(cdn) == "" {
		return "", false
	}
	u, err := parse(cdn)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	return path, path != ""
}
