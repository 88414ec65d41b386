package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/hashicorp/go-hclog"
	"github.com/llehouerou/go-m4a"

	"github.com/llehouerou/vbplayer/internal/errmsg"
	"github.com/llehouerou/vbplayer/internal/fmp4"
	"github.com/llehouerou/vbplayer/internal/mediatime"
)

// File opens local MP4 family files.
type File struct {
	Logger hclog.Logger
}

var _ Opener = (*File)(nil)

// Open probes the file at u. Video files are read with the MP4 box parser
// for geometry and keyframes; .m4a files through the M4A container reader.
func (f *File) Open(ctx context.Context, u *url.URL, opts Options) (Info, error) {
	logger := f.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	if path == "" {
		return Info{}, errmsg.Errorf(errmsg.OpOpen, errmsg.CodeInvalidArgument, "file URI without path")
	}
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		return Info{}, errmsg.Errorf(errmsg.OpOpen, errmsg.CodeUnsupportedSource, "unsupported format: %s", ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return Info{}, errmsg.New(errmsg.OpOpen, errmsg.CodeSourceUnavailable, err)
	}
	defer file.Close()

	st, err := file.Stat()
	if err != nil {
		return Info{}, errmsg.New(errmsg.OpOpen, errmsg.CodeSourceUnavailable, err)
	}

	var info Info
	if ext == ".m4a" {
		info, err = probeM4A(file)
	} else {
		info, err = probeMP4(file)
	}
	if err != nil {
		return Info{}, errmsg.New(errmsg.OpOpen, errmsg.CodeMalformed, fmt.Errorf("%s: %w", filepath.Base(path), err))
	}
	info.URI = u.String()
	info.Size = st.Size()

	readTags(file, &info)
	if info.Title == "" {
		info.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if opts.EnablePDN {
		// Local files have no peers to share with.
		logger.Debug("peer delivery requested for local file, ignoring", "path", path)
	}
	logger.Info("opened source",
		"path", path,
		"duration", info.Duration.Seconds(),
		"video", info.HasVideo(),
		"keyframes", len(info.Keyframes),
	)
	return info, nil
}

func supported(ext string) bool {
	switch ext {
	case ".mp4", ".m4v", ".mov", ".m4a":
		return true
	}
	return false
}

func probeMP4(r io.ReadSeeker) (Info, error) {
	movie, err := fmp4.Probe(r)
	if err != nil {
		return Info{}, err
	}
	info := Info{Duration: movie.Duration, Keyframes: movie.Keyframes}
	for _, t := range movie.Tracks {
		if t.Codec != "" {
			info.Codecs = append(info.Codecs, t.Codec)
		}
	}
	if v, ok := movie.Video(); ok {
		info.Video = v.Rect()
	}
	return info, nil
}

func probeM4A(f *os.File) (Info, error) {
	container, err := m4a.Open(f)
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Duration: mediatime.FromDuration(container.Duration()),
	}
	switch container.Codec() {
	case m4a.CodecAAC:
		info.Codecs = []string{"mp4a"}
	case m4a.CodecALAC:
		info.Codecs = []string{"alac"}
	case m4a.CodecUnknown:
	}
	return info, nil
}

func readTags(r io.ReadSeeker, info *Info) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return
	}
	m, err := tag.ReadFrom(r)
	if err != nil {
		return
	}
	info.Title = m.Title()
	info.Artist = m.Artist()
}
