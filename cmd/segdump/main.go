// Command segdump prints the tracks and fragment time ranges of MP4 files,
// init and media segments, or whole segment directories.
//
//	segdump [-init init.mp4] [-boxes] <file|dir>...
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/abema/go-mp4"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/vbplayer/internal/feeder"
	"github.com/llehouerou/vbplayer/internal/fmp4"
)

func main() {
	log.SetFlags(0)
	initPath := flag.String("init", "", "init segment used to resolve media segments")
	boxes := flag.Bool("boxes", false, "print the box tree of each file")
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatalf("usage: segdump [-init init.mp4] [-boxes] <file|dir>...")
	}

	var init *fmp4.Init
	if *initPath != "" {
		data, err := os.ReadFile(*initPath)
		if err != nil {
			log.Fatal(err)
		}
		seg, err := fmp4.Parse(data, nil)
		if err != nil || seg.Init == nil {
			log.Fatalf("%s: not an init segment", *initPath)
		}
		init = seg.Init
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	failed := false
	for _, path := range flag.Args() {
		fi, err := os.Stat(path)
		if err != nil {
			log.Print(err)
			failed = true
			continue
		}
		if fi.IsDir() {
			err = dumpDir(w, path)
		} else {
			if *boxes {
				err = dumpBoxes(w, path)
			}
			if err == nil {
				init, err = dumpFile(w, path, init)
			}
		}
		if err != nil {
			w.Flush()
			log.Printf("%s: %v", path, err)
			failed = true
		}
	}
	if failed {
		w.Flush()
		os.Exit(1)
	}
}

func dumpDir(w io.Writer, dir string) error {
	pl, err := feeder.Scan(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\t%d segments\t%s\t%s\n", dir, len(pl.Segments), pl.Duration(), humanize.IBytes(uint64(pl.Size())))
	dumpTracks(w, pl.Init.Tracks)
	for _, s := range pl.Segments {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", s.Name(), s.Start, s.End, humanize.IBytes(uint64(s.Size)))
	}
	return nil
}

// dumpFile returns the init to use for the next files: the one carried by
// path, or init.
func dumpFile(w io.Writer, path string, init *fmp4.Init) (*fmp4.Init, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return init, err
	}
	seg, err := fmp4.Parse(data, init)
	if err != nil {
		// A progressive file has a moov box but no fragments.
		f, openErr := os.Open(path)
		if openErr != nil {
			return init, err
		}
		defer f.Close()
		movie, probeErr := fmp4.Probe(f)
		if probeErr != nil {
			return init, err
		}
		fmt.Fprintf(w, "%s\tprogressive\t%s\t%d keyframes\n", path, movie.Duration, len(movie.Keyframes))
		dumpTracks(w, movie.Tracks)
		return init, nil
	}

	kind := "media segment"
	if seg.Init != nil {
		kind = "init segment"
		init = seg.Init
	}
	fmt.Fprintf(w, "%s\t%s\t%s\n", path, kind, humanize.IBytes(uint64(len(data))))
	if seg.Init != nil {
		dumpTracks(w, seg.Init.Tracks)
	}
	for _, f := range seg.Fragments {
		fmt.Fprintf(w, "  track %d\t%s\t%s .. %s\t%d samples\t%s\n",
			f.TrackID, f.Kind, f.Start(), f.End(), f.Samples, humanize.IBytes(uint64(f.Size)))
	}
	return init, nil
}

func dumpTracks(w io.Writer, tracks []fmp4.Track) {
	for _, t := range tracks {
		geometry := ""
		if !t.Rect().Empty() {
			geometry = fmt.Sprintf("%dx%d", t.Width, t.Height)
		}
		fmt.Fprintf(w, "  track %d\t%s\t%s\t%d Hz\t%s\n", t.ID, t.Kind, t.Codec, t.Timescale, geometry)
	}
}

func dumpBoxes(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = mp4.ReadBoxStructure(f, func(h *mp4.ReadHandle) (interface{}, error) {
		depth := len(h.Path) - 1
		fmt.Fprintf(w, "%s%s\t%d\t@%d\n", strings.Repeat("  ", depth), h.BoxInfo.Type, h.BoxInfo.Size, h.BoxInfo.Offset)
		if isContainer(h.BoxInfo.Type) {
			return h.Expand()
		}
		return nil, nil
	})
	return err
}

func isContainer(t mp4.BoxType) bool {
	switch t {
	case mp4.BoxTypeMoov(), mp4.BoxTypeTrak(), mp4.BoxTypeMdia(), mp4.BoxTypeMinf(),
		mp4.BoxTypeStbl(), mp4.BoxTypeMoof(), mp4.BoxTypeTraf(), mp4.BoxTypeMvex(),
		mp4.BoxTypeEdts(), mp4.BoxTypeDinf(), mp4.BoxTypeUdta():
		return true
	}
	return false
}
