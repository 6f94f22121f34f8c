// Command mazecapture renders stereo eye images at every listed maze cell.
//
// It reads a positions file (a prefix line, then one "x,y" grid cell per
// line), expands every cell into eight render jobs and sends them one at a
// time to the render bridge running inside the CAD host. Images land in
// <photos>/<prefix>/<prefix>_<x>_<y>_<direction>_<eye>.png.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/banshee-data/mazecapture/internal/capture"
	"github.com/banshee-data/mazecapture/internal/config"
	"github.com/banshee-data/mazecapture/internal/fsutil"
	"github.com/banshee-data/mazecapture/internal/ledger"
	"github.com/banshee-data/mazecapture/internal/positions"
	"github.com/banshee-data/mazecapture/internal/render"
	"github.com/banshee-data/mazecapture/internal/rig"
	"github.com/banshee-data/mazecapture/internal/rigplot"
	"github.com/banshee-data/mazecapture/internal/security"
	"github.com/banshee-data/mazecapture/internal/version"
)

var (
	positionsPath = flag.String("positions", positions.DefaultFileName, "Positions file: prefix line, then x,y per line")
	photosRoot    = flag.String("photos", capture.DefaultPhotosRoot, "Directory images are written under")
	configPath    = flag.String("config", "", "Rig configuration JSON (defaults built in)")
	rendererURL   = flag.String("renderer", "http://127.0.0.1:8765", "Base URL of the host render bridge")
	dryRun        = flag.Bool("dry-run", false, "Log every pose instead of rendering")
	dbPath        = flag.String("db", ledger.DefaultPath, "SQLite run ledger (empty to disable)")
	writeManifest = flag.Bool("manifest", true, "Write manifest.json next to the images")
	writePlot     = flag.Bool("plot", false, "Write rig.png and rig.html next to the images")
	showVersion   = flag.Bool("version", false, "Print version and exit")
)

// options is the parsed command line.
type options struct {
	positionsPath string
	photosRoot    string
	configPath    string
	dbPath        string
	manifest      bool
	plot          bool
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("mazecapture"))
		return
	}

	var renderer capture.Renderer
	if *dryRun {
		renderer = render.NewDryRunRenderer()
	} else {
		if *rendererURL == "" {
			log.Fatal("Renderer URL is required unless -dry-run is set")
		}
		renderer = render.NewHTTPRenderer(nil, *rendererURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		positionsPath: *positionsPath,
		photosRoot:    *photosRoot,
		configPath:    *configPath,
		dbPath:        *dbPath,
		manifest:      *writeManifest,
		plot:          *writePlot,
	}
	report, err := run(ctx, opts, fsutil.OSFileSystem{}, renderer)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := report.Err(); err != nil {
		log.Printf("%v", err)
		for _, f := range report.Failed {
			log.Printf("  job %d %s: %v", f.Seq, f.ID, f.Err)
		}
	}
	stop()
	os.Exit(exitCode(report))
}

// run performs one capture batch. Errors returned here are setup errors and
// happen before any job is rendered; render failures are in the report.
func run(ctx context.Context, opts options, fsys fsutil.FileSystem, renderer capture.Renderer) (capture.Report, error) {
	cfg := config.DefaultRigConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadRigConfig(opts.configPath); err != nil {
			return capture.Report{}, fmt.Errorf("load config: %w", err)
		}
	}
	r, err := rig.NewRig(cfg)
	if err != nil {
		return capture.Report{}, fmt.Errorf("build rig: %w", err)
	}

	pf, err := positions.Read(fsys, opts.positionsPath)
	if err != nil {
		return capture.Report{}, fmt.Errorf("read positions: %w", err)
	}
	if err := pf.Validate(r.Mapper()); err != nil {
		return capture.Report{}, fmt.Errorf("invalid positions in %s:\n%w", opts.positionsPath, err)
	}

	// The render bridge runs in another process with its own working
	// directory, so every path it receives must be absolute.
	root, err := filepath.Abs(opts.photosRoot)
	if err != nil {
		return capture.Report{}, fmt.Errorf("resolve photos root: %w", err)
	}

	jobs := capture.Enumerate(pf.Cells, pf.Prefix, r)
	log.Printf("%s: %d cells, %d jobs", pf.Prefix, len(pf.Cells), len(jobs))

	if opts.manifest {
		path, err := capture.WriteManifest(fsys, root, pf.Prefix, jobs)
		if err != nil {
			return capture.Report{}, err
		}
		log.Printf("wrote %s", path)
	}
	if opts.plot && len(jobs) > 0 {
		if err := writePlots(fsys, root, pf.Prefix, jobs); err != nil {
			return capture.Report{}, err
		}
	}

	orchOpts := []capture.Option{
		capture.WithFileSystem(fsys),
		capture.WithPhotosRoot(root),
	}
	if opts.dbPath != "" {
		l, err := ledger.Open(opts.dbPath)
		if err != nil {
			return capture.Report{}, fmt.Errorf("open ledger: %w", err)
		}
		defer l.Close()
		if prev, err := l.LatestRun(pf.Prefix); err == nil {
			log.Printf("previous %s run %s: %d/%d succeeded, %d failed, complete=%v",
				pf.Prefix, prev.RunID, prev.Succeeded, prev.Total, prev.Failed, prev.Complete())
		} else if !errors.Is(err, ledger.ErrRunNotFound) {
			log.Printf("ledger: %v", err)
		}
		orchOpts = append(orchOpts, capture.WithRecorder(l))
	}

	return capture.NewOrchestrator(renderer, orchOpts...).Run(ctx, pf.Prefix, jobs), nil
}

// writePlots writes rig.png and rig.html into the prefix folder.
func writePlots(fsys fsutil.FileSystem, root, prefix string, jobs []capture.RenderJob) error {
	dir, err := security.JoinWithin(root, prefix)
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	pngPath := filepath.Join(dir, "rig.png")
	if err := rigplot.PlotPNG(fsys, pngPath, prefix, jobs); err != nil {
		return fmt.Errorf("plot: %w", err)
	}

	htmlPath := filepath.Join(dir, "rig.html")
	f, err := fsys.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", htmlPath, err)
	}
	if err := rigplot.RenderHTML(f, prefix, jobs); err != nil {
		f.Close()
		return fmt.Errorf("plot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("wrote %s and %s", pngPath, htmlPath)
	return nil
}

func exitCode(report capture.Report) int {
	if len(report.Failed) > 0 || len(report.NotAttempted) > 0 {
		return 1
	}
	return 0
}
