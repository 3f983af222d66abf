// pkg/service/service.go

// Package service reads scan folders from a blob store and turns them into
// aggregated summaries.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vulntor/scanlens/pkg/aggregate"
	"github.com/vulntor/scanlens/pkg/parse"
	"github.com/vulntor/scanlens/pkg/report"
	"github.com/vulntor/scanlens/pkg/scanpath"
	"github.com/vulntor/scanlens/pkg/storage"
)

var (
	// ErrUnknownTool is returned by Tool for a name outside the tool table.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrUpstream marks a storage failure other than a missing blob.
	ErrUpstream = errors.New("upstream storage failure")
)

// Fetch outcomes reported to Observer.
const (
	FetchOK      = "ok"
	FetchMissing = "missing"
	FetchError   = "error"
)

// Observer extends the aggregate hook with storage and timing events.
type Observer interface {
	aggregate.Observer
	ObserveFetch(outcome string)
	ObserveAggregate(d time.Duration)
}

// Service answers summary queries against one blob container.
type Service struct {
	Store     storage.BlobStore
	Container string

	// Observer is optional.
	Observer Observer

	// Clock supplies "now" for summaries of folders without a dated path.
	// Defaults to time.Now.
	Clock func() time.Time
}

// New returns a Service reading container from store.
func New(store storage.BlobStore, container string, obs Observer) *Service {
	return &Service{Store: store, Container: container, Observer: obs}
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) aggregateObserver() aggregate.Observer {
	if s.Observer == nil {
		return nil
	}
	return s.Observer
}

// Locate returns the newest scan folder, optionally restricted to one
// target. ok is false when there is none.
func (s *Service) Locate(ctx context.Context, target string) (loc report.ScanLocation, ok bool, err error) {
	names, err := s.names(ctx)
	if err != nil {
		return report.ScanLocation{}, false, err
	}
	loc, ok = scanpath.FindLatest(names, target)
	return loc, ok, nil
}

// Latest summarizes the newest scan folder, optionally restricted to one
// target. When no scan exists yet it returns an empty summary with unknown
// identity and no error.
func (s *Service) Latest(ctx context.Context, target string) (report.ScanSummary, error) {
	loc, ok, err := s.Locate(ctx, target)
	if err != nil {
		return report.ScanSummary{}, err
	}
	if !ok {
		log.Debug().
			Str("component", "service").
			Str("target", target).
			Msg("No scan folder found")
		return aggregate.Aggregate(aggregate.Files{}, aggregate.Options{
			Now:      s.now,
			Observer: s.aggregateObserver(),
		}), nil
	}

	return s.Report(ctx, loc)
}

// Report downloads every canonical file of loc concurrently and aggregates
// them. Missing files contribute nothing; any other storage error fails the
// whole report.
func (s *Service) Report(ctx context.Context, loc report.ScanLocation) (report.ScanSummary, error) {
	if err := validateLocation(loc); err != nil {
		return report.ScanSummary{}, err
	}

	files, err := s.download(ctx, loc, scanpath.CandidateFiles)
	if err != nil {
		return report.ScanSummary{}, err
	}

	start := time.Now()
	summary := aggregate.Aggregate(files, aggregate.Options{
		Location: loc,
		Now:      s.now,
		Observer: s.aggregateObserver(),
	})
	if s.Observer != nil {
		s.Observer.ObserveAggregate(time.Since(start))
	}

	log.Debug().
		Str("component", "service").
		Str("target", loc.Target).
		Str("date", loc.Date).
		Int("files", len(files)).
		Int("vulnerabilities", summary.Summary.TotalVulnerabilities).
		Msg("Scan aggregated")

	return summary, nil
}

// Tool returns the parsed view of a single tool for loc: *report.NiktoResult,
// *report.NmapResult, *report.NucleiResult, *report.ToolResult,
// []report.Credential or []string.
func (s *Service) Tool(ctx context.Context, loc report.ScanLocation, tool string) (any, error) {
	candidates := aggregate.ToolFiles(tool)
	if candidates == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	if err := validateLocation(loc); err != nil {
		return nil, err
	}

	files, err := s.download(ctx, loc, candidates)
	if err != nil {
		return nil, err
	}

	summary := aggregate.Aggregate(files, aggregate.Options{
		Location: loc,
		Now:      s.now,
		Observer: s.aggregateObserver(),
	})
	if v, ok := toolView(summary, tool); ok {
		return v, nil
	}
	return nil, storage.NewNotFoundError(tool+" result", scanpath.ScanPrefix(loc))
}

func toolView(s report.ScanSummary, tool string) (any, bool) {
	switch tool {
	case parse.ToolNikto:
		return s.Nikto, s.Nikto != nil
	case parse.ToolNmap:
		return s.Nmap, s.Nmap != nil
	case parse.ToolNuclei:
		return s.Nuclei, s.Nuclei != nil
	case parse.ToolHydra:
		return s.Hydra, s.Hydra != nil
	case parse.ToolGobuster:
		return s.Gobuster, s.Gobuster != nil
	case parse.ToolSQLMap:
		return s.SQLMap, s.SQLMap != nil
	case parse.ToolCredentials:
		return s.Credentials, len(s.Credentials) > 0
	case parse.ToolWordlist:
		return s.Wordlist, len(s.Wordlist) > 0
	}
	return nil, false
}

// Targets lists every target with at least one scan folder.
func (s *Service) Targets(ctx context.Context) ([]string, error) {
	names, err := s.names(ctx)
	if err != nil {
		return nil, err
	}
	return scanpath.Targets(names), nil
}

// names lists the container. A missing container means no scans yet.
func (s *Service) names(ctx context.Context) ([]string, error) {
	blobs, err := s.Store.ListBlobs(ctx, s.Container)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: list %s: %w", ErrUpstream, s.Container, err)
	}
	return storage.Names(blobs), nil
}

// download fetches files of loc in parallel. The result only holds files
// that exist.
func (s *Service) download(ctx context.Context, loc report.ScanLocation, files []string) (aggregate.Files, error) {
	var (
		mu  sync.Mutex
		out = make(aggregate.Files, len(files))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(files))

	for _, file := range files {
		name := scanpath.BlobName(loc, file)
		g.Go(func() error {
			data, err := s.Store.Download(gctx, s.Container, name)
			switch {
			case err == nil:
				s.observeFetch(FetchOK)
			case storage.IsNotFound(err):
				s.observeFetch(FetchMissing)
				log.Debug().
					Str("component", "service").
					Str("blob", name).
					Msg("Scan file not present")
				return nil
			default:
				s.observeFetch(FetchError)
				return fmt.Errorf("%w: download %s/%s: %w", ErrUpstream, s.Container, name, err)
			}

			mu.Lock()
			out[file] = string(data)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn().
			Err(err).
			Str("component", "service").
			Str("target", loc.Target).
			Str("date", loc.Date).
			Msg("Scan download failed")
		return nil, err
	}
	return out, nil
}

func (s *Service) observeFetch(outcome string) {
	if s.Observer != nil {
		s.Observer.ObserveFetch(outcome)
	}
}

func validateLocation(loc report.ScanLocation) error {
	fields := []struct{ name, value string }{{"target", loc.Target}, {"date", loc.Date}}
	for _, f := range fields {
		field, v := f.name, f.value
		if v == "" {
			return storage.NewInvalidInputError(field, "must not be empty")
		}
		if v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
			return storage.NewInvalidInputError(field, fmt.Sprintf("invalid path segment %q", v))
		}
	}
	return nil
}
