// Package export saves search results to disk, either one JSON file per record
// or a single zstd-compressed bundle.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/securesentinels/vuln-search/cvss"
	"github.com/securesentinels/vuln-search/logger"
	"github.com/securesentinels/vuln-search/types"
	"github.com/securesentinels/vuln-search/utils"
)

const (
	BundleExt = ".json.zst"

	// recordsDir holds records that carry no CVE ID.
	recordsDir = "records"

	// DefaultPageSize is the page size used when walking a severity.
	DefaultPageSize = 100
)

type Exporter struct {
	fs       utils.Fs
	pageSize int
	progress io.Writer
}

type option func(*Exporter)

func WithFs(fs afero.Fs) option {
	return func(e *Exporter) { e.fs = utils.NewFs(fs) }
}

func WithPageSize(n int) option {
	return func(e *Exporter) { e.pageSize = n }
}

// WithProgressOutput sets where the progress bar is drawn. nil disables it.
func WithProgressOutput(w io.Writer) option {
	return func(e *Exporter) { e.progress = w }
}

func New(opts ...option) Exporter {
	e := Exporter{
		fs:       utils.NewFs(afero.NewOsFs()),
		pageSize: DefaultPageSize,
		progress: os.Stderr,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// IsBundle reports whether dest names a compressed bundle rather than a directory.
func IsBundle(dest string) bool {
	return strings.HasSuffix(dest, BundleExt)
}

// Save writes records under dest. CVE records go to dest/<year>/<CVE-ID>.json,
// anything else to dest/records/<n>.json. A dest ending in .json.zst gets a
// single compressed JSON array instead.
func (e Exporter) Save(records []types.Record, dest string) error {
	if IsBundle(dest) {
		return e.saveBundle(records, dest)
	}
	for i, r := range records {
		if err := e.saveRecord(dest, i, r); err != nil {
			return err
		}
	}
	logger.Logger.Infow("Saved records", "count", len(records), "dir", dest)
	return nil
}

// ExportSeverity walks every page of a severity and saves all records.
func (e Exporter) ExportSeverity(api cvss.API, severity types.Severity, dest string) (int, error) {
	if !severity.Valid() {
		return 0, xerrors.Errorf("unknown severity %q", severity)
	}
	if e.pageSize < 1 {
		return 0, xerrors.Errorf("page size must be positive, got %d", e.pageSize)
	}

	logger.Logger.Infow("Fetching vulnerabilities", "severity", severity)
	first, err := api.SearchCVSS(severity, 0, e.pageSize)
	if err != nil {
		return 0, xerrors.Errorf("unable to fetch the first %s page: %w", severity, err)
	}

	bar := e.startBar(first.TotalResults)
	defer bar.Finish()

	var all []types.Record
	page := first
	start := 0
	for {
		if IsBundle(dest) {
			all = append(all, page.Vulnerabilities...)
		} else {
			for i, r := range page.Vulnerabilities {
				if err = e.saveRecord(dest, start+i, r); err != nil {
					return start + i, err
				}
			}
		}
		bar.Add(len(page.Vulnerabilities))

		start += len(page.Vulnerabilities)
		// an empty page before totalResults is reached would loop forever
		if len(page.Vulnerabilities) == 0 || start >= first.TotalResults {
			break
		}
		page, err = api.SearchCVSS(severity, start, e.pageSize)
		if err != nil {
			return start, xerrors.Errorf("unable to fetch %s page at %d: %w", severity, start, err)
		}
	}

	if IsBundle(dest) {
		if err = e.saveBundle(all, dest); err != nil {
			return 0, err
		}
	}
	logger.Logger.Infow("Exported vulnerabilities", "severity", severity, "count", start, "dest", dest)
	return start, nil
}

func (e Exporter) saveRecord(dir string, n int, r types.Record) error {
	if id := r.ID(); id != "" {
		if _, err := utils.CVEYear(id); err == nil {
			if _, err = e.fs.SaveCVEPerYear(dir, id, r); err != nil {
				return xerrors.Errorf("unable to save %s: %w", id, err)
			}
			return nil
		}
	}
	path := filepath.Join(dir, recordsDir, fmt.Sprintf("%d.json", n))
	if err := e.fs.WriteJSON(path, r); err != nil {
		return xerrors.Errorf("unable to save record %d: %w", n, err)
	}
	return nil
}

func (e Exporter) saveBundle(records []types.Record, dest string) error {
	if records == nil {
		records = []types.Record{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return xerrors.Errorf("failed to marshal JSON: %w", err)
	}

	if err = e.fs.AppFs.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return xerrors.Errorf("unable to create a directory: %w", err)
	}
	f, err := e.fs.AppFs.Create(dest)
	if err != nil {
		return xerrors.Errorf("unable to open a file: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return xerrors.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err = enc.Write(b); err != nil {
		enc.Close()
		return xerrors.Errorf("failed to compress records: %w", err)
	}
	if err = enc.Close(); err != nil {
		return xerrors.Errorf("failed to flush zstd writer: %w", err)
	}
	logger.Logger.Infow("Saved bundle", "count", len(records), "path", dest)
	return nil
}

func (e Exporter) startBar(total int) *pb.ProgressBar {
	bar := pb.New(total)
	if e.progress == nil {
		bar.SetWriter(io.Discard)
	} else {
		bar.SetWriter(e.progress)
	}
	return bar.Start()
}

// LoadBundle reads a bundle written by Save.
func LoadBundle(fs afero.Fs, path string) ([]types.Record, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	d, err := zstd.NewReader(f)
	if err != nil {
		return nil, xerrors.Errorf("failed to create zstd reader: %w", err)
	}
	defer d.Close()

	var records []types.Record
	if err = json.NewDecoder(d).Decode(&records); err != nil {
		return nil, xerrors.Errorf("failed to decode bundle: %w", err)
	}
	return records, nil
}
