package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type ScanMode string

const (
	ScanModeFull  ScanMode = "FULL"
	ScanModeBasic ScanMode = "BASE"
)

type ResponseFormat string

const (
	ResponseBase64   ResponseFormat = "BASE64"
	ResponseFilePath ResponseFormat = "FILE_PATH"
)

// ScanOptions configures one scan request.
type ScanOptions struct {
	MaxPages int
	Mode     ScanMode
	Response ResponseFormat
}

// DefaultScanOptions asks for a single fully cleaned page as base64.
var DefaultScanOptions = ScanOptions{
	MaxPages: 1,
	Mode:     ScanModeFull,
	Response: ResponseBase64,
}

// ScanResult holds the scanned pages, base64 JPEG or file paths depending
// on ScanOptions.Response.
type ScanResult struct {
	Images []string
}

// Scanner is a native document scanner.
type Scanner interface {
	Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error)
}

// InboxScanner scans the newest images dropped into a directory, typically
// the output folder of a desktop scanner. Scanned files are moved to a
// processed/ subdirectory so they are returned once. Files that do not
// decode are moved to rejected/ and the next newest file is tried.
type InboxScanner struct {
	Dir     string
	MaxSize int64
}

func NewInboxScanner(dir string, maxSize int64) *InboxScanner {
	return &InboxScanner{Dir: dir, MaxSize: maxSize}
}

var errUndecodable = errors.New("undecodable inbox file")

type inboxFile struct {
	path    string
	modTime time.Time
}

func (s *InboxScanner) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	files, err := s.newest()
	if err != nil {
		return nil, err
	}

	result := &ScanResult{}
	for _, f := range files {
		if opts.MaxPages > 0 && len(result.Images) >= opts.MaxPages {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := s.scanFile(f.path, opts)
		if errors.Is(err, errUndecodable) {
			log.Printf("Rejecting inbox file %s: %v", filepath.Base(f.path), err)
			if err := s.moveTo(f.path, "rejected", filepath.Base(f.path)); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Images = append(result.Images, page)
	}
	return result, nil
}

// newest lists the supported images in the inbox, newest first.
func (s *InboxScanner) newest() ([]inboxFile, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read scanner inbox: %v", err)
	}

	var files []inboxFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := CheckSupportedFile(e.Name()); !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, inboxFile{path: filepath.Join(s.Dir, e.Name()), modTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})
	return files, nil
}

func (s *InboxScanner) scanFile(path string, opts ScanOptions) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	data, err := readLimited(f, s.maxSize())
	f.Close()
	if err != nil {
		return "", err
	}

	img, err := decodeImage(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errUndecodable, err)
	}
	if opts.Mode == ScanModeFull {
		img = cleanDocument(img)
	}
	out, err := encodeJPEG(img)
	if err != nil {
		return "", err
	}

	done, err := s.subdir("processed")
	if err != nil {
		return "", err
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	dest := filepath.Join(done, base[:len(base)-len(ext)]+".jpg")
	if err := os.WriteFile(dest, out, 0644); err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		log.Printf("Error removing scanned file %s: %v", path, err)
	}

	if opts.Response == ResponseFilePath {
		return dest, nil
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *InboxScanner) subdir(name string) (string, error) {
	dir := filepath.Join(s.Dir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating %s folder: %v", name, err)
	}
	return dir, nil
}

// moveTo moves path into the named inbox subdirectory.
func (s *InboxScanner) moveTo(path, sub, name string) error {
	dir, err := s.subdir(sub)
	if err != nil {
		return err
	}
	if err := os.Rename(path, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("move %s to %s: %v", name, sub, err)
	}
	return nil
}

func (s *InboxScanner) maxSize() int64 {
	if s.MaxSize > 0 {
		return s.MaxSize
	}
	return 10 << 20
}
