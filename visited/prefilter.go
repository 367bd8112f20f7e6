package visited

import (
	"errors"
	"fmt"
	"os"
	"sync"

	bloom "github.com/bits-and-blooms/bloom/v3"
	"github.com/edsrzf/mmap-go"
)

// DiskPrefilter is an optional, disk-backed bloom filter that
// accelerates Set.Contains for very large crawls (max_visited in the
// hundreds of thousands) by answering "definitely not visited" without
// taking Set's mutex or growing an in-process map. It never answers
// "definitely visited" on its own — Set always confirms a positive
// prefilter hit against the authoritative exact map, so the bloom
// filter's false-positive rate cannot violate the visited-set
// invariants, it can only cost a redundant lookup.
type DiskPrefilter struct {
	mu        sync.Mutex
	filter    *bloom.BloomFilter
	file      *os.File
	mmap      mmap.MMap
	tmpPath   string
	count     uint64
	syncEvery uint64
}

// NewDiskPrefilter creates a prefilter sized for expectedURLs entries
// at the given false-positive rate, backed by a memory-mapped temp
// file so its footprint stays constant regardless of crawl size.
func NewDiskPrefilter(expectedURLs uint, falsePositiveRate float64) (*DiskPrefilter, error) {
	filter := bloom.NewWithEstimates(expectedURLs, falsePositiveRate)

	tmpFile, err := os.CreateTemp(os.TempDir(), "sitecrawl-visited-*.bloom")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	filterSize := filter.Cap()
	if err := tmpFile.Truncate(int64(filterSize)); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("truncate temp file: %w", err)
	}

	mapped, err := mmap.MapRegion(tmpFile, int(filterSize), mmap.RDWR, 0, 0)
	if err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("mmap temp file: %w", err)
	}

	data, err := filter.MarshalBinary()
	if err != nil {
		_ = mapped.Unmap()
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("marshal bloom filter: %w", err)
	}
	if len(data) > len(mapped) {
		_ = mapped.Unmap()
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("filter data (%d) exceeds mmap size (%d)", len(data), len(mapped))
	}
	copy(mapped, data)

	return &DiskPrefilter{
		filter:    filter,
		file:      tmpFile,
		mmap:      mapped,
		tmpPath:   tmpPath,
		syncEvery: 1000,
	}, nil
}

// MaybeContains reports whether url might already be visited. A false
// result is authoritative (definitely not visited); a true result must
// be confirmed against the exact set.
func (d *DiskPrefilter) MaybeContains(url string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter.TestString(url)
}

// Add records url in the prefilter, periodically flushing to disk.
func (d *DiskPrefilter) Add(url string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter.AddString(url)
	d.count++
	if d.count >= d.syncEvery {
		_ = d.syncLocked()
	}
}

func (d *DiskPrefilter) syncLocked() error {
	data, err := d.filter.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal bloom filter: %w", err)
	}
	if len(data) <= len(d.mmap) {
		copy(d.mmap, data)
	}
	if err := d.mmap.Flush(); err != nil {
		return fmt.Errorf("flush mmap: %w", err)
	}
	d.count = 0
	return nil
}

// Close flushes any pending data and releases the backing file.
func (d *DiskPrefilter) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	if d.mmap != nil {
		if d.count > 0 {
			if err := d.syncLocked(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := d.mmap.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap: %w", err))
		}
		d.mmap = nil
	}
	if d.file != nil {
		if err := d.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close file: %w", err))
		}
		d.file = nil
	}
	if d.tmpPath != "" {
		if err := os.Remove(d.tmpPath); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove temp file: %w", err))
		}
		d.tmpPath = ""
	}
	if len(errs) > 0 {
		return fmt.Errorf("close disk prefilter: %w", errors.Join(errs...))
	}
	return nil
}
