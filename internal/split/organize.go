package split

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MetadataFileName is the per-subset caption index the training backend reads.
const MetadataFileName = "metadata.jsonl"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// IsImage reports whether name has an extension the backend trains on.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// OrganizeOptions tunes Organize.
type OrganizeOptions struct {
	// ClassLabel is the caption written to metadata.jsonl.
	// Defaults to the base name of the source directory.
	ClassLabel string
	DryRun     bool
	// Overwrite replaces targets even when they look up to date.
	Overwrite bool
}

// OrganizeResult summarizes one Organize call.
type OrganizeResult struct {
	Assignments []Assignment
	Counts      Counts
	Copied      int
	Skipped     int
	// Pruned counts copies removed from subsets a file no longer belongs to.
	Pruned int
}

type metadataEntry struct {
	FileName string `json:"file_name"`
	Text     string `json:"text"`
}

// ListImages returns the image file names directly inside dir, sorted.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Organize copies every image in srcDir into dstDir/<subset>/ according to
// seed, then writes a metadata.jsonl into each subset directory.
//
// Re-running with the same seed is idempotent: targets whose size and
// modification time match the source are left alone unless opts.Overwrite
// is set. A copy of a file found under any other subset, left by an earlier
// run with a different seed, is removed.
func Organize(ctx context.Context, srcDir, dstDir string, seed Seed, opts OrganizeOptions) (*OrganizeResult, error) {
	files, err := ListImages(srcDir)
	if err != nil {
		return nil, err
	}

	label := opts.ClassLabel
	if label == "" {
		label = filepath.Base(filepath.Clean(srcDir))
	}

	plan := Plan(files, seed)
	result := &OrganizeResult{Assignments: plan, Counts: Tally(plan)}
	if opts.DryRun {
		return result, nil
	}

	for _, l := range Labels {
		if err := os.MkdirAll(filepath.Join(dstDir, string(l)), 0755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", l, err)
		}
	}

	metadata := make(map[Label][]metadataEntry, len(Labels))
	for _, a := range plan {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pruned, err := pruneOtherSubsets(dstDir, a)
		if err != nil {
			return result, err
		}
		result.Pruned += pruned

		src := filepath.Join(srcDir, a.File)
		dst := filepath.Join(dstDir, string(a.Label), a.File)
		copied, err := copyFile(src, dst, opts.Overwrite)
		if err != nil {
			return result, err
		}
		if copied {
			result.Copied++
		} else {
			result.Skipped++
		}
		metadata[a.Label] = append(metadata[a.Label], metadataEntry{FileName: a.File, Text: label})
	}

	for _, l := range Labels {
		if err := writeMetadata(filepath.Join(dstDir, string(l), MetadataFileName), metadata[l]); err != nil {
			return result, err
		}
	}

	return result, nil
}

func pruneOtherSubsets(dstDir string, a Assignment) (int, error) {
	n := 0
	for _, l := range Labels {
		if l == a.Label {
			continue
		}
		err := os.Remove(filepath.Join(dstDir, string(l), a.File))
		switch {
		case err == nil:
			n++
		case !errors.Is(err, os.ErrNotExist):
			return n, fmt.Errorf("remove stale %s copy of %s: %w", l, a.File, err)
		}
	}
	return n, nil
}

// copyFile copies src to dst and stamps dst with the source's modification
// time. It returns false when dst already matches src in size and
// modification time and overwrite is off.
func copyFile(src, dst string, overwrite bool) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("stat source: %w", err)
	}
	if !overwrite {
		if dstInfo, err := os.Stat(dst); err == nil &&
			dstInfo.Size() == srcInfo.Size() && dstInfo.ModTime().Equal(srcInfo.ModTime()) {
			return false, nil
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return false, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return false, fmt.Errorf("create target: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return false, fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	if err := out.Close(); err != nil {
		return false, fmt.Errorf("close target: %w", err)
	}
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return false, fmt.Errorf("stamp target: %w", err)
	}
	return true, nil
}

func writeMetadata(path string, entries []metadataEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metadata: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
	}
	return nil
}
