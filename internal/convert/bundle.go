package convert

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"window2d/internal/utils"
)

// BundleEntry is one file stored in a .pkg asset bundle.
type BundleEntry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// readPkgString reads a length-prefixed string of at most limit bytes.
func readPkgString(r io.Reader, limit int64) (string, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return "", err
	}
	if int64(size) > limit {
		return "", fmt.Errorf("string of %d bytes exceeds the %d left in the bundle", size, limit)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Every index entry holds at least a name length, an offset and a size.
const minBundleEntryBytes = 12

// ReadBundleIndex parses the header of a .pkg bundle of size bytes. Entry offsets
// are relative to dataStart. Counts and lengths larger than the bundle are rejected.
func ReadBundleIndex(r io.Reader, size int64) (version string, entries []BundleEntry, dataStart int64, err error) {
	version, err = readPkgString(r, size-4)
	if err != nil {
		return "", nil, 0, err
	}
	dataStart = 4 + int64(len(version))

	var fileCount uint32
	if err := binary.Read(r, binary.LittleEndian, &fileCount); err != nil {
		return "", nil, 0, err
	}
	dataStart += 4
	if int64(fileCount)*minBundleEntryBytes > size-dataStart {
		return "", nil, 0, fmt.Errorf("bundle claims %d files in %d bytes", fileCount, size)
	}

	entries = make([]BundleEntry, 0, fileCount)
	for i := uint32(0); i < fileCount; i++ {
		name, err := readPkgString(r, size-dataStart-4)
		if err != nil {
			return "", nil, 0, err
		}
		var offset, length uint32
		if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
			return "", nil, 0, err
		}
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return "", nil, 0, err
		}
		entries = append(entries, BundleEntry{Name: name, Offset: offset, Size: length})
		dataStart += 4 + int64(len(name)) + 8
	}
	for _, entry := range entries {
		if dataStart+int64(entry.Offset)+int64(entry.Size) > size {
			return "", nil, 0, fmt.Errorf("bundle entry %q lies past the end of the bundle", entry.Name)
		}
	}
	return version, entries, dataStart, nil
}

// ExtractBundle unpacks every entry of a .pkg bundle below outputDir.
func ExtractBundle(pkgPath, outputDir string) ([]string, error) {
	utils.Debug("Bundle: opening %s", pkgPath)
	f, err := os.Open(pkgPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	version, entries, dataStart, err := ReadBundleIndex(bufio.NewReader(f), info.Size())
	if err != nil {
		return nil, fmt.Errorf("read bundle index: %w", err)
	}
	utils.Debug("Bundle: version %s, %d files", version, len(entries))

	root, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for i, entry := range entries {
		destPath := filepath.Join(root, filepath.FromSlash(entry.Name))
		if destPath != root && !strings.HasPrefix(destPath, root+string(filepath.Separator)) {
			return names, fmt.Errorf("bundle entry %q escapes %s", entry.Name, outputDir)
		}
		if i%10 == 0 || i == len(entries)-1 {
			utils.Debug("Bundle: extracting file %d/%d: %s", i+1, len(entries), entry.Name)
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return names, err
		}

		section := io.NewSectionReader(f, dataStart+int64(entry.Offset), int64(entry.Size))
		out, err := os.Create(destPath)
		if err != nil {
			return names, err
		}
		_, err = io.Copy(out, section)
		out.Close()
		if err != nil {
			return names, err
		}
		names = append(names, entry.Name)
	}

	utils.Debug("Bundle: extraction completed")
	return names, nil
}

// LoadImages decodes paths in parallel. The result keeps the order of paths;
// entries that failed to load are nil and logged.
func LoadImages(paths []string) []image.Image {
	images := make([]image.Image, len(paths))
	var loaded int32
	var wg sync.WaitGroup

	// Limit concurrency to avoid RAM spikes
	const maxConcurrency = 10
	sem := make(chan struct{}, maxConcurrency)

	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-sem }()
			img, err := LoadImage(p)
			if err != nil {
				utils.Error("Failed to load %s: %v", p, err)
				return
			}
			images[i] = img
			atomic.AddInt32(&loaded, 1)
		}(i, path)
	}

	wg.Wait()
	utils.Info("Loaded %d/%d images.", loaded, len(paths))
	return images
}
