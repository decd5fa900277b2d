package httpx

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"
)

// DefaultContentType is returned for extensions missing from the table.
const DefaultContentType = "application/octet-stream"

// MimeTable maps file extensions (without the leading dot) to content types.
// It is built once and only read afterwards, so it is shared by all
// connections without locking.
type MimeTable struct {
	types map[string]string
}

// ParseMimeTypes reads a mime.types style definitions file. Each line is
// "<content-type> <ext> <ext>...", blank lines and lines starting with '#'
// are skipped, and later lines win for duplicate extensions.
func ParseMimeTypes(r io.Reader) (*MimeTable, error) {
	t := &MimeTable{types: make(map[string]string)}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		for _, ext := range fields[1:] {
			t.types[ext] = fields[0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadMimeTypes builds the table from path. It never fails: an empty path or
// a missing file gives an empty table, and a file that exists but cannot be
// read is reported on logger.
func LoadMimeTypes(path string, logger *log.Logger) *MimeTable {
	empty := &MimeTable{types: map[string]string{}}
	if path == "" {
		return empty
	}
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) && logger != nil {
			logger.Printf("mime types %q could not be read: %v", path, err)
		}
		return empty
	}
	defer f.Close()

	t, err := ParseMimeTypes(f)
	if err != nil {
		if logger != nil {
			logger.Printf("mime types %q could not be read: %v", path, err)
		}
		return empty
	}
	return t
}

// Lookup returns the content type for ext, or DefaultContentType.
func (t *MimeTable) Lookup(ext string) string {
	if t != nil {
		if ct, ok := t.types[ext]; ok {
			return ct
		}
	}
	return DefaultContentType
}

func (t *MimeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.types)
}
