package scan

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUndecodable is returned when a non-empty input has no line that
// decodes as text.
var ErrUndecodable = errors.New("transcript is not decodable as text")

const DefaultMaxLineSize = 1 << 20 // 1MB

type Line struct {
	Number int // 1-based physical line
	Text   string
}

type Options struct {
	// MaxLineSize caps a single line; longer lines are skipped. Zero means DefaultMaxLineSize.
	MaxLineSize int
}

type Result struct {
	Lines     []Line
	Read      int // physical lines seen, including skipped ones
	Oversized int
	Invalid   int // not UTF-8 or containing NUL
}

// ReadLines reads every line of r. A UTF-8 or UTF-16 byte-order mark is
// honoured and stripped. Bad lines are counted and skipped; only I/O
// failures, cancellation and wholly undecodable input are errors.
func ReadLines(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	maxLine := opts.MaxLineSize
	if maxLine <= 0 {
		maxLine = DefaultMaxLineSize
	}
	limit := maxLine + 2 // line terminator is not part of the line

	tr := transform.NewReader(&ctxReader{ctx: ctx, r: r}, unicode.BOMOverride(transform.Nop))
	br := bufio.NewReaderSize(tr, 64*1024)

	res := &Result{}
	var buf []byte
	over := false

	for {
		chunk, err := br.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			if !over {
				if len(buf)+len(chunk) > limit {
					over = true
					buf = buf[:0]
				} else {
					buf = append(buf, chunk...)
				}
			}
			continue
		}
		if err != nil && err != io.EOF {
			return nil, err
		}

		if len(chunk) > 0 || len(buf) > 0 || over {
			res.Read++
			if !over && len(buf)+len(chunk) > limit {
				over = true
			}
			if over {
				res.Oversized++
			} else {
				buf = append(buf, chunk...)
				res.add(res.Read, buf)
			}
			buf = buf[:0]
			over = false
		}

		if err == io.EOF {
			break
		}
	}

	if len(res.Lines) == 0 && res.Invalid > 0 {
		return nil, ErrUndecodable
	}
	return res, nil
}

func (r *Result) add(number int, raw []byte) {
	raw = bytes.TrimRight(raw, "\r\n")
	if !utf8.Valid(raw) || bytes.IndexByte(raw, 0) >= 0 {
		r.Invalid++
		return
	}
	r.Lines = append(r.Lines, Line{Number: number, Text: string(raw)})
}

// ReadFile opens path and reads it with ReadLines.
func ReadFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := ReadLines(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return res, nil
}

// ctxReader fails reads once ctx is done so a slow or huge input honours
// the load timeout.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// FindTranscripts returns path itself when it is a file, or every .txt file
// under it when it is a directory.
func FindTranscripts(path string) ([]FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []FileInfo{{Path: path, Mtime: info.ModTime().Unix(), Size: info.Size()}}, nil
	}

	var files []FileInfo
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if p != path && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".txt") {
			return nil
		}
		files = append(files, FileInfo{
			Path:  p,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	return files, err
}
