package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// HasExtension reports whether name ends with one of exts. Extensions carry
// their leading dot. The comparison is case-sensitive unless foldCase is set.
func HasExtension(name string, exts []string, foldCase bool) bool {
	return lo.SomeBy(exts, func(ext string) bool {
		if foldCase {
			return len(name) >= len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext)
		}
		return strings.HasSuffix(name, ext)
	})
}

// ListFiles lists the regular files directly inside dir whose names end with
// one of exts, sorted by name. Subdirectories are not descended into.
func ListFiles(dir string, exts []string, foldCase bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), e.Type().IsRegular() && HasExtension(e.Name(), exts, foldCase)
	})
	sort.Strings(names)
	return names, nil
}

// GenerateOutputFilename derives the output file name for an input name:
// prefix + name, with the extension replaced by format when it differs
// (case-insensitively) from the input extension.
func GenerateOutputFilename(inputName, prefix, format string) string {
	base := filepath.Base(inputName)
	if format == "" || strings.EqualFold(GetFileExtension(base), format) {
		return prefix + base
	}
	nameWithoutExt := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s%s.%s", prefix, nameWithoutExt, format)
}

// WriteFileAtomic writes the output of write to a temporary file next to
// path and renames it into place, so path never holds a partial file.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".quickcrop-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// SanitizeFilename removes or replaces invalid characters in filenames
func SanitizeFilename(filename string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := filename

	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}

	return strings.Trim(result, " .")
}

// BytesSHA256 returns the hex SHA-256 digest of data
func BytesSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
