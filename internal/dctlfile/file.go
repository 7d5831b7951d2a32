package dctlfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Extension      = ".dctl"
	DefaultMaxSize = 5 * 1024 * 1024
)

// ErrInvalidFile is wrapped by every file-level rejection
var ErrInvalidFile = errors.New("invalid file")

// Limits controls file-level acceptance
type Limits struct {
	Extension string
	MaxSize   int64
}

// DefaultLimits accepts .dctl files up to 5 MiB
func DefaultLimits() Limits {
	return Limits{Extension: Extension, MaxSize: DefaultMaxSize}
}

// ValidateFile checks the name and size of a file before it is read
func (l Limits) ValidateFile(name string, size int64) error {
	ext := l.Extension
	if ext == "" {
		ext = Extension
	}
	if !strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return fmt.Errorf("%w: file must have %s extension", ErrInvalidFile, ext)
	}
	if l.MaxSize > 0 && size > l.MaxSize {
		return fmt.Errorf("%w: file size must be less than %dMB", ErrInvalidFile, l.MaxSize/1024/1024)
	}
	if size == 0 {
		return fmt.Errorf("%w: file cannot be empty", ErrInvalidFile)
	}
	return nil
}

// ValidateFile applies the default limits
func ValidateFile(name string, size int64) error {
	return DefaultLimits().ValidateFile(name, size)
}

// File is a script loaded from disk. A file that fails validation is still
// returned so callers can list it with its error.
type File struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Path            string     `json:"path"`
	Size            int64      `json:"size"`
	Content         string     `json:"content"`
	LoadedAt        time.Time  `json:"loadedAt"`
	IsValid         bool       `json:"isValid"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	ParametersCount int        `json:"parametersCount"`
	Sections        Content    `json:"sections"`
	Validation      Validation `json:"validation"`
}

// Load reads and validates the file at path. The error return is reserved for
// I/O failures; validation problems are recorded on the File.
func (l Limits) Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f := &File{
		ID:       "dctl_" + uuid.NewString(),
		Name:     filepath.Base(path),
		Path:     path,
		Size:     info.Size(),
		LoadedAt: time.Now(),
	}

	if err := l.ValidateFile(f.Name, f.Size); err != nil {
		f.ErrorMessage = strings.TrimPrefix(err.Error(), ErrInvalidFile.Error()+": ")
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f.Content = string(data)
	f.Validation = ValidateContent(f.Content)
	f.Sections = SplitContent(f.Content)
	f.IsValid = f.Validation.IsValid
	f.ParametersCount = CountParameters(f.Content)
	if !f.IsValid {
		f.ErrorMessage = strings.Join(f.Validation.SyntaxErrors, "; ")
	}
	return f, nil
}

// Load reads path with the default limits
func Load(path string) (*File, error) {
	return DefaultLimits().Load(path)
}
