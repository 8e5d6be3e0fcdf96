package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors returned by FileValidator
var (
	ErrFileNotFound         = errors.New("file does not exist")
	ErrNotRegularFile       = errors.New("not a regular file")
	ErrEmptyFile            = errors.New("file is empty")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrTemporaryFile        = errors.New("temporary office file")
	ErrNotWritable          = errors.New("directory is not writable")
)

// InputExtensions are the table formats the pipeline can read
var InputExtensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

// FileValidator checks pipeline inputs and outputs before any work starts
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateFile checks that path is an existing, readable, non-empty regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		v.logger.Error("Path is not a regular file", slog.String("path", path))
		return fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}
	if info.Size() == 0 {
		v.logger.Error("File is empty", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateInputFile checks an indicator or metadata table
func (v *FileValidator) ValidateInputFile(path string) error {
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Refusing temporary office file", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrTemporaryFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		v.logger.Error("Unsupported input file",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("%w: %s (extension %q)", ErrUnsupportedExtension, path, ext)
	}

	return v.ValidateFile(path)
}

// ValidateInputs checks every path and reports all failures together
func (v *FileValidator) ValidateInputs(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if err := v.ValidateInputFile(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Probe with a real file; permission bits alone miss read-only mounts
	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

func supported(ext string) bool {
	for _, e := range InputExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
