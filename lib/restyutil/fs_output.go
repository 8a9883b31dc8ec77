package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput writes named blobs (usually raw response bodies kept
// around for offline inspection) into a single directory.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) FilesystemOutput {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		panic(err)
	}
	return FilesystemOutput{directory: dir}
}

func (o FilesystemOutput) Write(name string, contents []byte) {
	err := os.WriteFile(filepath.Join(o.directory, name), contents, 0600)
	if err != nil {
		slog.Warn("failed to write debug file", "name", name, "err", err)
	}
}
