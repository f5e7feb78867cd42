package testutil

import (
	"io"
	"os"
)

// MustPipe calls os.Pipe and panics if an error is returned.
func MustPipe() (*os.File, *os.File) {
	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	return r, w
}

// MustReadAllAndClose reads r until EOF and closes it, panicking on errors.
func MustReadAllAndClose(r io.ReadCloser) []byte {
	bs, err := io.ReadAll(r)
	if err != nil {
		panic(err)
	}
	r.Close()
	return bs
}

// MustWriteFile calls os.WriteFile and panics if an error occurs.
func MustWriteFile(filename, data string) {
	err := os.WriteFile(filename, []byte(data), 0600)
	if err != nil {
		panic(err)
	}
}

// TempDirCleanuper is the subset of testing.TB needed by InTempDir.
type TempDirCleanuper interface {
	Cleanuper
	TempDir() string
}

// InTempDir changes into a fresh temporary directory, and changes back to the
// original working directory in a cleanup function. It returns the temporary
// directory.
func InTempDir(c TempDirCleanuper) string {
	old, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	dir := c.TempDir()
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
	c.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			panic(err)
		}
	})
	return dir
}
