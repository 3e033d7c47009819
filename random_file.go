package go_akrypt

import (
	"errors"
	"io"
	"os"

	"github.com/samber/oops"
)

// FileRandom reads its output from a file, typically /dev/urandom or a captured entropy
// dump. At end of file it rewinds and keeps reading, so a short file repeats.
type FileRandom struct {
	generatorState
	path string
	file *os.File
}

// NewFileRandom opens path as a random source.
func NewFileRandom(path string) (*FileRandom, error) {
	if path == "" {
		return nil, oops.In("random").Code("file_path").Wrapf(ErrNullArgument, "empty random file path")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, oops.In("random").Code("file_open").With("path", path).Wrapf(err, "open random source")
	}
	Debug("Opened random source file '%s'", path)
	return &FileRandom{
		generatorState: generatorState{name: GENERATOR_FILE},
		path:           path,
		file:           file,
	}, nil
}

// Path returns the file the generator reads from.
func (g *FileRandom) Path() string {
	return g.path
}

// Random fills p from the file, rewinding at end of file. An empty file fails with
// ErrWrongLength instead of looping forever.
func (g *FileRandom) Random(p []byte) error {
	if err := g.checkBuffer("random", p); err != nil {
		return err
	}
	filled := 0
	rewound := false
	for filled < len(p) {
		n, err := g.file.Read(p[filled:])
		filled += n
		if n > 0 {
			rewound = false
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if rewound {
				return NewGeneratorError(g.name, "random",
					oops.In("random").Code("file_empty").With("path", g.path).Wrapf(ErrWrongLength, "random source is empty"))
			}
			if _, serr := g.file.Seek(0, io.SeekStart); serr != nil {
				return NewGeneratorError(g.name, "random",
					oops.In("random").Code("file_seek").With("path", g.path).Wrapf(serr, "rewind random source"))
			}
			rewound = true
		default:
			return NewGeneratorError(g.name, "random",
				oops.In("random").Code("file_read").With("path", g.path).Wrapf(err, "read random source"))
		}
	}
	return nil
}

// Free closes the file.
func (g *FileRandom) Free() error {
	if err := g.release(); err != nil {
		return err
	}
	if err := g.file.Close(); err != nil {
		return oops.In("random").Code("file_close").With("path", g.path).Wrapf(err, "close random source")
	}
	return nil
}
