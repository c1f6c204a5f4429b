package run

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// dotenvName is the file loaded when the dotenv-load setting is on.
const dotenvName = ".env"

// loadDotenv reads the nearest .env file at or above dir and returns
// its variables. A missing file is not an error; the search gives up at
// the filesystem root.
func loadDotenv(dir string) (map[string]string, error) {
	for {
		path := filepath.Join(dir, dotenvName)

		switch _, err := os.Stat(path); {
		case err == nil:
			vars, err := godotenv.Read(path)
			if err != nil {
				return nil, ErrRuntime.Wrap(err).With(slog.String("path", path))
			}

			return vars, nil

		case !errors.Is(err, fs.ErrNotExist):
			return nil, ErrRuntime.Wrap(err).With(slog.String("path", path))
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}

		dir = parent
	}
}
