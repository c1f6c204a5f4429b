package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/ardnew/chef/lang"
)

// starterRecipe is the content written by the init command.
const starterRecipe = `# List available recipes.
default:
  @chef list

# Say hello.
hello name='world':
  echo "hello, {{ name }}"
`

// Init creates a starter recipe file in the working directory.
type Init struct {
	Force bool `help:"Overwrite an existing recipe file" short:"F"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	path := recipePathFrom(ctx)
	if path == "" {
		path = recipeNames[0]
	}

	if !i.Force {
		_, err := os.Stat(path)

		switch {
		case err == nil:
			return lang.ErrLoad.Wrap(
				lang.NewError("recipe file already exists"),
			).With(slog.String("path", path))

		case !errors.Is(err, fs.ErrNotExist):
			return lang.ErrLoad.Wrap(err)
		}
	}

	if err := os.WriteFile(path, []byte(starterRecipe), 0o644); err != nil {
		return lang.ErrLoad.Wrap(err)
	}

	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)

	return nil
}
