package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/chef/lang"
)

// Dump prints the fully parsed and import-merged recipe file as a
// structured document, for inspection or machine consumption.
type Dump struct {
	Format string `default:"yaml" enum:"yaml,json" help:"Output format"`
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) error {
	file, err := load(ctx)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(file)
	if err != nil {
		return lang.ErrLoad.Wrap(err)
	}

	if d.Format == "json" {
		out, err = yaml.YAMLToJSON(out)
		if err != nil {
			return lang.ErrLoad.Wrap(err)
		}

		out = append(out, '\n')
	}

	_, err = fmt.Fprint(os.Stdout, string(out))

	return err
}
