package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/chef/run"
)

var (
	listNameStyle  = lipgloss.NewStyle().Bold(true)
	listParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	listDocStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// List prints the public recipes of the nearest recipe file, with their
// parameters, aliases, and doc comments.
type List struct{}

// Run executes the list command.
func (l *List) Run(ctx context.Context) error {
	file, err := load(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Available recipes:")

	for _, sig := range run.Signatures(file) {
		var sb strings.Builder

		sb.WriteString("    ")
		sb.WriteString(listNameStyle.Render(sig.Name))

		for _, p := range sig.Params {
			sb.WriteByte(' ')
			sb.WriteString(listParamStyle.Render(p))
		}

		if len(sig.Aliases) > 0 {
			sb.WriteString(listDocStyle.Render(
				" [alias: " + strings.Join(sig.Aliases, ", ") + "]",
			))
		}

		if sig.Doc != "" {
			sb.WriteString(listDocStyle.Render(" # " + sig.Doc))
		}

		fmt.Fprintln(os.Stdout, sb.String())
	}

	return nil
}
