package run

import (
	"strings"

	"github.com/ardnew/chef/lang"
)

// Signature describes one public recipe for listings: its name, rendered
// parameter list, and doc comment.
type Signature struct {
	Name string
	// Params holds one rendered parameter per declaration, for example
	// `target` or `args='-v'` or `+files`.
	Params []string
	// Aliases are the alias names resolving to this recipe, sorted by
	// declaration order.
	Aliases []string
	Doc     string
}

// String renders the signature the way it appears in a recipe header.
func (s Signature) String() string {
	var sb strings.Builder

	sb.WriteString(s.Name)

	for _, p := range s.Params {
		sb.WriteByte(' ')
		sb.WriteString(p)
	}

	return sb.String()
}

// Signatures returns the signatures of every public recipe in
// declaration order. Private recipes and recipes disabled on this
// platform are omitted. It reads only the parsed file, so listing never
// evaluates assignments or spawns backtick commands.
func Signatures(file *lang.File) []Signature {
	aliases := make(map[string][]string)

	for _, a := range file.Aliases {
		aliases[a.Target] = append(aliases[a.Target], a.Name)
	}

	sigs := make([]Signature, 0, len(file.Recipes))

	for recipe := range file.All() {
		if recipe.Private() || !recipe.Attributes.EnabledOnHost() {
			continue
		}

		sigs = append(sigs, Signature{
			Name:    recipe.Name,
			Params:  renderParams(recipe.Parameters),
			Aliases: aliases[recipe.Name],
			Doc:     recipe.Doc,
		})
	}

	return sigs
}

// Signatures returns the signatures of the runner's public recipes.
func (r *Runner) Signatures() []Signature { return Signatures(r.file) }

func renderParams(params []lang.Parameter) []string {
	out := make([]string, len(params))

	for i, p := range params {
		var sb strings.Builder

		if p.Variadic {
			if p.Plus {
				sb.WriteByte('+')
			} else {
				sb.WriteByte('*')
			}
		}

		sb.WriteString(p.Name)

		if p.Default != nil {
			sb.WriteByte('=')
			sb.WriteString(p.Default.String())
		}

		out[i] = sb.String()
	}

	return out
}
