package prompt

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genDiffReport builds report-shaped text from random paths and lines.
func genDiffReport() gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),
		gen.SliceOf(gen.AlphaString()),
	).Map(func(values []interface{}) string {
		path := values[0].(string) + ".go"
		lines := values[1].([]string)

		var sb strings.Builder
		sb.WriteString("MODIFIED: " + path + "\n")
		for i, l := range lines {
			if i%2 == 0 {
				sb.WriteString("+ " + l + "\n")
			} else {
				sb.WriteString("- " + l + "\n")
			}
		}
		return sb.String()
	})
}

func TestProperty_PromptAssembly(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	b, err := NewBuilder()
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	properties.Property("without focus no emphasis marker appears", prop.ForAll(
		func(diff string) bool {
			out := b.Build(diff, "")
			return strings.Contains(out, diff) &&
				!strings.Contains(out, CriticalMarker) &&
				!strings.Contains(out, ReminderMarker)
		},
		genDiffReport(),
	))

	properties.Property("focus text appears verbatim in preamble and reminder", prop.ForAll(
		func(diff, focus string) bool {
			out := b.Build(diff, focus)
			return strings.Count(out, focus) >= 2 &&
				strings.Contains(out, CriticalMarker+"\n"+focus+"\n") &&
				strings.Contains(out, ReminderMarker+"\n"+focus+"\n")
		},
		genDiffReport(),
		gen.Identifier(),
	))

	properties.Property("the diff is never altered", prop.ForAll(
		func(diff, focus string) bool {
			return strings.Contains(b.Build(diff, focus), diff)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
