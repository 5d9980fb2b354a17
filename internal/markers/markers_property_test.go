//go:build property

package markers

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genBlock() gopter.Gen {
	return gen.AlphaString().Map(func(s string) string { return "# Rules\n- " + s + "\n" })
}

func genUserText() gopter.Gen {
	return gen.AlphaString().Map(func(s string) string {
		if s == "" {
			return ""
		}
		return "# Notes\n" + s + "\n"
	})
}

// TestMergeProperties validates idempotence and round-trip behavior of Merge
func TestMergeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("merging the same block twice is stable", prop.ForAll(
		func(user, block string) bool {
			once := Merge(user, block)
			return Merge(once, block) == once
		},
		genUserText(),
		genBlock(),
	))

	properties.Property("the last merged block wins and user text survives", prop.ForAll(
		func(user, a, b, c string) bool {
			content := Merge(Merge(Merge(user, a), b), c)
			return strings.HasPrefix(content, user) &&
				strings.Count(content, Begin) == 1 &&
				strings.HasSuffix(content, Wrap(c))
		},
		genUserText(),
		genBlock(),
		genBlock(),
		genBlock(),
	))

	properties.Property("removing a merged block restores user text", prop.ForAll(
		func(user, block string) bool {
			return Remove(Merge(user, block)) == strings.TrimSpace(user)
		},
		genUserText(),
		genBlock(),
	))

	properties.TestingRun(t)
}
