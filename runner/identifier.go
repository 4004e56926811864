package runner

import (
	"strconv"
	"strings"

	permrun "github.com/goliatone/go-permrun"
)

// identifier is a parsed "suite#case#perm" test identifier. Both the case
// and the permutation segments are optional.
type identifier struct {
	Suite          string
	Case           string
	Permutation    int
	PermutationSet bool
}

// parseIdentifier splits a test identifier, trimming an optional leading
// path and ".toml" suffix from the suite segment so source paths from the
// generator can be pasted directly.
func parseIdentifier(arg string) (identifier, error) {
	var id identifier

	suite, rest, hasCase := strings.Cut(arg, "#")
	if hasCase {
		kase, perm, hasPerm := strings.Cut(rest, "#")
		if hasPerm {
			parsed, err := strconv.Atoi(perm)
			if err != nil {
				return identifier{}, &permrun.ConfigurationError{
					Name:   arg,
					Reason: "could not parse test identifier",
					Err:    err,
				}
			}
			id.Permutation = parsed
			id.PermutationSet = true
		}
		id.Case = kase
	}

	if slash := strings.LastIndexByte(suite, '/'); slash >= 0 {
		suite = suite[slash+1:]
	}
	suite = strings.TrimSuffix(suite, ".toml")
	id.Suite = suite
	return id, nil
}
