package catalog

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/vocabulary"
)

// File is the on-disk rule catalog format.
type File struct {
	Rules []Rule `yaml:"rules"`
}

// LoadFile reads a YAML rule file and validates it against vocab. An
// empty path loads the builtin rule set.
func LoadFile(path string, vocab *vocabulary.Table) (*Catalog, error) {
	if path == "" {
		return Load(Builtin(), vocab)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "Catalog", "LoadFile", "read rule file")
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapFatal(err, "Catalog", "LoadFile", "parse rule file")
	}
	if len(f.Rules) == 0 {
		return nil, errors.WrapFatal(
			errors.New("rule file defines no rules"),
			"Catalog", "LoadFile", "parse rule file")
	}
	return Load(f.Rules, vocab)
}
