package dimacs

import (
	"github.com/pkg/errors"
	"github.com/rhartert/dimacs"
)

// ReadModels returns the list of models (if any) contained in the given
// file. Model files hold one model per line using the instance's literals.
func ReadModels(filename string) ([][]bool, error) {
	reader, err := reader(filename, false)
	if err != nil {
		return nil, errors.Wrapf(err, "reading file %q", filename)
	}
	defer reader.Close()

	b := &modelBuilder{}
	if err := dimacs.ReadBuilder(reader, b); err != nil {
		return nil, err
	}
	return b.models, nil
}

// modelBuilder implements dimacs.Builder over a models file.
type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return errors.New("model files should not have problem lines")
}

func (b *modelBuilder) Comment(_ string) error {
	return nil // ignore comments
}

func (b *modelBuilder) Clause(tmpClause []int) error {
	model := make([]bool, len(tmpClause))
	for i, l := range tmpClause {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}
