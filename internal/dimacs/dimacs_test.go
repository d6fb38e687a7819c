package dimacs

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hexel-sat/hexel/internal/sat"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDIMACS(t *testing.T) {
	path := writeFile(t, "simple.cnf", `c a tiny instance
p cnf 3 3
1 0
-1 2 0
-2 3 0
`)

	s := sat.NewDefaultSolver()
	require.NoError(t, LoadDIMACS(path, false, s))
	require.Equal(t, 3, s.NumVariables())
	require.Equal(t, sat.True, s.Solve(nil))
	if diff := cmp.Diff([]bool{true, true, true}, s.Model()); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDIMACSGzipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simple.cnf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte("p cnf 2 2\n1 2 0\n-1 0\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	s := sat.NewDefaultSolver()
	require.NoError(t, LoadDIMACS(path, true, s))
	require.Equal(t, sat.True, s.Solve(nil))
	require.False(t, s.Model()[0])
	require.True(t, s.Model()[1])
}

func TestLoadDIMACSWithXorLines(t *testing.T) {
	path := writeFile(t, "xor.cnf", `p cnf 3 1
1 0
x 1 2 3 0
x -2 3 0
`)

	s := sat.NewDefaultSolver()
	require.NoError(t, LoadDIMACS(path, false, s))
	require.Equal(t, sat.True, s.Solve(nil))

	// x1 = 1; x2 ⊕ x3 = 0 (flipped by the leading negation); 1 ⊕ x2 ⊕ x3 = 1.
	model := s.Model()
	require.True(t, model[0])
	require.Equal(t, model[1], model[2])
}

func TestLoadDIMACSRejectsNonCNF(t *testing.T) {
	path := writeFile(t, "bad.cnf", "p wcnf 2 1\n1 2 0\n")
	s := sat.NewDefaultSolver()
	require.Error(t, LoadDIMACS(path, false, s))
}

func TestLoadDIMACSMissingFile(t *testing.T) {
	s := sat.NewDefaultSolver()
	require.Error(t, LoadDIMACS(filepath.Join(t.TempDir(), "nope.cnf"), false, s))
}

func TestReadModels(t *testing.T) {
	path := writeFile(t, "simple.cnf.models", "1 -2 3 0\n-1 2 -3 0\n")
	models, err := ReadModels(path)
	require.NoError(t, err)
	want := [][]bool{{true, false, true}, {false, true, false}}
	if diff := cmp.Diff(want, models); diff != "" {
		t.Errorf("models mismatch (-want +got):\n%s", diff)
	}
}
