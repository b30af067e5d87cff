package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/solution"
)

type source struct{}

func (source) Variable(name string) (expr.Func, error) {
	if name == "profile" {
		return func(_ float64, y []float64, _ expr.Inputs) ([]float64, error) { return y, nil }, nil
	}
	return func(_ float64, y []float64, _ expr.Inputs) ([]float64, error) { return []float64{y[0] * 2}, nil }, nil
}

func (source) VariableNames() []string { return []string{"double", "profile"} }

func testSolution() *solution.Solution {
	y := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	return solution.New([]float64{0, 1, 2}, y, source{}, nil)
}

func testSeries() []Series {
	return []Series{
		{Name: "Terminal voltage [V]", T: []float64{0, 1, 2}, Values: []float64{3.9, 3.8, 3.7}},
		{Name: "Current [A]", T: []float64{0, 1, 2}, Values: []float64{1, 1, 1}},
	}
}

func TestFromSolution(t *testing.T) {
	series, err := FromSolution(testSolution(), []string{"double"})
	if err != nil {
		t.Fatal(err)
	}
	if got := series[0].Values; len(got) != 3 || got[2] != 6 {
		t.Errorf("unexpected values %v", got)
	}

	if _, err := FromSolution(testSolution(), []string{"profile"}); !errors.Is(err, ErrNotScalar) {
		t.Errorf("expected ErrNotScalar, got %v", err)
	}
}

func TestFromColumns(t *testing.T) {
	cols := map[string][]float64{"b": {2}, "a": {1}}
	series, err := FromColumns(cols, []float64{0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 2 || series[0].Name != "a" {
		t.Errorf("expected sorted series, got %+v", series)
	}
	if _, err := FromColumns(cols, []float64{0}, []string{"c"}); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := PNG(&buf, "discharge", testSeries(), DefaultWidth, DefaultHeight); err != nil {
		t.Fatalf("png failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}

	if err := PNG(&buf, "empty", nil, DefaultWidth, DefaultHeight); !errors.Is(err, ErrNoSeries) {
		t.Errorf("expected ErrNoSeries, got %v", err)
	}
	bad := []Series{{Name: "x", T: []float64{0, 1}, Values: []float64{1}}}
	if err := PNG(&buf, "bad", bad, DefaultWidth, DefaultHeight); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, "discharge", testSeries()); err != nil {
		t.Fatalf("html failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<html", "Terminal voltage [V]", "Current [A]"} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	doc := Document{Title: "discharge", Solver: "dae", Series: testSeries()}
	if err := SaveJSON(path, doc); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := JSON(&buf, doc); err != nil {
		t.Fatal(err)
	}
	var back Document
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Series) != 2 || back.Series[0].Values[1] != 3.8 {
		t.Errorf("unexpected document %+v", back)
	}
}
