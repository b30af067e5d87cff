package export

import (
	"encoding/json"
	"io"
	"os"
)

type Document struct {
	Title       string             `json:"title"`
	Solver      string             `json:"solver,omitempty"`
	Termination string             `json:"termination,omitempty"`
	Inputs      map[string]float64 `json:"inputs,omitempty"`
	Series      []Series           `json:"series"`
}

func JSON(w io.Writer, doc Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func SaveJSON(path string, doc Document) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return JSON(file, doc)
}
