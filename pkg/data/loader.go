// Package data provides dataset loading, generation and splitting helpers.
package data

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// LoadCSV reads a numeric CSV file into a feature matrix and an integer label
// vector. labelCol is the zero-based index of the label column; every other
// column becomes a feature. Malformed rows are skipped.
func LoadCSV(path string, labelCol int) ([][]float64, []int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))

	var (
		X [][]float64
		y []int
	)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed records
		}
		if labelCol < 0 || labelCol >= len(rec) {
			return nil, nil, fmt.Errorf("data: label column %d out of range for %d columns", labelCol, len(rec))
		}

		x := make([]float64, 0, len(rec)-1)
		label := 0
		valid := true
		for i, s := range rec {
			if i == labelCol {
				v, err := strconv.Atoi(s)
				if err != nil {
					valid = false
					break
				}
				label = v
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				valid = false
				break
			}
			x = append(x, v)
		}
		if !valid {
			continue
		}
		X = append(X, x)
		y = append(y, label)
	}

	if len(X) == 0 {
		return nil, nil, fmt.Errorf("data: no valid rows in %s", path)
	}
	return X, y, nil
}
