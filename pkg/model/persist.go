package model

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// LocallyLinearSVCState is the serializable snapshot of a fitted
// LocallyLinearSVC: hyperparameters plus everything Fit produced.
// Fields are exported for gob encoding.
type LocallyLinearSVCState struct {
	Config  LocallyLinearSVCConfig
	Classes []int
	Anchors [][]float64
	Weights [][][]float64
	Biases  [][]float64
}

// DumpState serializes the trained model. It fails on an untrained model.
func (m *LocallyLinearSVC) DumpState() ([]byte, error) {
	if !m.fitted {
		return nil, fmt.Errorf("dump state: %w", ErrNotFitted)
	}

	state := LocallyLinearSVCState{
		Config:  m.cfg,
		Classes: m.Classes,
		Anchors: m.Anchors,
		Weights: m.Weights,
		Biases:  m.Biases,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("dump state: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadState restores a model previously serialized with DumpState. The
// receiver becomes trained, replacing its configuration and parameters.
func (m *LocallyLinearSVC) LoadState(blob []byte) error {
	var state LocallyLinearSVCState
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&state); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if err := state.Config.Validate(); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if len(state.Classes) < 2 || len(state.Anchors) == 0 || len(state.Weights) == 0 {
		return fmt.Errorf("load state: incomplete snapshot: %w", ErrBadInput)
	}

	restored, err := NewLocallyLinearSVC(state.Config)
	if err != nil {
		return err
	}
	restored.Classes = state.Classes
	restored.Anchors = state.Anchors
	restored.Weights = state.Weights
	restored.Biases = state.Biases
	restored.fitted = true
	restored.logger = m.logger

	*m = *restored
	return nil
}
