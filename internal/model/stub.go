package model

// Stub permite tests sin un artefacto real. Devuelve respuestas fijas
// y expone la estructura que se le indique.
type Stub struct {
	Names      []string
	Tree       Structure
	Class      int
	Proba      [2]float64
	PredictErr error
	ProbaErr   error
	Leaves     map[int]int
}

func (s *Stub) FeatureNames() []string {
	return s.Names
}

func (s *Stub) Structure() Structure {
	return s.Tree
}

func (s *Stub) Predict(vector []float64) (int, error) {
	return s.Class, s.PredictErr
}

func (s *Stub) PredictProba(vector []float64) ([2]float64, error) {
	return s.Proba, s.ProbaErr
}

// LeafClass usa Leaves si está definido; si no, responde con Class.
func (s *Stub) LeafClass(node int) (int, error) {
	if s.Leaves != nil {
		if c, ok := s.Leaves[node]; ok {
			return c, nil
		}
	}
	return s.Class, nil
}
