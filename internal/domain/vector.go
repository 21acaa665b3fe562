package domain

// FeatureVector es la secuencia numérica alineada 1:1 con el orden de features del árbol.
type FeatureVector struct {
	Names  []string
	Values []float64
}

// Len devuelve la cantidad de columnas.
func (v FeatureVector) Len() int {
	return len(v.Values)
}

// Get lee el valor de una feature por su nombre canónico.
func (v FeatureVector) Get(name string) (float64, bool) {
	for i, n := range v.Names {
		if n == name && i < len(v.Values) {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Float32 copia los valores para almacenamiento vectorial.
func (v FeatureVector) Float32() []float32 {
	out := make([]float32, len(v.Values))
	for i, f := range v.Values {
		out[i] = float32(f)
	}
	return out
}
