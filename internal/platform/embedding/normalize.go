package embedding

// Normalize returns a copy of vec with exactly dims components: trailing
// components are dropped, missing ones are zero.
func Normalize(vec []float32, dims int) []float32 {
	if dims <= 0 {
		return nil
	}
	out := make([]float32, dims)
	copy(out, vec)
	return out
}
