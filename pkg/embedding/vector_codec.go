package embedding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/on-par/vemorable-sub000/internal/apperr"
)

// FormatForStorage renders a vector as the bracketed, comma-joined
// literal pgvector expects, e.g. "[0.1,-2,3.5e-07]".
func FormatForStorage(vec []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// ParseFromStorage is the inverse of FormatForStorage. Any non-numeric
// token fails the whole parse.
func ParseFromStorage(text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return nil, apperr.NewParse(text, fmt.Errorf("vector literal must be bracketed"))
	}

	inner := trimmed[1 : len(trimmed)-1]
	if strings.TrimSpace(inner) == "" {
		return []float32{}, nil
	}

	parts := strings.Split(inner, ",")
	values := make([]float32, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, apperr.NewParse(text, fmt.Errorf("token %d: %w", i, err))
		}
		values[i] = float32(f)
	}
	return values, nil
}
