package ai

import "fmt"

// ModelVariant selects between the two configured generation models. It is a
// closed set so an unknown variant is rejected at validation time instead of
// being passed through to the provider.
type ModelVariant string

const (
	ModelSmall ModelVariant = "small"
	ModelLarge ModelVariant = "large"
)

// ParseModelVariant validates a raw variant string.
func ParseModelVariant(s string) (ModelVariant, error) {
	switch ModelVariant(s) {
	case ModelSmall:
		return ModelSmall, nil
	case ModelLarge:
		return ModelLarge, nil
	}
	return "", fmt.Errorf("unknown model variant %q (want %q or %q)", s, ModelSmall, ModelLarge)
}
