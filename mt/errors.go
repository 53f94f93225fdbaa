package mt

import "github.com/go-faster/errors"

func unknownConstructor(id uint32) error {
	return errors.Errorf("mt: unknown constructor 0x%08x", id)
}
